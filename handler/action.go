package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opsplane/incidentbot/domain/entity"
	"github.com/opsplane/incidentbot/domain/repository"
	"github.com/opsplane/incidentbot/presentation/blocks"
	"github.com/opsplane/incidentbot/scheduler"
	"github.com/slack-go/slack"
)

// ActionHandler owns the incident lifecycle operations. Each handler follows
// the same shape: load the record, mutate, write messages and the store, and
// append an audit entry. Side-effect failures are logged and never abort the
// remaining steps.
type ActionHandler struct {
	repo         repository.Repository
	slackRepo    repository.SlackRepositoryer
	scheduler    *scheduler.Scheduler
	pager        repository.PagerRepositoryer
	rcaExporter  repository.RCAExporter
	ai           repository.AIRepositoryer
	config       *repository.Config
	workspaceURL string
}

func NewActionHandler(
	repo repository.Repository,
	slackRepo repository.SlackRepositoryer,
	sched *scheduler.Scheduler,
	pager repository.PagerRepositoryer,
	rcaExporter repository.RCAExporter,
	ai repository.AIRepositoryer,
	config *repository.Config,
	workspaceURL string,
) *ActionHandler {
	return &ActionHandler{
		repo:         repo,
		slackRepo:    slackRepo,
		scheduler:    sched,
		pager:        pager,
		rcaExporter:  rcaExporter,
		ai:           ai,
		config:       config,
		workspaceURL: workspaceURL,
	}
}

var timeNow = time.Now

// ClaimRole assigns the actor to the role named in the event value, unless
// somebody already holds it.
func (h *ActionHandler) ClaimRole(ctx context.Context, event ActionEvent) error {
	incident, err := h.repo.FindIncidentByChannel(ctx, event.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to find incident for channel %s: %w", event.ChannelID, err)
	}

	role := event.Role
	if role == "" {
		role = event.Value
	}
	if incident.RoleAssigned(role) {
		holder := incident.RoleHolder(role)
		if _, _, err := h.slackRepo.PostMessage(event.ChannelID, slack.MsgOptionText(
			fmt.Sprintf("<@%s> %s is already taken by <@%s>.", event.ActorID, blocks.RoleDisplayName(role), holder), false)); err != nil {
			slog.Error("Failed to post claim refusal", slog.Any("err", err))
		}
		return nil
	}

	return h.applyRole(ctx, incident, event, role, event.ActorID)
}

// AssignRole sets the role to the selected user unconditionally, replacing
// any current holder.
func (h *ActionHandler) AssignRole(ctx context.Context, event ActionEvent) error {
	incident, err := h.repo.FindIncidentByChannel(ctx, event.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to find incident for channel %s: %w", event.ChannelID, err)
	}
	return h.applyRole(ctx, incident, event, event.Role, event.TargetUser)
}

func (h *ActionHandler) applyRole(ctx context.Context, incident *entity.Incident, event ActionEvent, role, userID string) error {
	userName := userID
	user, err := h.slackRepo.GetUserByID(userID)
	if err != nil {
		slog.Warn("Failed to resolve user, using raw ID", slog.String("user_id", userID), slog.Any("err", err))
	} else {
		userName = h.slackRepo.GetUserPreferredName(user)
	}

	// control message first, so a mid-flight crash leaves the visible state
	// ahead of the record, never behind it
	if len(event.Message.Blocks) > 0 && event.Message.TS != "" {
		updated, err := blocks.ReplaceSectionText(event.Message.Blocks, blocks.RoleBlockID(role), blocks.RoleText(role, userID))
		if err != nil {
			slog.Error("Failed to patch role block", slog.String("role", role), slog.Any("err", err))
		} else if err := h.slackRepo.UpdateMessage(event.ChannelID, event.Message.TS, slack.MsgOptionBlocks(updated...)); err != nil {
			slog.Error("Failed to update control message", slog.Any("err", err))
		}
	}

	if _, _, err := h.slackRepo.PostMessage(event.ChannelID, slack.MsgOptionBlocks(blocks.RoleUpdate(role, userName)...)); err != nil {
		slog.Error("Failed to post role update", slog.Any("err", err))
	}
	if _, _, err := h.slackRepo.PostMessage(userID, slack.MsgOptionBlocks(blocks.RoleNotification(role, event.ChannelID)...)); err != nil {
		slog.Error("Failed to DM role holder", slog.Any("err", err))
	}
	if err := h.slackRepo.InviteUsersToConversation(event.ChannelID, userID); err != nil {
		slog.Error("Failed to invite role holder", slog.Any("err", err))
	}

	incident.SetRole(role, userID)
	incident.Touch(timeNow())
	if err := h.repo.SaveIncident(ctx, incident); err != nil {
		slog.Error("Failed to save incident", slog.String("channel_id", incident.ChannelID), slog.Any("err", err))
	}

	h.audit(ctx, incident.IncidentID, "role_assigned",
		fmt.Sprintf("%s is now %s.", userName, blocks.RoleDisplayName(role)))
	return nil
}

// ArchiveChannel archives the incident channel on explicit request.
func (h *ActionHandler) ArchiveChannel(ctx context.Context, event ActionEvent) error {
	incident, err := h.repo.FindIncidentByChannel(ctx, event.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to find incident for channel %s: %w", event.ChannelID, err)
	}

	if err := h.slackRepo.ArchiveConversation(event.ChannelID); err != nil {
		return fmt.Errorf("failed to archive channel %s: %w", event.ChannelID, err)
	}

	h.audit(ctx, incident.IncidentID, "channel_archived", "Channel archived.")
	return nil
}

// ExportChatLog renders the channel transcript and uploads it back into the
// channel as a file.
func (h *ActionHandler) ExportChatLog(ctx context.Context, event ActionEvent) error {
	incident, err := h.repo.FindIncidentByChannel(ctx, event.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to find incident for channel %s: %w", event.ChannelID, err)
	}

	transcript, err := h.slackRepo.GetFormattedChannelHistory(event.ChannelID, incident.ChannelName)
	if err != nil {
		return fmt.Errorf("failed to collect channel history: %w", err)
	}

	filename := fmt.Sprintf("%s_transcript.txt", incident.ChannelName)
	link, err := h.slackRepo.UploadFile(h.workspaceURL, event.ActorID, event.ChannelID, filename,
		fmt.Sprintf("Chat transcript for %s", incident.ChannelName), transcript)
	if err != nil {
		return fmt.Errorf("failed to upload transcript: %w", err)
	}

	h.audit(ctx, incident.IncidentID, "chat_log_exported", fmt.Sprintf("Chat log exported: %s", link))
	return nil
}

// audit appends a trail entry. Best effort: a failed append is logged and
// never propagates.
func (h *ActionHandler) audit(ctx context.Context, incidentID, event, content string) {
	entry := &entity.AuditEntry{
		IncidentID: incidentID,
		CreatedAt:  timeNow(),
		Event:      event,
		Content:    content,
	}
	if err := h.repo.AppendAuditEntry(ctx, entry); err != nil {
		slog.Error("Failed to append audit entry",
			slog.String("incident_id", incidentID),
			slog.String("event", event),
			slog.Any("err", err))
	}
}
