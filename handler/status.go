package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opsplane/incidentbot/domain/entity"
	"github.com/opsplane/incidentbot/presentation/blocks"
	"github.com/opsplane/incidentbot/presentation/rca"
	"github.com/opsplane/incidentbot/scheduler"
	"github.com/slack-go/slack"
)

// SetStatus moves the incident to the requested status. Resolution carries
// extra machinery; every other transition is a plain record-and-render
// update.
func (h *ActionHandler) SetStatus(ctx context.Context, event ActionEvent) error {
	incident, err := h.repo.FindIncidentByChannel(ctx, event.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to find incident for channel %s: %w", event.ChannelID, err)
	}

	status := event.Value
	if status == entity.StatusResolved {
		return h.resolveIncident(ctx, incident, event)
	}
	return h.finishStatusChange(ctx, incident, event, status, false)
}

// finishStatusChange performs the shared tail of every status transition:
// digest rewrite, control message select, record write, audit, public
// announcement. Render failures are logged and never abort the rest.
func (h *ActionHandler) finishStatusChange(ctx context.Context, incident *entity.Incident, event ActionEvent, status string, guard bool) error {
	h.syncDigest(incident, blocks.DigestStatusBlockID, blocks.DigestStatusText(status))

	if controlMessage, err := h.slackRepo.GetMessageByTS(incident.ChannelID, incident.BoilerplateMessageTS); err != nil {
		slog.Error("Failed to fetch control message", slog.Any("err", err))
	} else {
		blockSet := controlMessage.Blocks.BlockSet
		blockSet, err = blocks.WithStatusOption(blockSet, status)
		if err == nil && guard {
			blockSet, err = blocks.WithResolutionGuard(blockSet)
		}
		if err != nil {
			slog.Error("Failed to pin status control", slog.Any("err", err))
		} else if err := h.slackRepo.UpdateMessage(incident.ChannelID, incident.BoilerplateMessageTS, slack.MsgOptionBlocks(blockSet...)); err != nil {
			slog.Error("Failed to update control message", slog.Any("err", err))
		}
	}

	incident.Status = status
	incident.Touch(timeNow())
	if err := h.repo.SaveIncident(ctx, incident); err != nil {
		slog.Error("Failed to save incident", slog.String("channel_id", incident.ChannelID), slog.Any("err", err))
	}

	h.audit(ctx, incident.IncidentID, "status_changed",
		fmt.Sprintf("Status was changed to %s.", blocks.RoleDisplayName(status)))

	if _, _, err := h.slackRepo.PostMessage(incident.ChannelID, slack.MsgOptionBlocks(blocks.StatusUpdate(status)...)); err != nil {
		slog.Error("Failed to post status update", slog.Any("err", err))
	}
	return nil
}

// syncDigest patches a single section of the digest announcement and writes
// the whole block array back.
func (h *ActionHandler) syncDigest(incident *entity.Incident, blockID, text string) {
	if incident.DigestMessageTS == "" {
		return
	}
	digestMessage, err := h.slackRepo.GetMessageByTS(h.config.DigestChannelID, incident.DigestMessageTS)
	if err != nil {
		slog.Error("Failed to fetch digest message", slog.Any("err", err))
		return
	}
	blockSet, err := blocks.ReplaceSectionText(digestMessage.Blocks.BlockSet, blockID, text)
	if err != nil {
		slog.Error("Failed to patch digest block", slog.String("block_id", blockID), slog.Any("err", err))
		return
	}
	if err := h.slackRepo.UpdateMessage(h.config.DigestChannelID, incident.DigestMessageTS, slack.MsgOptionBlocks(blockSet...)); err != nil {
		slog.Error("Failed to update digest message", slog.Any("err", err))
	}
}

// resolveIncident runs the resolution flow. The commander precondition is
// checked before anything is mutated: an unstaffed incident cannot resolve.
func (h *ActionHandler) resolveIncident(ctx context.Context, incident *entity.Incident, event ActionEvent) error {
	if !incident.RoleAssigned(entity.RoleIncidentCommander) {
		if _, _, err := h.slackRepo.PostMessage(incident.ChannelID, slack.MsgOptionText(
			fmt.Sprintf("<@%s> This incident cannot be resolved while the %s role is unassigned. Please claim or assign it first.",
				event.ActorID, blocks.RoleDisplayName(entity.RoleIncidentCommander)), false)); err != nil {
			slog.Error("Failed to post resolution refusal", slog.Any("err", err))
		}
		return nil
	}

	rcaName := fmt.Sprintf("%s-rca", incident.IncidentID)
	rcaChannel, err := h.slackRepo.CreateConversation(slack.CreateConversationParams{
		ChannelName: rcaName,
	})
	if err != nil {
		// an earlier resolution attempt may already have created it
		existing, lookupErr := h.slackRepo.GetChannelByName(rcaName)
		if lookupErr == nil && existing != nil {
			rcaChannel, err = existing, nil
		}
	}
	if err != nil {
		slog.Error("Failed to create RCA channel", slog.Any("err", err))
	} else {
		h.audit(ctx, incident.IncidentID, "rca_channel_created", fmt.Sprintf("RCA channel created: %s", rcaChannel.ID))
		h.setUpRCAChannel(ctx, incident, rcaChannel.ID)
	}

	if _, _, err := h.slackRepo.PostMessage(incident.ChannelID, slack.MsgOptionBlocks(blocks.ResolutionMessage()...)); err != nil {
		slog.Error("Failed to post resolution message", slog.Any("err", err))
	}

	if h.pager != nil {
		for _, pagerIncidentID := range incident.PagerdutyIncidents {
			if err := h.pager.ResolveIncident(ctx, pagerIncidentID); err != nil {
				slog.Error("Failed to resolve paging incident", slog.String("pagerduty_id", pagerIncidentID), slog.Any("err", err))
			}
		}
	}

	if deleted := h.scheduler.Delete(scheduler.ReminderJobID(incident.ChannelName)); deleted {
		h.audit(ctx, incident.IncidentID, "reminder_removed", "Deleted scheduled reminder for incident updates.")
	}

	// record write last: visible state may run ahead of the record, never behind
	return h.finishStatusChange(ctx, incident, event, entity.StatusResolved, true)
}

func (h *ActionHandler) setUpRCAChannel(ctx context.Context, incident *entity.Incident, rcaChannelID string) {
	var holders []string
	for _, userID := range incident.Roles {
		if userID != "" && userID != entity.UnassignedRole {
			holders = append(holders, userID)
		}
	}
	if len(holders) > 0 {
		if err := h.slackRepo.InviteUsersToConversation(rcaChannelID, holders...); err != nil {
			slog.Error("Failed to invite responders to RCA channel", slog.Any("err", err))
		}
	}

	rcaLink := ""
	if h.rcaExporter != nil {
		link, err := h.exportRCADocument(ctx, incident)
		if err != nil {
			slog.Error("Failed to create RCA document", slog.Any("err", err))
		} else {
			rcaLink = link
			incident.RCALink = link
			incident.Touch(timeNow())
			if err := h.repo.SaveIncident(ctx, incident); err != nil {
				slog.Error("Failed to save incident", slog.String("channel_id", incident.ChannelID), slog.Any("err", err))
			}
			h.audit(ctx, incident.IncidentID, "rca_document_created", fmt.Sprintf("RCA document created: %s", link))
		}
	}

	archiveLink := fmt.Sprintf("%s/archives/%s", h.workspaceURL, incident.ChannelID)
	if _, _, err := h.slackRepo.PostMessage(rcaChannelID, slack.MsgOptionBlocks(blocks.RCAPlanning(incident.ChannelID, rcaLink, archiveLink)...)); err != nil {
		slog.Error("Failed to post RCA kickoff", slog.Any("err", err))
	}
}

func (h *ActionHandler) exportRCADocument(ctx context.Context, incident *entity.Incident) (string, error) {
	commander := incident.RoleHolder(entity.RoleIncidentCommander)
	if user, err := h.slackRepo.GetUserByID(commander); err == nil {
		commander = h.slackRepo.GetUserPreferredName(user)
	}

	severityDefinition := ""
	if severity, err := h.repo.SeverityByID(ctx, incident.Severity); err == nil {
		severityDefinition = severity.Description
	}

	timeline := h.renderTimeline(ctx, incident.IncidentID)

	summary := incident.Description
	if h.ai != nil {
		if s, err := h.ai.SummarizeIncident(incident.Description, timeline); err != nil {
			slog.Warn("Failed to summarize incident, falling back to description", slog.Any("err", err))
		} else {
			summary = s
		}
	}

	pinned := ""
	if messages, err := h.slackRepo.GetPinnedMessages(incident.ChannelID); err != nil {
		slog.Warn("Failed to list pinned messages", slog.Any("err", err))
	} else {
		var lines []string
		for _, m := range messages {
			lines = append(lines, fmt.Sprintf("- %s", m.Text))
		}
		pinned = strings.Join(lines, "\n")
	}

	markdown := rca.Render(
		incident.IncidentID,
		incident.CreatedAt.Format("2006-01-02"),
		commander,
		strings.ToUpper(incident.Severity),
		severityDefinition,
		summary,
		pinned,
		timeline,
		fmt.Sprintf("%s/archives/%s", h.workspaceURL, incident.ChannelID),
	)

	link, err := h.rcaExporter.ExportRCA(ctx, fmt.Sprintf("RCA: %s", incident.IncidentID), markdown)
	if err != nil {
		return "", fmt.Errorf("failed to export RCA document: %w", err)
	}
	return link, nil
}

func (h *ActionHandler) renderTimeline(ctx context.Context, incidentID string) string {
	entries, err := h.repo.AuditTimeline(ctx, incidentID)
	if err != nil {
		slog.Warn("Failed to load audit timeline", slog.Any("err", err))
		return ""
	}

	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- %s %s", e.CreatedAt.UTC().Format("2006-01-02 15:04:05"), e.Content))
	}
	timeline := strings.Join(lines, "\n")

	if h.ai != nil {
		if formatted, err := h.ai.FormatTimeline(timeline); err != nil {
			slog.Warn("Failed to format timeline", slog.Any("err", err))
		} else {
			timeline = formatted
		}
	}
	return timeline
}
