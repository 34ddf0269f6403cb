package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opsplane/incidentbot/presentation/blocks"
	"github.com/opsplane/incidentbot/scheduler"
	"github.com/slack-go/slack"
)

// SetSeverity changes the incident severity and reconciles the reminder job
// with the new cadence: eligible severities hold exactly one job per channel,
// ineligible ones hold none.
func (h *ActionHandler) SetSeverity(ctx context.Context, event ActionEvent) error {
	incident, err := h.repo.FindIncidentByChannel(ctx, event.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to find incident for channel %s: %w", event.ChannelID, err)
	}

	severity, err := h.repo.SeverityByID(ctx, event.Value)
	if err != nil {
		return fmt.Errorf("failed to set severity: %w", err)
	}

	h.syncDigest(incident, blocks.DigestSeverityBlockID, blocks.DigestSeverityText(severity.ID))

	if controlMessage, err := h.slackRepo.GetMessageByTS(incident.ChannelID, incident.BoilerplateMessageTS); err != nil {
		slog.Error("Failed to fetch control message", slog.Any("err", err))
	} else {
		blockSet, err := blocks.WithSeverityOption(controlMessage.Blocks.BlockSet, severity.ID)
		if err != nil {
			slog.Error("Failed to pin severity control", slog.Any("err", err))
		} else if err := h.slackRepo.UpdateMessage(incident.ChannelID, incident.BoilerplateMessageTS, slack.MsgOptionBlocks(blockSet...)); err != nil {
			slog.Error("Failed to update control message", slog.Any("err", err))
		}
	}

	incident.Severity = severity.ID
	incident.Touch(timeNow())
	if err := h.repo.SaveIncident(ctx, incident); err != nil {
		slog.Error("Failed to save incident", slog.String("channel_id", incident.ChannelID), slog.Any("err", err))
	}

	jobID := scheduler.ReminderJobID(incident.ChannelName)
	if cadence, ok := h.repo.ReminderCadence(ctx, severity.ID); ok && !incident.Resolved() {
		replaced := h.scheduler.Upsert(scheduler.Job{
			ID:          jobID,
			ChannelID:   incident.ChannelID,
			ChannelName: incident.ChannelName,
			Severity:    severity.ID,
			Cadence:     cadence,
		})
		if replaced {
			h.audit(ctx, incident.IncidentID, "reminder_replaced", "Replaced scheduled reminder for incident updates.")
		} else {
			h.audit(ctx, incident.IncidentID, "reminder_created", "Created scheduled reminder for incident updates.")
		}
	} else if h.scheduler.Delete(jobID) {
		h.audit(ctx, incident.IncidentID, "reminder_removed", "Deleted scheduled reminder for incident updates.")
	}

	h.audit(ctx, incident.IncidentID, "severity_changed",
		fmt.Sprintf("Severity set to %s.", strings.ToUpper(severity.ID)))

	if _, _, err := h.slackRepo.PostMessage(incident.ChannelID, slack.MsgOptionBlocks(blocks.SeverityUpdate(severity.ID)...)); err != nil {
		slog.Error("Failed to post severity update", slog.Any("err", err))
	}
	return nil
}
