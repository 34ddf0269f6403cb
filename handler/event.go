package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opsplane/incidentbot/domain/repository"
	"github.com/opsplane/incidentbot/scheduler"
	"github.com/slack-go/slack/slackevents"
)

// EventHandler reacts to workspace events that change incident state outside
// our own actions, currently channel archival.
type EventHandler struct {
	actions *ActionHandler
}

func NewEventHandler(actions *ActionHandler) *EventHandler {
	return &EventHandler{actions: actions}
}

func (h *EventHandler) Handle(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.ChannelArchiveEvent:
		return h.handleChannelArchive(ctx, ev)
	}
	return nil
}

// handleChannelArchive mirrors an archive done in the workspace UI onto the
// record, and drops any reminder still scheduled for the channel.
func (h *EventHandler) handleChannelArchive(ctx context.Context, event *slackevents.ChannelArchiveEvent) error {
	incident, err := h.actions.repo.FindIncidentByChannel(ctx, event.Channel)
	if err != nil {
		if errors.Is(err, repository.ErrIncidentNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find incident for channel %s: %w", event.Channel, err)
	}

	if h.actions.scheduler.Delete(scheduler.ReminderJobID(incident.ChannelName)) {
		h.actions.audit(ctx, incident.IncidentID, "reminder_removed", "Deleted scheduled reminder for incident updates.")
	}

	incident.ClosedAt = timeNow()
	incident.Touch(timeNow())
	if err := h.actions.repo.SaveIncident(ctx, incident); err != nil {
		slog.Error("Failed to save incident", slog.String("channel_id", incident.ChannelID), slog.Any("err", err))
	}

	h.actions.audit(ctx, incident.IncidentID, "channel_archived", "Channel was archived.")
	h.actions.slackRepo.FlushChannelCache()
	return nil
}
