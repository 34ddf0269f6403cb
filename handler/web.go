package handler

import (
	"context"
	"fmt"
	"log/slog"
)

// WebRequest is a lifecycle action submitted outside chat, from the
// management UI or API. Web triggers carry no message payload, so the
// control message is fetched from the stored timestamp before dispatch.
type WebRequest struct {
	Action    string `json:"action"`
	ChannelID string `json:"channel_id"`
	ActorID   string `json:"actor_id"`
	Role      string `json:"role"`
	User      string `json:"user"`
	Status    string `json:"status"`
	Severity  string `json:"severity"`
}

type WebHandler struct {
	dispatcher *Dispatcher
	actions    *ActionHandler
}

func NewWebHandler(dispatcher *Dispatcher, actions *ActionHandler) *WebHandler {
	return &WebHandler{dispatcher: dispatcher, actions: actions}
}

func (h *WebHandler) Handle(ctx context.Context, req WebRequest) error {
	event := ActionEvent{
		Origin:     OriginWeb,
		ChannelID:  req.ChannelID,
		ActorID:    req.ActorID,
		Role:       req.Role,
		TargetUser: req.User,
	}

	switch req.Action {
	case "archive_channel":
		event.Kind = ActionArchiveChannel
	case "assign_role":
		event.Kind = ActionAssignRole
	case "claim_role":
		event.Kind = ActionClaimRole
		event.Value = req.Role
	case "export_chat_log":
		event.Kind = ActionExportChatLog
	case "set_status":
		event.Kind = ActionSetStatus
		event.Value = req.Status
	case "set_severity":
		event.Kind = ActionSetSeverity
		event.Value = req.Severity
	default:
		return fmt.Errorf("unknown web action: %s", req.Action)
	}

	incident, err := h.actions.repo.FindIncidentByChannel(ctx, req.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to find incident for channel %s: %w", req.ChannelID, err)
	}
	if incident.BoilerplateMessageTS != "" {
		if controlMessage, err := h.actions.slackRepo.GetMessageByTS(req.ChannelID, incident.BoilerplateMessageTS); err != nil {
			slog.Warn("Failed to fetch control message for web action", slog.Any("err", err))
		} else {
			event.Message = MessageRef{
				TS:     incident.BoilerplateMessageTS,
				Blocks: controlMessage.Blocks.BlockSet,
			}
		}
	}

	return h.dispatcher.Dispatch(ctx, event)
}
