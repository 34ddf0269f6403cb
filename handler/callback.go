package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
)

// CallbackHandler adapts Block Kit interactions into dispatcher events.
type CallbackHandler struct {
	dispatcher *Dispatcher
}

func NewCallbackHandler(dispatcher *Dispatcher) *CallbackHandler {
	return &CallbackHandler{dispatcher: dispatcher}
}

func (h *CallbackHandler) Handle(ctx context.Context, interaction *slack.InteractionCallback) error {
	if interaction.Type != slack.InteractionTypeBlockActions {
		return nil
	}

	for _, action := range interaction.ActionCallback.BlockActions {
		event, ok := h.normalize(interaction, action)
		if !ok {
			slog.Warn("unhandled block action", slog.String("action_id", action.ActionID))
			continue
		}
		if err := h.dispatcher.Dispatch(ctx, event); err != nil {
			slog.Error("Failed to handle block action",
				slog.String("action_id", action.ActionID),
				slog.Any("err", err))
		}
	}
	return nil
}

func (h *CallbackHandler) normalize(interaction *slack.InteractionCallback, action *slack.BlockAction) (ActionEvent, bool) {
	event := ActionEvent{
		Origin:    OriginChat,
		ChannelID: interaction.Channel.ID,
		ActorID:   interaction.User.ID,
		Message: MessageRef{
			TS:     interaction.Message.Timestamp,
			Blocks: interaction.Message.Blocks.BlockSet,
		},
	}

	switch action.ActionID {
	case "incident.claim_role":
		event.Kind = ActionClaimRole
		event.Role = action.Value
		event.Value = action.Value
	case "incident.assign_role":
		event.Kind = ActionAssignRole
		event.Role = strings.TrimPrefix(action.BlockID, "assign_")
		event.TargetUser = action.SelectedUser
	case "incident.set_status":
		event.Kind = ActionSetStatus
		event.Value = action.SelectedOption.Value
	case "incident.set_severity":
		event.Kind = ActionSetSeverity
		event.Value = action.SelectedOption.Value
	case "incident.archive_channel":
		event.Kind = ActionArchiveChannel
	case "incident.export_chat_logs":
		event.Kind = ActionExportChatLog
	default:
		return ActionEvent{}, false
	}
	return event, true
}
