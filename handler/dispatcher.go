package handler

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"
)

// ActionKind enumerates every lifecycle action the dispatcher understands.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionArchiveChannel
	ActionAssignRole
	ActionClaimRole
	ActionExportChatLog
	ActionSetStatus
	ActionSetSeverity
)

func (k ActionKind) String() string {
	switch k {
	case ActionArchiveChannel:
		return "archive_channel"
	case ActionAssignRole:
		return "assign_role"
	case ActionClaimRole:
		return "claim_role"
	case ActionExportChatLog:
		return "export_chat_log"
	case ActionSetStatus:
		return "set_status"
	case ActionSetSeverity:
		return "set_severity"
	}
	return "unknown"
}

// Origins of an action. Handlers never branch on this; it exists for logging
// and the audit trail.
const (
	OriginChat = "chat"
	OriginWeb  = "web"
)

// MessageRef carries the control message an action arrived on: its timestamp
// and the complete block array as delivered, so handlers can patch one block
// and write the whole array back.
type MessageRef struct {
	TS     string
	Blocks []slack.Block
}

// ActionEvent is the origin-normalized form every trigger is converted to
// before dispatch.
type ActionEvent struct {
	Kind       ActionKind
	Origin     string
	ChannelID  string
	ActorID    string
	Value      string
	TargetUser string
	Role       string
	Message    MessageRef
}

type Dispatcher struct {
	actions *ActionHandler
}

func NewDispatcher(actions *ActionHandler) *Dispatcher {
	return &Dispatcher{actions: actions}
}

// Dispatch routes an event to its handler. Unknown kinds are dropped with a
// warning; they never fail the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, event ActionEvent) error {
	slog.Info("dispatching action",
		slog.String("kind", event.Kind.String()),
		slog.String("origin", event.Origin),
		slog.String("channel_id", event.ChannelID),
		slog.String("actor_id", event.ActorID))

	switch event.Kind {
	case ActionArchiveChannel:
		return d.actions.ArchiveChannel(ctx, event)
	case ActionAssignRole:
		return d.actions.AssignRole(ctx, event)
	case ActionClaimRole:
		return d.actions.ClaimRole(ctx, event)
	case ActionExportChatLog:
		return d.actions.ExportChatLog(ctx, event)
	case ActionSetStatus:
		return d.actions.SetStatus(ctx, event)
	case ActionSetSeverity:
		return d.actions.SetSeverity(ctx, event)
	}
	slog.Warn("unknown action kind, dropping", slog.String("origin", event.Origin), slog.String("channel_id", event.ChannelID))
	return nil
}
