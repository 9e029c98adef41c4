package audit

import (
	"context"

	"github.com/weiawesome/wes-io-live/pkg/log"
)

// Audit actions for interaction-service.
const (
	ActionCreatePost      = "interaction.create_post"
	ActionUpdatePost      = "interaction.update_post"
	ActionDeletePost      = "interaction.delete_post"
	ActionFollow          = "interaction.follow"
	ActionUnfollow        = "interaction.unfollow"
	ActionBlock           = "interaction.block"
	ActionUnblock         = "interaction.unblock"
	ActionSocketConnect   = "interaction.socket_connect"
	ActionSocketRejected  = "interaction.socket_rejected"
	ActionDeleteNotice    = "interaction.delete_notification"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, userID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogTarget emits an audit entry naming the entity acted on.
func LogTarget(ctx context.Context, action, userID, targetID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}
