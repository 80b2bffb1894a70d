package services

import (
	"context"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TokenIssuer signs a session token for a user.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// auditor appends to the moderation log. Like notifications, audit writes are
// best-effort: the moderation action stands even if the log is unavailable.
type auditor struct {
	repo repositories.ModerationLogRepository
	log  *zap.Logger
}

func (a auditor) record(ctx context.Context, actor models.Actor, target primitive.ObjectID, action models.ModerationAction, detail string) {
	moderationActions.WithLabelValues(string(action)).Inc()
	if a.repo == nil {
		return
	}
	entry := &models.ModerationLog{
		ActorID:  actor.ID.Hex(),
		TargetID: target.Hex(),
		Action:   action,
		Detail:   detail,
	}
	if err := a.repo.CreateLog(context.WithoutCancel(ctx), entry); err != nil {
		a.log.Warn("moderation log not written",
			zap.String("action", string(action)),
			zap.String("target", target.Hex()),
			zap.Error(err),
		)
	}
}
