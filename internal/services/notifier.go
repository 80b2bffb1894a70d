package services

import (
	"context"
	"sync/atomic"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultNotifyConcurrency = 8

// Notifier stores notifications best-effort. A failed write is logged and
// counted but never reported to the caller of the workflow.
type Notifier struct {
	repo  repositories.NotificationRepository
	log   *zap.Logger
	limit int
}

func NewNotifier(repo repositories.NotificationRepository, log *zap.Logger, concurrency int) *Notifier {
	if concurrency <= 0 {
		concurrency = defaultNotifyConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{repo: repo, log: log, limit: concurrency}
}

// Notify writes each notification independently with bounded concurrency and
// returns how many writes failed.
func (n *Notifier) Notify(ctx context.Context, notes ...*models.Notification) int {
	if n == nil || n.repo == nil || len(notes) == 0 {
		return 0
	}
	// notifications outlive a cancelled request
	ctx = context.WithoutCancel(ctx)

	var failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(n.limit)
	for _, note := range notes {
		g.Go(func() error {
			if err := n.repo.CreateNotification(ctx, note); err != nil {
				failed.Add(1)
				notificationsFailed.Inc()
				n.log.Warn("notification not stored",
					zap.String("type", string(note.Type)),
					zap.String("recipient", note.Recipient.Hex()),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(failed.Load())
}
