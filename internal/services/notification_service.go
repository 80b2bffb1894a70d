package services

import (
	"context"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrichedNotification carries the compact profile of whoever triggered it.
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserCompact `json:"actor,omitempty"`
}

type NotificationPage struct {
	Notifications []EnrichedNotification
	Total         int64
	Page          int64
	Limit         int64
}

type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository) *NotificationService {
	return &NotificationService{notifications: notifications, users: users}
}

// List returns one page of the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor models.Actor, page, limit int64) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	notes, total, err := s.notifications.GetByRecipientID(ctx, actor.ID, page, limit)
	if err != nil {
		return nil, err
	}
	enriched, err := s.enrich(ctx, notes)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{Notifications: enriched, Total: total, Page: page, Limit: limit}, nil
}

func (s *NotificationService) enrich(ctx context.Context, notes []models.Notification) ([]EnrichedNotification, error) {
	seen := make(map[primitive.ObjectID]struct{})
	ids := []primitive.ObjectID{}
	for _, n := range notes {
		if _, ok := seen[n.TriggeredBy]; !ok && !n.TriggeredBy.IsZero() {
			seen[n.TriggeredBy] = struct{}{}
			ids = append(ids, n.TriggeredBy)
		}
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.UserCompact, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].ToCompact()
	}

	out := make([]EnrichedNotification, len(notes))
	for i, n := range notes {
		out[i] = EnrichedNotification{Notification: n}
		if u, ok := byID[n.TriggeredBy]; ok {
			out[i].Actor = &u
		}
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor models.Actor) (int64, error) {
	return s.notifications.GetUnreadCount(ctx, actor.ID)
}

// MarkAsRead marks one of the actor's notifications read.
func (s *NotificationService) MarkAsRead(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	return orNotFound(s.notifications.MarkAsRead(ctx, id, actor.ID), "Notification not found")
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, actor models.Actor) error {
	return s.notifications.MarkAllAsRead(ctx, actor.ID)
}
