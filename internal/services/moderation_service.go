package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/pressroom/backend/internal/cache"
	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ModerationService runs the role, ban, publisher-request and follow workflows.
type ModerationService struct {
	users    repositories.UserRepository
	requests repositories.PublisherRequestRepository
	logs     repositories.ModerationLogRepository
	tx       repositories.Transactor
	notifier *Notifier
	tokens   TokenIssuer
	profiles *cache.Cache
	clock    Clock
	audit    auditor
	log      *zap.Logger
}

type ModerationDeps struct {
	Users    repositories.UserRepository
	Requests repositories.PublisherRequestRepository
	Logs     repositories.ModerationLogRepository // optional
	Tx       repositories.Transactor
	Notifier *Notifier
	Tokens   TokenIssuer
	Profiles *cache.Cache // optional
	Clock    Clock
	Log      *zap.Logger
}

func NewModerationService(d ModerationDeps) *ModerationService {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &ModerationService{
		users:    d.Users,
		requests: d.Requests,
		logs:     d.Logs,
		tx:       d.Tx,
		notifier: d.Notifier,
		tokens:   d.Tokens,
		profiles: d.Profiles,
		clock:    d.Clock,
		audit:    auditor{repo: d.Logs, log: d.Log},
		log:      d.Log,
	}
}

// PublisherDecision is the result of an admin decision. Token is set only when
// the acting admin decided their own request.
type PublisherDecision struct {
	Request *models.PublisherRequest
	User    *models.User
	Token   string
}

// RoleUpdate is the result of a role change. Token is set only when the admin changed their own role.
type RoleUpdate struct {
	User  *models.User
	Token string
}

type PublisherRequestPage struct {
	Requests      []models.PublisherRequestView `json:"requests"`
	TotalRequests int64                         `json:"totalRequests"`
}

type ModerationLogPage struct {
	Logs  []models.ModerationLog `json:"logs"`
	Total int64                  `json:"total"`
}

func requireAdmin(actor models.Actor, msg string) error {
	if !actor.IsAdmin {
		return ForbiddenError("%s", msg)
	}
	return nil
}

// SubmitPublisherRequest files a pending request and notifies every admin.
func (s *ModerationService) SubmitPublisherRequest(ctx context.Context, actor models.Actor, userID primitive.ObjectID, reason string) (*models.PublisherRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ValidationError("Please provide a reason for your publisher request.")
	}
	if !actor.Is(userID) && !actor.IsAdmin {
		return nil, ForbiddenError("You can only request publisher access for your own account")
	}

	var requester *models.User
	req := &models.PublisherRequest{UserID: userID, Reason: reason, Status: models.RequestPending}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.requests.FindPendingByUser(ctx, userID); err == nil {
			return ConflictError("You already have a pending request.")
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		u, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			return orNotFound(err, "User not found")
		}
		requester = u
		if err := s.requests.CreateRequest(ctx, req); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ConflictError("You already have a pending request.")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	admins, err := s.users.GetAdmins(ctx)
	if err != nil {
		s.log.Warn("admins not loaded for publisher request notification", zap.Error(err))
		return req, nil
	}
	notes := make([]*models.Notification, 0, len(admins))
	for _, admin := range admins {
		notes = append(notes, &models.Notification{
			Recipient:   admin.ID,
			Title:       "New Publisher Request",
			Message:     fmt.Sprintf("%s has requested to become a publisher", requester.Username),
			Type:        models.NotificationPublisherRequest,
			TriggeredBy: userID,
		})
	}
	s.notifier.Notify(ctx, notes...)
	return req, nil
}

// ListPublisherRequests pages through requests in one status for the admin dashboard.
func (s *ModerationService) ListPublisherRequests(ctx context.Context, actor models.Actor, status models.PublisherRequestStatus, startIndex, limit int64, sortAsc bool) (*PublisherRequestPage, error) {
	if err := requireAdmin(actor, "You are not authorized to view publisher requests"); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.RequestPending
	}
	if !status.Valid() {
		return nil, ValidationError("Invalid request status")
	}
	requests, total, err := s.requests.ListByStatus(ctx, status, startIndex, limit, sortAsc)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.UserID)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.UserCompact, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].ToCompact()
	}

	views := make([]models.PublisherRequestView, len(requests))
	for i, r := range requests {
		views[i] = models.PublisherRequestView{PublisherRequest: r}
		if u, ok := byID[r.UserID]; ok {
			views[i].User = &u
		}
	}
	return &PublisherRequestPage{Requests: views, TotalRequests: total}, nil
}

// DecidePublisherRequest approves or rejects a request.
func (s *ModerationService) DecidePublisherRequest(ctx context.Context, actor models.Actor, requestID primitive.ObjectID, decision models.PublisherRequestStatus) (*PublisherDecision, error) {
	if err := requireAdmin(actor, "You are not authorized to update publisher requests"); err != nil {
		return nil, err
	}
	if decision != models.RequestApproved && decision != models.RequestRejected {
		return nil, ValidationError("Status must be approved or rejected")
	}

	out := &PublisherDecision{}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetRequestByID(ctx, requestID)
		if err != nil {
			return orNotFound(err, "Request not found")
		}
		if err := s.requests.SetStatus(ctx, requestID, decision); err != nil {
			return orNotFound(err, "Request not found")
		}
		req.Status = decision
		out.Request = req

		if decision == models.RequestApproved {
			u, err := s.users.SetPublisher(ctx, req.UserID, true)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
			out.User = u
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req := out.Request
	switch decision {
	case models.RequestApproved:
		s.audit.record(ctx, actor, req.UserID, models.ActionRequestApproved, req.ID.Hex())
		invalidateProfiles(ctx, s.profiles, req.UserID)
		if out.User == nil {
			// requester account is gone; nothing to notify or reissue
			return out, nil
		}
		s.notifier.Notify(ctx, &models.Notification{
			Recipient:   req.UserID,
			Title:       "Publisher Request Approved",
			Message:     "Your request to become a publisher has been approved",
			Type:        models.NotificationPublisherApproved,
			TriggeredBy: actor.ID,
		})
		if actor.Is(req.UserID) {
			token, err := s.tokens.Issue(out.User)
			if err != nil {
				return nil, fmt.Errorf("issue token: %w", err)
			}
			out.Token = token
		}
	case models.RequestRejected:
		s.audit.record(ctx, actor, req.UserID, models.ActionRequestRejected, req.ID.Hex())
		s.notifier.Notify(ctx, &models.Notification{
			Recipient:   req.UserID,
			Title:       "Publisher Request Rejected",
			Message:     "Your request to become a publisher has been rejected",
			Type:        models.NotificationPublisherRejected,
			TriggeredBy: actor.ID,
		})
	}
	return out, nil
}

// SetUserRole grants or revokes the publisher flag.
func (s *ModerationService) SetUserRole(ctx context.Context, actor models.Actor, targetID primitive.ObjectID, isPublisher bool) (*RoleUpdate, error) {
	if err := requireAdmin(actor, "Access denied."); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		u, err := s.users.SetPublisher(ctx, targetID, isPublisher)
		if err != nil {
			return orNotFound(err, "User not found")
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &RoleUpdate{User: user}
	invalidateProfiles(ctx, s.profiles, targetID)
	s.audit.record(ctx, actor, targetID, models.ActionRoleChanged, fmt.Sprintf("isPublisher=%t", isPublisher))
	if actor.Is(targetID) {
		token, err := s.tokens.Issue(user)
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		out.Token = token
		return out, nil
	}

	message := "Your publisher access has been revoked"
	if isPublisher {
		message = "You have been granted publisher access"
	}
	s.notifier.Notify(ctx, &models.Notification{
		Recipient:   targetID,
		Title:       "Role Updated",
		Message:     message,
		Type:        models.NotificationRoleChanged,
		TriggeredBy: actor.ID,
	})
	return out, nil
}

// BanUser bans a non-admin user for the window named by durationToken.
func (s *ModerationService) BanUser(ctx context.Context, actor models.Actor, targetID primitive.ObjectID, durationToken, reason string) (*models.User, error) {
	if err := requireAdmin(actor, "You don't have permission to ban users"); err != nil {
		return nil, err
	}
	if targetID.IsZero() || durationToken == "" {
		return nil, ValidationError("User ID and ban duration are required")
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultBanReason
	}

	var banned *models.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		target, err := s.users.GetUserByID(ctx, targetID)
		if err != nil {
			return orNotFound(err, "User not found")
		}
		if target.IsAdmin {
			return ForbiddenError("Cannot ban another admin")
		}
		expiresAt, err := BanExpiry(durationToken, s.clock.Now())
		if err != nil {
			return err
		}
		banned, err = s.users.SetBan(ctx, targetID, expiresAt, reason)
		return orNotFound(err, "User not found")
	})
	if err != nil {
		return nil, err
	}

	invalidateProfiles(ctx, s.profiles, targetID)
	s.audit.record(ctx, actor, targetID, models.ActionUserBanned, fmt.Sprintf("duration=%s reason=%s", durationToken, reason))
	s.notifier.Notify(ctx, &models.Notification{
		Recipient:   targetID,
		Title:       "Account Banned",
		Message:     fmt.Sprintf("Your account has been banned until %s. Reason: %s", banned.BanExpiresAt.Format("2006-01-02 15:04 MST"), reason),
		Type:        models.NotificationBanned,
		TriggeredBy: actor.ID,
	})
	return banned, nil
}

// UnbanUser lifts a ban.
func (s *ModerationService) UnbanUser(ctx context.Context, actor models.Actor, targetID primitive.ObjectID) error {
	if err := requireAdmin(actor, "You don't have permission to unban users"); err != nil {
		return err
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
			return orNotFound(err, "User not found")
		}
		return orNotFound(s.users.ClearBan(ctx, targetID), "User not found")
	})
	if err != nil {
		return err
	}

	invalidateProfiles(ctx, s.profiles, targetID)
	s.audit.record(ctx, actor, targetID, models.ActionUserUnbanned, "")
	s.notifier.Notify(ctx, &models.Notification{
		Recipient:   targetID,
		Title:       "Account Restored",
		Message:     "Your ban has been lifted",
		Type:        models.NotificationUnbanned,
		TriggeredBy: actor.ID,
	})
	return nil
}

// FollowUser adds actor to target's followers. Only publishers and admins can be followed.
func (s *ModerationService) FollowUser(ctx context.Context, actor models.Actor, targetID primitive.ObjectID) (*models.User, error) {
	var follower, target *models.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		target, err = s.users.GetUserByID(ctx, targetID)
		if err != nil {
			return orNotFound(err, "User not found")
		}
		if !target.CanBeFollowed() {
			return ValidationError("You can only follow publishers and admins")
		}
		if actor.Is(targetID) {
			return ValidationError("You cannot follow yourself")
		}
		follower, err = s.users.GetUserByID(ctx, actor.ID)
		if err != nil {
			return orNotFound(err, "User not found")
		}
		if follower.IsFollowing(targetID) {
			return ValidationError("You are already following this user")
		}
		return orNotFound(s.users.LinkFollow(ctx, actor.ID, targetID), "User not found")
	})
	if err != nil {
		return nil, err
	}

	invalidateProfiles(ctx, s.profiles, actor.ID, targetID)
	s.notifier.Notify(ctx, &models.Notification{
		Recipient:   targetID,
		Title:       "New Follower",
		Message:     fmt.Sprintf("%s started following you", follower.Username),
		Type:        models.NotificationFollow,
		TriggeredBy: actor.ID,
	})
	return target, nil
}

// UnfollowUser removes actor from target's followers.
func (s *ModerationService) UnfollowUser(ctx context.Context, actor models.Actor, targetID primitive.ObjectID) (*models.User, error) {
	var target *models.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		target, err = s.users.GetUserByID(ctx, targetID)
		if err != nil {
			return orNotFound(err, "User not found")
		}
		follower, err := s.users.GetUserByID(ctx, actor.ID)
		if err != nil {
			return orNotFound(err, "User not found")
		}
		if !follower.IsFollowing(targetID) {
			return ValidationError("You are not following this user")
		}
		return orNotFound(s.users.UnlinkFollow(ctx, actor.ID, targetID), "User not found")
	})
	if err != nil {
		return nil, err
	}
	invalidateProfiles(ctx, s.profiles, actor.ID, targetID)
	return target, nil
}

// ListModerationLog pages through the audit trail, newest first.
func (s *ModerationService) ListModerationLog(ctx context.Context, actor models.Actor, page, limit int) (*ModerationLogPage, error) {
	if err := requireAdmin(actor, "You are not authorized to view the moderation log"); err != nil {
		return nil, err
	}
	if s.logs == nil {
		return &ModerationLogPage{Logs: []models.ModerationLog{}}, nil
	}
	logs, total, err := s.logs.ListLogs(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &ModerationLogPage{Logs: logs, Total: total}, nil
}
