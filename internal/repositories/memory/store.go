// Package memory provides an in-process implementation of every repository,
// used by tests and local tooling that run without MongoDB or PostgreSQL.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInjected is returned by writes that a test asked to fail.
var ErrInjected = errors.New("memory: injected failure")

type Store struct {
	mu sync.RWMutex

	users         map[primitive.ObjectID]models.User
	requests      map[primitive.ObjectID]models.PublisherRequest
	comments      map[primitive.ObjectID]models.Comment
	notifications map[primitive.ObjectID]models.Notification
	posts         map[primitive.ObjectID]models.Post
	stories       map[primitive.ObjectID]models.Story
	logs          []models.ModerationLog

	failNotify map[primitive.ObjectID]bool

	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         map[primitive.ObjectID]models.User{},
		requests:      map[primitive.ObjectID]models.PublisherRequest{},
		comments:      map[primitive.ObjectID]models.Comment{},
		notifications: map[primitive.ObjectID]models.Notification{},
		posts:         map[primitive.ObjectID]models.Post{},
		stories:       map[primitive.ObjectID]models.Story{},
		failNotify:    map[primitive.ObjectID]bool{},
		Now:           time.Now,
	}
}

// WithTransaction runs fn directly; the store has no rollback.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// FailNotificationsFor makes every notification addressed to recipient fail.
func (s *Store) FailNotificationsFor(recipient primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNotify[recipient] = true
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	return append([]primitive.ObjectID{}, ids...)
}

func cloneUser(u models.User) *models.User {
	u.Followers = cloneIDs(u.Followers)
	u.Following = cloneIDs(u.Following)
	return &u
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	end := int64(len(items))
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return append([]T{}, items[skip:end]...)
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email ||
			(user.FirebaseUID != "" && u.FirebaseUID == user.FirebaseUID) {
			return repositories.ErrDuplicate
		}
	}
	now := s.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Followers = cloneIDs(user.Followers)
	user.Following = cloneIDs(user.Following)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.users[user.ID] = *cloneUser(*user)
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

func (s *Store) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *Store) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.FirebaseUID != "" && u.FirebaseUID == uid })
}

func (s *Store) filterUsers(match func(models.User) bool, asc bool) []models.User {
	out := []models.User{}
	for _, u := range s.users {
		if match(u) {
			out = append(out, *cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) GetAdmins(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterUsers(func(u models.User) bool { return u.IsAdmin }, true), nil
}

func matchesUserFilter(u models.User, f repositories.UserFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.Username), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			return false
		}
	}
	switch f.Role {
	case "admin":
		if !u.IsAdmin {
			return false
		}
	case "publisher":
		if !u.IsPublisher || u.IsAdmin {
			return false
		}
	case "user":
		if u.IsPublisher || u.IsAdmin {
			return false
		}
	}
	switch f.Status {
	case "active":
		if u.IsBanned {
			return false
		}
	case "banned":
		if !u.IsBanned {
			return false
		}
	}
	switch f.Verified {
	case "true":
		return u.Verified
	case "false":
		return !u.Verified
	}
	return true
}

func (s *Store) ListUsers(ctx context.Context, f repositories.UserFilter) ([]models.User, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.filterUsers(func(u models.User) bool { return matchesUserFilter(u, f) }, f.SortAsc)
	return page(all, f.StartIndex, f.Limit), int64(len(all)), nil
}

func (s *Store) CountUsersSince(ctx context.Context, f repositories.UserFilter, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.filterUsers(func(u models.User) bool {
		return matchesUserFilter(u, f) && !u.CreatedAt.Before(since)
	}, false)
	return int64(len(all)), nil
}

func (s *Store) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	all := s.filterUsers(func(u models.User) bool { return strings.Contains(strings.ToLower(u.Username), q) }, true)
	return page(all, 0, limit), nil
}

func (s *Store) mutateUser(id primitive.ObjectID, fn func(u *models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return nil, err
	}
	u.UpdatedAt = s.Now()
	s.users[id] = u
	return cloneUser(u), nil
}

func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, p repositories.ProfileUpdate) (*models.User, error) {
	return s.mutateUser(id, func(u *models.User) error {
		for otherID, other := range s.users {
			if otherID == id {
				continue
			}
			if (p.Username != nil && other.Username == *p.Username) || (p.Email != nil && other.Email == *p.Email) {
				return repositories.ErrDuplicate
			}
		}
		if p.Username != nil {
			u.Username = *p.Username
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.ProfilePicture != nil {
			u.ProfilePicture = *p.ProfilePicture
		}
		if p.PasswordHash != nil {
			u.Password = *p.PasswordHash
		}
		if p.DateOfBirth != nil {
			dob := *p.DateOfBirth
			u.DateOfBirth = &dob
		}
		return nil
	})
}

func (s *Store) SetFirebaseUID(ctx context.Context, id primitive.ObjectID, uid string) error {
	_, err := s.mutateUser(id, func(u *models.User) error {
		u.FirebaseUID = uid
		return nil
	})
	return err
}

func (s *Store) SetPublisher(ctx context.Context, id primitive.ObjectID, isPublisher bool) (*models.User, error) {
	return s.mutateUser(id, func(u *models.User) error {
		u.IsPublisher = isPublisher
		return nil
	})
}

func (s *Store) SetBan(ctx context.Context, id primitive.ObjectID, expiresAt time.Time, reason string) (*models.User, error) {
	return s.mutateUser(id, func(u *models.User) error {
		u.IsBanned = true
		u.BanExpiresAt = &expiresAt
		u.BanReason = reason
		return nil
	})
}

func (s *Store) ClearBan(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.mutateUser(id, func(u *models.User) error {
		u.IsBanned = false
		u.BanExpiresAt = nil
		u.BanReason = ""
		return nil
	})
	return err
}

func (s *Store) LinkFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	if _, err := s.mutateUser(followerID, func(u *models.User) error {
		u.Following = addID(u.Following, targetID)
		return nil
	}); err != nil {
		return err
	}
	_, err := s.mutateUser(targetID, func(u *models.User) error {
		u.Followers = addID(u.Followers, followerID)
		return nil
	})
	return err
}

func (s *Store) UnlinkFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	if _, err := s.mutateUser(followerID, func(u *models.User) error {
		u.Following = removeID(u.Following, targetID)
		return nil
	}); err != nil {
		return err
	}
	_, err := s.mutateUser(targetID, func(u *models.User) error {
		u.Followers = removeID(u.Followers, followerID)
		return nil
	})
	return err
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// ---- publisher requests ----

func (s *Store) CreateRequest(ctx context.Context, req *models.PublisherRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Status == models.RequestPending {
		for _, existing := range s.requests {
			if existing.UserID == req.UserID && existing.Status == models.RequestPending {
				return repositories.ErrDuplicate
			}
		}
	}
	now := s.Now()
	req.ID = primitive.NewObjectID()
	req.CreatedAt = now
	req.UpdatedAt = now
	s.requests[req.ID] = *req
	return nil
}

func (s *Store) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.PublisherRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &req, nil
}

func (s *Store) FindPendingByUser(ctx context.Context, userID primitive.ObjectID) (*models.PublisherRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, req := range s.requests {
		if req.UserID == userID && req.Status == models.RequestPending {
			r := req
			return &r, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status models.PublisherRequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = s.Now()
	s.requests[id] = req
	return nil
}

func (s *Store) ListByStatus(ctx context.Context, status models.PublisherRequestStatus, startIndex, limit int64, sortAsc bool) ([]models.PublisherRequest, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := []models.PublisherRequest{}
	for _, req := range s.requests {
		if req.Status == status {
			all = append(all, req)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if sortAsc {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, startIndex, limit), int64(len(all)), nil
}

// ---- comments ----

func cloneComment(c models.Comment) *models.Comment {
	c.Likes = cloneIDs(c.Likes)
	return &c
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	comment.Likes = cloneIDs(comment.Likes)
	comment.NumberOfLikes = len(comment.Likes)
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = s.Now()
	}
	comment.UpdatedAt = comment.CreatedAt
	s.comments[comment.ID] = *cloneComment(*comment)
	return nil
}

func (s *Store) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneComment(c), nil
}

func (s *Store) sortedComments(match func(models.Comment) bool, asc bool) []models.Comment {
	out := []models.Comment{}
	for _, c := range s.comments {
		if match(c) {
			out = append(out, *cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedComments(func(c models.Comment) bool { return c.PostID == postID }, false), nil
}

func (s *Store) ListComments(ctx context.Context, startIndex, limit int64, sortAsc bool) ([]models.Comment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.sortedComments(func(models.Comment) bool { return true }, sortAsc)
	return page(all, startIndex, limit), int64(len(all)), nil
}

func (s *Store) CountCommentsSince(ctx context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, c := range s.comments {
		if !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountByUserAndPost(ctx context.Context, userID primitive.ObjectID, postID string, from, to time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, c := range s.comments {
		if c.UserID == userID && c.PostID == postID && !c.CreatedAt.Before(from) && !c.CreatedAt.After(to) {
			n++
		}
	}
	return n, nil
}

func (s *Store) mutateComment(id primitive.ObjectID, fn func(c *models.Comment) bool) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if !fn(&c) {
		return nil, repositories.ErrNotFound
	}
	c.UpdatedAt = s.Now()
	s.comments[id] = c
	return cloneComment(c), nil
}

func (s *Store) AddLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Comment, error) {
	return s.mutateComment(id, func(c *models.Comment) bool {
		if c.LikedBy(userID) {
			return false
		}
		c.Likes = append(c.Likes, userID)
		c.NumberOfLikes++
		return true
	})
}

func (s *Store) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Comment, error) {
	return s.mutateComment(id, func(c *models.Comment) bool {
		if !c.LikedBy(userID) {
			return false
		}
		c.Likes = removeID(c.Likes, userID)
		c.NumberOfLikes--
		return true
	})
}

func (s *Store) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	return s.mutateComment(id, func(c *models.Comment) bool {
		c.Content = content
		return true
	})
}

func (s *Store) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// ---- notifications ----

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNotify[n.Recipient] {
		return ErrInjected
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = s.Now()
	s.notifications[n.ID] = *n
	return nil
}

func (s *Store) recipientNotifications(recipient primitive.ObjectID) []models.Notification {
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, pageNum, limit int64) ([]models.Notification, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.recipientNotifications(recipientID)
	return page(all, (pageNum-1)*limit, limit), int64(len(all)), nil
}

func (s *Store) GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, note := range s.recipientNotifications(recipientID) {
		if !note.Read {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.Recipient != recipientID {
		return repositories.ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

func (s *Store) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if n.Recipient == recipientID {
			n.Read = true
			s.notifications[id] = n
		}
	}
	return nil
}

// Notifications returns every stored notification addressed to recipient, newest first.
func (s *Store) Notifications(recipient primitive.ObjectID) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recipientNotifications(recipient)
}

// ---- moderation log ----

func (s *Store) CreateLog(ctx context.Context, entry *models.ModerationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = uint(len(s.logs) + 1)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.Now()
	}
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *Store) ListLogs(ctx context.Context, pageNum, limit int) ([]models.ModerationLog, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.ModerationLog, len(s.logs))
	for i, l := range s.logs {
		all[len(s.logs)-1-i] = l
	}
	return page(all, int64((pageNum-1)*limit), int64(limit)), int64(len(all)), nil
}
