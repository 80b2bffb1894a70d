package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ---- posts ----

func (s *Store) postSlugTaken(slug string, except primitive.ObjectID) bool {
	for id, p := range s.posts {
		if id != except && p.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.postSlugTaken(post.Slug, primitive.NilObjectID) {
		return repositories.ErrDuplicate
	}
	post.ID = primitive.NewObjectID()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.Now()
	}
	post.UpdatedAt = post.CreatedAt
	s.posts[post.ID] = *post
	return nil
}

func (s *Store) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func matchesPostFilter(p models.Post, f repositories.PostFilter) bool {
	if !f.UserID.IsZero() && p.UserID != f.UserID {
		return false
	}
	if !f.PostID.IsZero() && p.ID != f.PostID {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Slug != "" && p.Slug != f.Slug {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Content), q) {
			return false
		}
	}
	return true
}

func (s *Store) ListPosts(ctx context.Context, f repositories.PostFilter) ([]models.Post, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Post{}
	for _, p := range s.posts {
		if matchesPostFilter(p, f) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortAsc {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return page(out, f.StartIndex, f.Limit), int64(len(out)), nil
}

func (s *Store) CountPostsSince(ctx context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.posts {
		if !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdatePost(ctx context.Context, id primitive.ObjectID, u repositories.PostUpdate) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if u.Slug != nil && s.postSlugTaken(*u.Slug, id) {
		return nil, repositories.ErrDuplicate
	}
	setIf(&p.Title, u.Title)
	setIf(&p.Content, u.Content)
	setIf(&p.Image, u.Image)
	setIf(&p.Category, u.Category)
	setIf(&p.Slug, u.Slug)
	p.UpdatedAt = s.Now()
	s.posts[id] = p
	return &p, nil
}

func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ---- stories ----

func (s *Store) storySlugTaken(slug string, except primitive.ObjectID) bool {
	for id, st := range s.stories {
		if id != except && st.Slug == slug {
			return true
		}
	}
	return false
}

func (s *Store) CreateStory(ctx context.Context, story *models.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storySlugTaken(story.Slug, primitive.NilObjectID) {
		return repositories.ErrDuplicate
	}
	story.ID = primitive.NewObjectID()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = s.Now()
	}
	story.UpdatedAt = story.CreatedAt
	s.stories[story.ID] = *story
	return nil
}

func (s *Store) GetStoryByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &st, nil
}

func (s *Store) ListStories(ctx context.Context, f repositories.StoryFilter) ([]models.Story, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Story{}
	for _, st := range s.stories {
		if !f.UserID.IsZero() && st.UserID != f.UserID {
			continue
		}
		if f.Status != "" && st.Status != f.Status {
			continue
		}
		if f.Category != "" && st.Category != f.Category {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortAsc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.StartIndex, f.Limit), int64(len(out)), nil
}

func (s *Store) mutateStory(id primitive.ObjectID, fn func(st *models.Story) error) (*models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if err := fn(&st); err != nil {
		return nil, err
	}
	s.stories[id] = st
	return &st, nil
}

func (s *Store) UpdateStory(ctx context.Context, id primitive.ObjectID, u repositories.StoryUpdate) (*models.Story, error) {
	return s.mutateStory(id, func(st *models.Story) error {
		if u.Slug != nil && s.storySlugTaken(*u.Slug, id) {
			return repositories.ErrDuplicate
		}
		setIf(&st.Title, u.Title)
		setIf(&st.Content, u.Content)
		setIf(&st.Image, u.Image)
		setIf(&st.Category, u.Category)
		setIf(&st.Country, u.Country)
		setIf(&st.Slug, u.Slug)
		setIf(&st.Status, u.Status)
		st.UpdatedAt = s.Now()
		return nil
	})
}

func (s *Store) SetStoryStatus(ctx context.Context, id primitive.ObjectID, status models.StoryStatus, reason string) (*models.Story, error) {
	return s.mutateStory(id, func(st *models.Story) error {
		st.Status = status
		st.RejectionReason = ""
		if status == models.StoryRejected {
			st.RejectionReason = reason
		}
		st.UpdatedAt = s.Now()
		return nil
	})
}

func (s *Store) ViewApprovedStory(ctx context.Context, slug string) (*models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.stories {
		if st.Slug == slug && st.Status == models.StoryApproved {
			st.Views++
			s.stories[id] = st
			return &st, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) DeleteStory(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stories[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.stories, id)
	return nil
}
