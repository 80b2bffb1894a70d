package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anonto42/pressroom/backend/internal/auth"
	"github.com/anonto42/pressroom/backend/internal/cache"
	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	MinPasswordLength = 6
	MinimumAge        = 13
	searchLimit       = 10
)

var usernameChars = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// IdentityVerifier verifies an ID token from an external identity provider.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*models.ExternalIdentity, error)
}

// Session is a signed-in user together with a freshly issued token.
type Session struct {
	User  *models.User
	Token string
}

type UserPage struct {
	Users          []models.User `json:"users"`
	TotalUsers     int64         `json:"totalUsers"`
	LastMonthUsers int64         `json:"lastMonthUsers"`
}

type UserService struct {
	users    repositories.UserRepository
	tokens   TokenIssuer
	verifier IdentityVerifier
	profiles *cache.Cache
	ttl      time.Duration
	clock    Clock
	log      *zap.Logger
}

type UserDeps struct {
	Users    repositories.UserRepository
	Tokens   TokenIssuer
	Verifier IdentityVerifier // optional; nil disables Google sign-in
	Profiles *cache.Cache     // optional
	CacheTTL time.Duration
	Clock    Clock
	Log      *zap.Logger
}

func NewUserService(d UserDeps) *UserService {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = 5 * time.Minute
	}
	return &UserService{
		users:    d.Users,
		tokens:   d.Tokens,
		verifier: d.Verifier,
		profiles: d.Profiles,
		ttl:      d.CacheTTL,
		clock:    d.Clock,
		log:      d.Log,
	}
}

func profileKey(id primitive.ObjectID) string {
	return "pressroom:user:" + id.Hex()
}

// invalidateProfiles drops cached public profiles for ids.
func invalidateProfiles(ctx context.Context, c *cache.Cache, ids ...primitive.ObjectID) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}
	c.Invalidate(context.WithoutCancel(ctx), keys...)
}

// ValidateUsername applies the username rules shared by sign-up and profile updates.
func ValidateUsername(username string) error {
	switch {
	case len(username) < 3 || len(username) > 20:
		return ValidationError("Username must be between 3 and 20 characters long")
	case strings.Contains(username, " "):
		return ValidationError("Username cannot contain spaces")
	case username != strings.ToLower(username):
		return ValidationError("Username must be lowercase")
	case !usernameChars.MatchString(username):
		return ValidationError("Username can only contain letters and numbers")
	}
	return nil
}

// AgeAt returns the age in whole years of someone born on birth, as of now.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

func (s *UserService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

// Register creates a local account and signs it in.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*Session, error) {
	if username == "" || email == "" || password == "" {
		return nil, ValidationError("All fields are required")
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ValidationError("Password must be at least %d characters long", MinPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: username, Email: email, Password: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ConflictError("Username or email is already taken")
		}
		return nil, err
	}
	return s.session(user)
}

// checkBan refuses users inside their ban window and lifts bans that have expired.
func (s *UserService) checkBan(ctx context.Context, user *models.User) (*models.User, error) {
	if !user.IsBanned {
		return user, nil
	}
	now := s.clock.Now()
	if user.BanActive(now) {
		until := "further notice"
		if user.BanExpiresAt != nil {
			until = user.BanExpiresAt.Format("2006-01-02 15:04 MST")
		}
		return nil, ForbiddenError("Your account is banned until %s. Reason: %s", until, user.BanReason)
	}
	if err := s.users.ClearBan(ctx, user.ID); err != nil {
		return nil, orNotFound(err, "User not found")
	}
	invalidateProfiles(ctx, s.profiles, user.ID)
	user.IsBanned = false
	user.BanExpiresAt = nil
	user.BanReason = ""
	return user, nil
}

// SignIn authenticates with email and password.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ValidationError("All fields are required")
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, UnauthorizedError("Invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, UnauthorizedError("Invalid email or password")
	}
	if user, err = s.checkBan(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

// SignInWithFirebase verifies a Google ID token and signs in the matching
// account, linking by email or creating one on first use.
func (s *UserService) SignInWithFirebase(ctx context.Context, idToken string) (*Session, error) {
	if s.verifier == nil {
		return nil, UnauthorizedError("Google sign-in is not configured")
	}
	identity, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.log.Debug("firebase token rejected", zap.Error(err))
		return nil, UnauthorizedError("Invalid Google ID token")
	}

	user, err := s.users.GetUserByFirebaseUID(ctx, identity.UID)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		user, err = s.linkOrCreate(ctx, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if user, err = s.checkBan(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *UserService) linkOrCreate(ctx context.Context, identity *models.ExternalIdentity) (*models.User, error) {
	if identity.Email == "" {
		return nil, UnauthorizedError("Google account has no email address")
	}
	user, err := s.users.GetUserByEmail(ctx, identity.Email)
	if err == nil {
		if err := s.users.SetFirebaseUID(ctx, user.ID, identity.UID); err != nil {
			return nil, err
		}
		user.FirebaseUID = identity.UID
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user = &models.User{
		Username:       generatedUsername(identity.Name),
		Email:          identity.Email,
		Password:       hash,
		FirebaseUID:    identity.UID,
		ProfilePicture: identity.Picture,
		Verified:       true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ConflictError("Username or email is already taken")
		}
		return nil, err
	}
	return user, nil
}

// generatedUsername derives a valid username from a display name plus a random suffix.
func generatedUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) > 14 {
		base = base[:14]
	}
	if base == "" {
		base = "user"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return base + suffix
}

// RefreshSession reloads the actor and reissues their token with current role flags.
func (s *UserService) RefreshSession(ctx context.Context, actor models.Actor) (*Session, error) {
	user, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, orNotFound(err, "User not found")
	}
	if user, err = s.checkBan(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

// GetUser returns a public profile, read through the profile cache.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := cache.GetOrLoadJSON(s.profiles, ctx, profileKey(id), s.ttl, func(ctx context.Context) (*models.User, error) {
		return s.users.GetUserByID(ctx, id)
	})
	if err != nil {
		return nil, orNotFound(err, "User not found")
	}
	if user == nil {
		return nil, NotFoundError("User not found")
	}
	return user, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, orNotFound(err, "User not found")
	}
	return user, nil
}

func (s *UserService) SearchUsers(ctx context.Context, query string) ([]models.UserCompact, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ValidationError("Username query is required")
	}
	users, err := s.users.SearchUsers(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	return compact(users), nil
}

// ListUsers pages through users for the admin dashboard.
func (s *UserService) ListUsers(ctx context.Context, actor models.Actor, filter repositories.UserFilter) (*UserPage, error) {
	if !actor.IsAdmin {
		return nil, ForbiddenError("You are not authorized to view all users")
	}
	users, total, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, err
	}
	lastMonth, err := s.users.CountUsersSince(ctx, filter, s.clock.Now().AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, TotalUsers: total, LastMonthUsers: lastMonth}, nil
}

// UpdateUser applies a partial profile update. Users may only update themselves.
func (s *UserService) UpdateUser(ctx context.Context, actor models.Actor, id primitive.ObjectID, req models.UpdateUserRequest) (*models.User, error) {
	if !actor.Is(id) {
		return nil, ForbiddenError("You are not authorized to update this user")
	}
	existing, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "User not found")
	}

	update := repositories.ProfileUpdate{
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
		DateOfBirth:    req.DateOfBirth,
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < MinPasswordLength {
			return nil, ValidationError("Password must be at least %d characters long", MinPasswordLength)
		}
		if auth.CheckPassword(existing.Password, *req.Password) {
			return nil, ValidationError("The new password cannot be the same as the current one")
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}
	if req.Username != nil && *req.Username != "" {
		if err := ValidateUsername(*req.Username); err != nil {
			return nil, err
		}
		taken, err := s.users.GetUserByUsername(ctx, *req.Username)
		if err == nil && taken.ID != id {
			return nil, ValidationError("Username is already taken")
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		update.Username = req.Username
	}
	if req.DateOfBirth != nil && AgeAt(*req.DateOfBirth, s.clock.Now()) < MinimumAge {
		return nil, ValidationError("You must be at least %d years old to use this platform", MinimumAge)
	}

	user, err := s.users.UpdateProfile(ctx, id, update)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ValidationError("Username or email is already taken")
		}
		return nil, orNotFound(err, "User not found")
	}
	invalidateProfiles(ctx, s.profiles, id)
	return user, nil
}

// DeleteUser removes an account. Admins may delete anyone, users only themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	if !actor.IsAdmin && !actor.Is(id) {
		return ForbiddenError("You are not authorized to delete this user")
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return orNotFound(err, "User not found")
	}
	invalidateProfiles(ctx, s.profiles, id)
	return nil
}

func (s *UserService) Followers(ctx context.Context, id primitive.ObjectID) ([]models.UserCompact, error) {
	return s.related(ctx, id, func(u *models.User) []primitive.ObjectID { return u.Followers })
}

func (s *UserService) Following(ctx context.Context, id primitive.ObjectID) ([]models.UserCompact, error) {
	return s.related(ctx, id, func(u *models.User) []primitive.ObjectID { return u.Following })
}

func (s *UserService) related(ctx context.Context, id primitive.ObjectID, pick func(*models.User) []primitive.ObjectID) ([]models.UserCompact, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "User not found")
	}
	users, err := s.users.GetUsersByIDs(ctx, pick(user))
	if err != nil {
		return nil, err
	}
	return compact(users), nil
}

func compact(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
