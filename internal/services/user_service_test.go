package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"github.com/anonto42/pressroom/backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testVerifier struct {
	identities map[string]*models.ExternalIdentity
}

func (v testVerifier) VerifyIDToken(ctx context.Context, idToken string) (*models.ExternalIdentity, error) {
	if id, ok := v.identities[idToken]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func newUsers(store *memory.Store, tokens *testTokens, verifier IdentityVerifier) *UserService {
	return NewUserService(UserDeps{
		Users:    store,
		Tokens:   tokens,
		Verifier: verifier,
		Clock:    fixedClock{now: testNow},
	})
}

func strp(s string) *string { return &s }

func TestRegisterAndSignIn(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tokens := &testTokens{}
	svc := newUsers(store, tokens, nil)

	_, err := svc.Register(ctx, "Bad Name", "a@example.com", "secret1")
	expectKind(t, err, KindValidation)
	_, err = svc.Register(ctx, "ada", "a@example.com", "123")
	expectKind(t, err, KindValidation)

	session, err := svc.Register(ctx, "ada", "a@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Token == "" || session.User.Password == "secret1" {
		t.Fatalf("unexpected session: %+v", session)
	}
	_, err = svc.Register(ctx, "ada", "other@example.com", "secret1")
	expectKind(t, err, KindConflict)

	_, err = svc.SignIn(ctx, "a@example.com", "wrong")
	expectKind(t, err, KindUnauthorized)
	_, err = svc.SignIn(ctx, "nobody@example.com", "secret1")
	expectKind(t, err, KindUnauthorized)

	signedIn, err := svc.SignIn(ctx, "a@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if signedIn.User.ID != session.User.ID {
		t.Fatalf("signed in as wrong user")
	}
}

func TestSignInHonoursBans(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUsers(store, &testTokens{}, nil)

	session, err := svc.Register(ctx, "ada", "a@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id := session.User.ID

	if _, err := store.SetBan(ctx, id, testNow.Add(time.Hour), "spam"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	_, err = svc.SignIn(ctx, "a@example.com", "secret1")
	expectKind(t, err, KindForbidden)

	if _, err := store.SetBan(ctx, id, testNow.Add(-time.Minute), "spam"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if _, err := svc.SignIn(ctx, "a@example.com", "secret1"); err != nil {
		t.Fatalf("expired ban should be lifted on sign in: %v", err)
	}
	reloaded, _ := store.GetUserByID(ctx, id)
	if reloaded.IsBanned || reloaded.BanExpiresAt != nil {
		t.Fatalf("expired ban not cleared: %+v", reloaded)
	}
}

func TestSignInWithFirebase(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	existing := seedUser(t, store, "ada", false, false)
	verifier := testVerifier{identities: map[string]*models.ExternalIdentity{
		"linked": {UID: "uid-ada", Email: existing.Email, Name: "Ada"},
		"fresh":  {UID: "uid-new", Email: "grace@example.com", Name: "Grace Hopper!", Picture: "https://img/g.png"},
	}}
	svc := newUsers(store, &testTokens{}, verifier)

	_, err := svc.SignInWithFirebase(ctx, "forged")
	expectKind(t, err, KindUnauthorized)

	linked, err := svc.SignInWithFirebase(ctx, "linked")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if linked.User.ID != existing.ID {
		t.Fatalf("expected the existing account to be linked")
	}
	byUID, err := store.GetUserByFirebaseUID(ctx, "uid-ada")
	if err != nil || byUID.ID != existing.ID {
		t.Fatalf("uid not stored: %v", err)
	}

	created, err := svc.SignInWithFirebase(ctx, "fresh")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ValidateUsername(created.User.Username); err != nil {
		t.Fatalf("generated username %q is invalid: %v", created.User.Username, err)
	}
	if created.User.ProfilePicture != "https://img/g.png" || !created.User.Verified {
		t.Fatalf("unexpected created user: %+v", created.User)
	}

	again, err := svc.SignInWithFirebase(ctx, "fresh")
	if err != nil || again.User.ID != created.User.ID {
		t.Fatalf("second sign-in should reuse the account: %v", err)
	}

	_, err = newUsers(store, &testTokens{}, nil).SignInWithFirebase(ctx, "fresh")
	expectKind(t, err, KindUnauthorized)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUsers(store, &testTokens{}, nil)
	session, err := svc.Register(ctx, "ada", "a@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	me := session.User
	other := seedUser(t, store, "taken", false, false)

	_, err = svc.UpdateUser(ctx, other.Actor(), me.ID, models.UpdateUserRequest{Username: strp("zed")})
	expectKind(t, err, KindForbidden)

	cases := []struct {
		name string
		req  models.UpdateUserRequest
	}{
		{"short password", models.UpdateUserRequest{Password: strp("abc")}},
		{"same password", models.UpdateUserRequest{Password: strp("secret1")}},
		{"uppercase username", models.UpdateUserRequest{Username: strp("Ada")}},
		{"spaced username", models.UpdateUserRequest{Username: strp("a da")}},
		{"symbol username", models.UpdateUserRequest{Username: strp("ada_x")}},
		{"taken username", models.UpdateUserRequest{Username: strp("taken")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateUser(ctx, me.Actor(), me.ID, tc.req)
			expectKind(t, err, KindValidation)
		})
	}

	young := testNow.AddDate(-12, 0, 0)
	_, err = svc.UpdateUser(ctx, me.Actor(), me.ID, models.UpdateUserRequest{DateOfBirth: &young})
	expectKind(t, err, KindValidation)

	adult := testNow.AddDate(-13, 0, 0)
	updated, err := svc.UpdateUser(ctx, me.Actor(), me.ID, models.UpdateUserRequest{
		Username:    strp("adal"),
		Password:    strp("newsecret"),
		DateOfBirth: &adult,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Username != "adal" || updated.DateOfBirth == nil {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if _, err := svc.SignIn(ctx, "a@example.com", "newsecret"); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
}

func TestAgeAt(t *testing.T) {
	birth := time.Date(2013, time.March, 11, 0, 0, 0, 0, time.UTC)
	if got := AgeAt(birth, testNow); got != 12 {
		t.Fatalf("day before birthday: expected 12, got %d", got)
	}
	if got := AgeAt(birth, testNow.AddDate(0, 0, 1)); got != 13 {
		t.Fatalf("on birthday: expected 13, got %d", got)
	}
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	admin := seedUser(t, store, "boss", true, false)
	a := seedUser(t, store, "alpha", false, false)
	b := seedUser(t, store, "beta", false, false)
	svc := newUsers(store, &testTokens{}, nil)

	expectKind(t, svc.DeleteUser(ctx, a.Actor(), b.ID), KindForbidden)
	if err := svc.DeleteUser(ctx, a.Actor(), a.ID); err != nil {
		t.Fatalf("self delete: %v", err)
	}
	if err := svc.DeleteUser(ctx, admin.Actor(), b.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := store.GetUserByID(ctx, b.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	expectKind(t, svc.DeleteUser(ctx, admin.Actor(), primitive.NewObjectID()), KindNotFound)
}

func TestListUsersAndGraph(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	admin := seedUser(t, store, "boss", true, false)
	pub := seedUser(t, store, "writer", false, true)
	reader := seedUser(t, store, "reader", false, false)
	users := newUsers(store, &testTokens{}, nil)
	moderation := newModeration(store, &testTokens{})

	_, err := users.ListUsers(ctx, reader.Actor(), repositories.UserFilter{})
	expectKind(t, err, KindForbidden)

	page, err := users.ListUsers(ctx, admin.Actor(), repositories.UserFilter{Role: "publisher", Limit: 9})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalUsers != 1 || page.Users[0].ID != pub.ID {
		t.Fatalf("unexpected page: %+v", page)
	}

	if _, err := moderation.FollowUser(ctx, reader.Actor(), pub.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	followers, err := users.Followers(ctx, pub.ID)
	if err != nil || len(followers) != 1 || followers[0].Username != "reader" {
		t.Fatalf("followers: %v %+v", err, followers)
	}
	following, err := users.Following(ctx, reader.ID)
	if err != nil || len(following) != 1 || following[0].Username != "writer" {
		t.Fatalf("following: %v %+v", err, following)
	}

	found, err := users.SearchUsers(ctx, "WRI")
	if err != nil || len(found) != 1 {
		t.Fatalf("search: %v %+v", err, found)
	}
	_, err = users.SearchUsers(ctx, "  ")
	expectKind(t, err, KindValidation)

	got, err := users.GetUser(ctx, pub.ID)
	if err != nil || got.Username != "writer" {
		t.Fatalf("get: %v", err)
	}
	_, err = users.GetUser(ctx, primitive.NewObjectID())
	expectKind(t, err, KindNotFound)

	refreshed, err := users.RefreshSession(ctx, pub.Actor())
	if err != nil || refreshed.Token == "" {
		t.Fatalf("refresh: %v", err)
	}
}
