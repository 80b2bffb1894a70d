package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	user := &models.User{ID: primitive.NewObjectID(), IsAdmin: true, IsPublisher: false}

	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != user.ID.Hex() || !claims.IsAdmin || claims.IsPublisher {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != SessionTTL {
		t.Fatalf("expected %v lifetime, got %v", SessionTTL, got)
	}

	actor, err := ActorFromClaims(claims)
	if err != nil {
		t.Fatalf("actor: %v", err)
	}
	if actor.ID != user.ID || !actor.IsAdmin {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTIssuer("one").Issue(&models.User{ID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewJWTIssuer("two").Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewJWTIssuer("s")
	issuer.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := issuer.Issue(&models.User{ID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuer.now = time.Now
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatal("expected match")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatal("expected mismatch")
	}
}
