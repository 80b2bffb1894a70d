package firebase

import (
	"context"
	"testing"
)

func TestIdentityFromClaims(t *testing.T) {
	id := IdentityFromClaims("uid-1", map[string]interface{}{
		"email":   "ada@example.com",
		"name":    "Ada",
		"picture": 42,
	})
	if id.UID != "uid-1" || id.Email != "ada@example.com" || id.Name != "Ada" || id.Picture != "" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestInitFirebaseRequiresCredentials(t *testing.T) {
	if _, err := InitFirebase(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := InitFirebase(context.Background(), "/does/not/exist.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
