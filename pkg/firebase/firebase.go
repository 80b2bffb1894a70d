package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/pressroom/backend/internal/models"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and auth client
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
}

// InitFirebase initializes the Firebase application and authentication client
func InitFirebase(ctx context.Context, credentialsPath string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	firebaseApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}
	return &App{FirebaseApp: firebaseApp, AuthClient: authClient}, nil
}

// VerifyIDToken checks a Google ID token issued through Firebase and returns the asserted identity.
func (a *App) VerifyIDToken(ctx context.Context, idToken string) (*models.ExternalIdentity, error) {
	token, err := a.AuthClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return IdentityFromClaims(token.UID, token.Claims), nil
}

// IdentityFromClaims extracts the profile fields Google places in an ID token.
func IdentityFromClaims(uid string, claims map[string]interface{}) *models.ExternalIdentity {
	identity := &models.ExternalIdentity{UID: uid}
	if v, ok := claims["email"].(string); ok {
		identity.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		identity.Name = v
	}
	if v, ok := claims["picture"].(string); ok {
		identity.Picture = v
	}
	return identity
}
