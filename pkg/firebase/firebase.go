package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	jwtutil "github.com/Dias221467/Campus_Overflow/pkg/jwt"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and auth client
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
}

// InitFirebase initializes the Firebase application and authentication client.
// An empty credentialsPath falls back to application default credentials.
func InitFirebase(ctx context.Context, projectID, credentialsPath string) (*App, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	logger.Log.Info("Firebase app and auth client initialized")
	return &App{FirebaseApp: app, AuthClient: authClient}, nil
}

// Firestore opens a Firestore client for the app's project.
func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	client, err := a.FirebaseApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}
	return client, nil
}

// UserLookup resolves the local user behind a verified Firebase identity.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// IDTokenVerifier accepts Firebase ID tokens and maps them to local users by email.
type IDTokenVerifier struct {
	Auth  *auth.Client
	Users UserLookup
}

func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*jwtutil.Claims, error) {
	token, err := v.Auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jwtutil.ErrInvalidToken, err)
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("firebase token carries no email")
	}

	user, err := v.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("no local account for %s: %w", email, err)
	}
	return &jwtutil.Claims{UserID: user.ID.Hex(), Email: user.Email}, nil
}
