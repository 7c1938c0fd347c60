// Package fcm bootstraps the Firebase Admin SDK and hands out messaging and
// auth clients.
//
// Credentials resolve in order: service account key file, then the
// FIREBASE_PROJECT_ID / FIREBASE_PRIVATE_KEY / FIREBASE_CLIENT_EMAIL
// environment triple, then application-default credentials.
package fcm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Credentials describes where the Firebase service account comes from.
type Credentials struct {
	File        string // path to serviceAccountKey.json; skipped when absent
	ProjectID   string
	PrivateKey  string
	ClientEmail string
	ClientID    string
}

// serviceAccount is the JSON shape the Admin SDK expects for inline
// credentials.
type serviceAccount struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id,omitempty"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
}

// App lazily initializes the Firebase app exactly once, no matter how many
// goroutines ask for a client.
type App struct {
	creds Credentials
	log   *slog.Logger

	once sync.Once
	app  *firebase.App
	err  error
}

// New creates an uninitialized App. Initialization happens on first use.
func New(creds Credentials, log *slog.Logger) *App {
	return &App{creds: creds, log: log}
}

// Ensure initializes the Firebase app if needed and returns it. Safe for
// concurrent use; repeated calls never re-run setup.
func (a *App) Ensure(ctx context.Context) (*firebase.App, error) {
	a.once.Do(func() {
		a.app, a.err = a.initialize(ctx)
		if a.err != nil {
			a.log.Error("Firebase Admin SDK initialization failed", "error", a.err)
		} else {
			a.log.Info("Firebase Admin SDK initialized")
		}
	})
	return a.app, a.err
}

// Messaging returns the FCM messaging client.
func (a *App) Messaging(ctx context.Context) (*messaging.Client, error) {
	app, err := a.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("messaging client: %w", err)
	}
	return client, nil
}

// Auth returns the Firebase auth client used for ID-token verification.
func (a *App) Auth(ctx context.Context) (*fbauth.Client, error) {
	app, err := a.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth client: %w", err)
	}
	return client, nil
}

func (a *App) initialize(ctx context.Context) (*firebase.App, error) {
	if a.creds.File != "" {
		if _, err := os.Stat(a.creds.File); err == nil {
			a.log.Info("using service account key file", "path", a.creds.File)
			return firebase.NewApp(ctx, nil, option.WithCredentialsFile(a.creds.File))
		}
	}

	if a.creds.ProjectID != "" && a.creds.PrivateKey != "" && a.creds.ClientEmail != "" {
		raw, err := json.Marshal(serviceAccount{
			Type:      "service_account",
			ProjectID: a.creds.ProjectID,
			// Env vars carry the key with escaped newlines.
			PrivateKey:              strings.ReplaceAll(a.creds.PrivateKey, `\n`, "\n"),
			ClientEmail:             a.creds.ClientEmail,
			ClientID:                a.creds.ClientID,
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
		})
		if err != nil {
			return nil, fmt.Errorf("marshal service account: %w", err)
		}
		a.log.Info("using service account from environment", "project_id", a.creds.ProjectID)
		return firebase.NewApp(ctx, nil, option.WithCredentialsJSON(raw))
	}

	a.log.Warn("no explicit Firebase credentials, falling back to application-default")
	return firebase.NewApp(ctx, nil)
}
