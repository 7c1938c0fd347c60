// Package auth exchanges Firebase ID tokens for session access tokens and
// verifies them on protected routes. The identity protocol itself is
// delegated to Firebase; this package only issues and checks HS256 JWTs.
package auth

import (
	"context"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"

	"github.com/taskflowhq/taskflow-api/internal/apperr"
)

// Verifier validates an external identity provider token and returns the
// user id it asserts.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// FirebaseVerifier verifies Firebase ID tokens. A nil client (credentials
// not configured) reports Auth errors instead of panicking, keeping the rest
// of the API usable.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier wraps a Firebase auth client. client may be nil.
func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if v.client == nil {
		return "", apperr.New(apperr.Auth, "identity provider not configured")
	}
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", apperr.Wrap(apperr.Auth, "invalid Firebase token", err)
	}
	return token.UID, nil
}

// Sessions issues and verifies session access tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a session token authority.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed access token with the user id as subject.
func (s *Sessions) Issue(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "sign access token", err)
	}
	return signed, nil
}

// Verify checks a token's signature and expiry and returns its subject.
// Every failure mode maps to an Auth error.
func (s *Sessions) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", apperr.Wrap(apperr.Auth, "invalid access token", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", apperr.New(apperr.Auth, "access token has no subject")
	}
	return claims.Subject, nil
}
