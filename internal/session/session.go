// Package session owns the signed-in identity: it restores it from durable
// storage at startup, replaces it on login and clears it on logout. It is
// the only writer of the persisted credentials.
package session

import (
	"time"

	"github.com/contextiq/contextiq-cli/internal/api"
	"github.com/golang-jwt/jwt/v5"
)

// Storage keys. They match the names the web client used so a shared
// backend sees the same shape.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Session is the authenticated identity plus its credentials.
// A non-nil Session always carries both tokens.
type Session struct {
	UserID       string
	Email        string
	DisplayName  string
	Role         string
	AccessToken  string
	RefreshToken string
}

func newSession(user api.User, access, refresh string) *Session {
	return &Session{
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.Name,
		Role:         user.Role,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}

// ExpiresAt reads the exp claim of the access token without verifying the
// signature. ok is false for opaque or malformed tokens. It is display-only.
func (s *Session) ExpiresAt() (t time.Time, ok bool) {
	if s == nil || s.AccessToken == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Label is the name shown for the session in the UI.
func (s *Session) Label() string {
	if s == nil {
		return "anonymous"
	}
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}
