package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/contextiq/contextiq-cli/internal/api"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Authenticator is the remote side of the auth lifecycle. *api.Client
// implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, email, password, name string) error
	Logout(ctx context.Context) error
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registration struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Name     string `validate:"required"`
}

// Store holds the current Session. Reads are synchronous; only Login and
// Logout change it.
type Store struct {
	mu       sync.RWMutex
	current  *Session
	storage  Storage
	auth     Authenticator
	log      *zap.Logger
	validate *validator.Validate
}

// Open builds a Store and restores the persisted session. Incomplete or
// unreadable stored state yields an anonymous store.
func Open(storage Storage, auth Authenticator, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		storage:  storage,
		auth:     auth,
		log:      log,
		validate: validator.New(),
	}
	s.current = s.restore()
	return s
}

func (s *Store) restore() *Session {
	access, okA := s.storage.Get(KeyAccessToken)
	refresh, okR := s.storage.Get(KeyRefreshToken)
	raw, okU := s.storage.Get(KeyUser)
	if !okA || !okR || !okU || access == "" || refresh == "" {
		if okA || okR || okU {
			s.log.Debug("ignoring incomplete stored session")
		}
		return nil
	}
	var u api.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || !identifies(u) {
		s.log.Debug("ignoring unreadable stored user", zap.Error(err))
		return nil
	}
	s.log.Debug("session restored", zap.String("user_id", u.ID))
	return newSession(u, access, refresh)
}

// identifies reports whether u names a user. Login and restore apply the
// same rule.
func identifies(u api.User) bool {
	return u.ID != "" || u.Email != ""
}

// Current returns a copy of the session, or nil when anonymous.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

// Login authenticates and replaces the current session. On any failure the
// previous session, if there was one, is left as it was.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return nil, &AuthError{Reason: ReasonInvalidInput, Err: err}
	}
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.log.Info("login failed", zap.String("email", email), zap.Error(err))
		return nil, classifyLoginError(err)
	}
	if !identifies(resp.User) {
		s.log.Warn("login response carries no user identity", zap.String("email", email))
		return nil, &AuthError{Reason: ReasonServerError, Err: errors.New("login response has no user")}
	}
	user, err := json.Marshal(resp.User)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.SetAll(map[string]string{
		KeyAccessToken:  resp.Access,
		KeyRefreshToken: resp.Refresh,
		KeyUser:         string(user),
	}); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	sess := newSession(resp.User, resp.Access, resp.Refresh)

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.log.Info("logged in", zap.String("user_id", sess.UserID))
	cp := *sess
	return &cp, nil
}

// Register creates an account. It never establishes a session.
func (s *Store) Register(ctx context.Context, email, password, name string) error {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if err := s.validate.Struct(registration{Email: email, Password: password, Name: name}); err != nil {
		return &AuthError{Reason: ReasonInvalidInput, Err: err}
	}
	if err := s.auth.Register(ctx, email, password, name); err != nil {
		s.log.Info("registration failed", zap.String("email", email), zap.Error(err))
		return classifyRegisterError(err)
	}
	s.log.Info("registered", zap.String("email", email))
	return nil
}

// Logout notifies the auth service when signed in, then clears the session
// in memory and in storage regardless of how the notification went. The
// returned error only reports a failure to clear durable storage.
func (s *Store) Logout(ctx context.Context) error {
	if s.Current() != nil {
		if err := s.auth.Logout(ctx); err != nil {
			s.log.Warn("logout notification failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.storage.Delete(KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		return fmt.Errorf("clear stored session: %w", err)
	}
	s.log.Info("logged out")
	return nil
}
