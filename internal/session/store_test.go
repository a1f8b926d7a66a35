package session_test

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contextiq/contextiq-cli/internal/api"
	"github.com/contextiq/contextiq-cli/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	loginErr    error
	registerErr error
	logoutErr   error
	noUser      bool
	logins      int
	logouts     int
	registered  []string
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*api.LoginResponse, error) {
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.noUser {
		return &api.LoginResponse{Access: "access-" + email, Refresh: "refresh-" + email}, nil
	}
	return &api.LoginResponse{
		Access:  "access-" + email,
		Refresh: "refresh-" + email,
		User:    api.User{ID: "u-" + email, Email: email, Name: "Ada"},
	}, nil
}

func (f *fakeAuth) Register(_ context.Context, email, _, _ string) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, email)
	return nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logouts++
	return f.logoutErr
}

func TestLoginPersistsAndRestores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := session.OpenFileStorage(path)
	require.NoError(t, err)

	st := session.Open(fs, &fakeAuth{}, nil)
	require.Nil(t, st.Current())
	assert.Equal(t, "", st.AccessToken())

	sess, err := st.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-ada@example.com", sess.UserID)
	assert.Equal(t, "access-ada@example.com", st.AccessToken())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := session.OpenFileStorage(path)
	require.NoError(t, err)
	restored := session.Open(reopened, &fakeAuth{}, nil).Current()
	require.NotNil(t, restored)
	assert.Equal(t, "ada@example.com", restored.Email)
	assert.Equal(t, "Ada", restored.DisplayName)
	assert.Equal(t, "refresh-ada@example.com", restored.RefreshToken)
}

func TestRestoreTreatsPartialStateAsAnonymous(t *testing.T) {
	cases := map[string]map[string]string{
		"missing refresh": {session.KeyAccessToken: "a", session.KeyUser: `{"id":"u1"}`},
		"missing user":    {session.KeyAccessToken: "a", session.KeyRefreshToken: "r"},
		"corrupt user":    {session.KeyAccessToken: "a", session.KeyRefreshToken: "r", session.KeyUser: "{not json"},
		"empty user":      {session.KeyAccessToken: "a", session.KeyRefreshToken: "r", session.KeyUser: "{}"},
		"empty token":     {session.KeyAccessToken: "", session.KeyRefreshToken: "r", session.KeyUser: `{"id":"u1"}`},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			ms := session.NewMemoryStorage()
			require.NoError(t, ms.SetAll(values))
			assert.Nil(t, session.Open(ms, &fakeAuth{}, nil).Current())
		})
	}
}

func TestLoginWithoutUserIsRejectedAndNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := session.OpenFileStorage(path)
	require.NoError(t, err)

	st := session.Open(fs, &fakeAuth{noUser: true}, nil)
	_, err = st.Login(context.Background(), "ada@example.com", "pw")
	require.Error(t, err)
	assert.True(t, session.IsReason(err, session.ReasonServerError))
	assert.Nil(t, st.Current())

	reopened, err := session.OpenFileStorage(path)
	require.NoError(t, err)
	assert.Nil(t, session.Open(reopened, &fakeAuth{}, nil).Current())
}

func TestLoginWithoutUserKeepsPriorSessionAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := session.OpenFileStorage(path)
	require.NoError(t, err)

	auth := &fakeAuth{}
	st := session.Open(fs, auth, nil)
	_, err = st.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	auth.noUser = true
	_, err = st.Login(context.Background(), "eve@example.com", "pw")
	require.Error(t, err)
	require.NotNil(t, st.Current())

	reopened, err := session.OpenFileStorage(path)
	require.NoError(t, err)
	restored := session.Open(reopened, &fakeAuth{}, nil).Current()
	require.NotNil(t, restored)
	assert.Equal(t, st.Current().Email, restored.Email)
}

func TestRestoreIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	fs, err := session.OpenFileStorage(path)
	require.NoError(t, err)
	assert.Nil(t, session.Open(fs, &fakeAuth{}, nil).Current())
}

func TestLoginFailureKeepsPriorSession(t *testing.T) {
	auth := &fakeAuth{}
	st := session.Open(session.NewMemoryStorage(), auth, nil)
	_, err := st.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	auth.loginErr = &api.UnauthorizedError{APIError: &api.APIError{StatusCode: 401}}
	_, err = st.Login(context.Background(), "eve@example.com", "bad")
	require.Error(t, err)
	assert.True(t, session.IsReason(err, session.ReasonInvalidCredentials))

	cur := st.Current()
	require.NotNil(t, cur)
	assert.Equal(t, "ada@example.com", cur.Email)
}

func TestLoginErrorReasons(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want session.Reason
	}{
		{"bad request", &api.APIError{StatusCode: 400, Message: "Unable to log in"}, session.ReasonInvalidCredentials},
		{"unreachable", &api.UnreachableError{Host: "localhost:8000", Err: errors.New("refused")}, session.ReasonNetworkFailure},
		{"timeout", context.DeadlineExceeded, session.ReasonNetworkFailure},
		{"server", &api.ServerError{APIError: &api.APIError{StatusCode: 500}}, session.ReasonServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := session.Open(session.NewMemoryStorage(), &fakeAuth{loginErr: tc.err}, nil)
			_, err := st.Login(context.Background(), "ada@example.com", "pw")
			assert.True(t, session.IsReason(err, tc.want), "got %v", err)
			assert.ErrorIs(t, err, tc.err)
			assert.Nil(t, st.Current())
		})
	}
}

func TestLoginValidatesInputBeforeCallingService(t *testing.T) {
	auth := &fakeAuth{}
	st := session.Open(session.NewMemoryStorage(), auth, nil)
	_, err := st.Login(context.Background(), "not-an-email", "pw")
	assert.True(t, session.IsReason(err, session.ReasonInvalidInput))
	_, err = st.Login(context.Background(), "ada@example.com", "")
	assert.True(t, session.IsReason(err, session.ReasonInvalidInput))
	assert.Equal(t, 0, auth.logins)
}

func TestRegisterNeverEstablishesSession(t *testing.T) {
	auth := &fakeAuth{}
	st := session.Open(session.NewMemoryStorage(), auth, nil)
	require.NoError(t, st.Register(context.Background(), "ada@example.com", "pw", "Ada"))
	assert.Equal(t, []string{"ada@example.com"}, auth.registered)
	assert.Nil(t, st.Current())

	auth.registerErr = &api.ConflictError{APIError: &api.APIError{StatusCode: 409}}
	err := st.Register(context.Background(), "ada@example.com", "pw", "Ada")
	assert.True(t, session.IsReason(err, session.ReasonRegistrationConflict))

	auth.registerErr = &api.APIError{StatusCode: 400, Message: "email: A user is already registered with this e-mail address."}
	err = st.Register(context.Background(), "ada@example.com", "pw", "Ada")
	assert.True(t, session.IsReason(err, session.ReasonRegistrationConflict))

	auth.registerErr = &api.APIError{StatusCode: 400, Message: "password1: This password is too common."}
	err = st.Register(context.Background(), "ada@example.com", "pw", "Ada")
	assert.True(t, session.IsReason(err, session.ReasonInvalidInput))
}

func TestLogoutClearsEvenWhenServiceFails(t *testing.T) {
	ms := session.NewMemoryStorage()
	auth := &fakeAuth{logoutErr: &api.UnreachableError{Err: errors.New("down")}}
	st := session.Open(ms, auth, nil)
	_, err := st.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, st.Logout(context.Background()))
	assert.Nil(t, st.Current())
	assert.Equal(t, 1, auth.logouts)
	for _, k := range []string{session.KeyAccessToken, session.KeyRefreshToken, session.KeyUser} {
		_, ok := ms.Get(k)
		assert.False(t, ok, "key %s should be cleared", k)
	}
}

func TestLogoutWhileAnonymousSkipsService(t *testing.T) {
	auth := &fakeAuth{}
	st := session.Open(session.NewMemoryStorage(), auth, nil)
	require.NoError(t, st.Logout(context.Background()))
	assert.Equal(t, 0, auth.logouts)
}

// Session is present iff the most recent successful login has not been
// followed by a logout.
func TestSessionPresenceFollowsLoginLogoutSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	auth := &fakeAuth{}
	st := session.Open(session.NewMemoryStorage(), auth, nil)
	loggedIn := false
	for i := 0; i < 500; i++ {
		switch rng.Intn(3) {
		case 0:
			auth.loginErr = nil
			_, err := st.Login(context.Background(), "ada@example.com", "pw")
			require.NoError(t, err)
			loggedIn = true
		case 1:
			auth.loginErr = &api.APIError{StatusCode: 400}
			_, err := st.Login(context.Background(), "ada@example.com", "pw")
			require.Error(t, err)
		case 2:
			auth.logoutErr = nil
			if rng.Intn(2) == 0 {
				auth.logoutErr = errors.New("transport")
			}
			require.NoError(t, st.Logout(context.Background()))
			loggedIn = false
		}
		assert.Equal(t, loggedIn, st.Current() != nil, "step %d", i)
	}
}

func TestExpiresAtReadsJWTClaim(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	s := &session.Session{AccessToken: tok, RefreshToken: "r"}
	got, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.True(t, got.Equal(exp), "got %v want %v", got, exp)

	opaque := &session.Session{AccessToken: "opaque-token", RefreshToken: "r"}
	_, ok = opaque.ExpiresAt()
	assert.False(t, ok)
}
