package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseph-eiei/AirlineApp/internal/auth"
	"github.com/Joseph-eiei/AirlineApp/internal/backend"
	"github.com/Joseph-eiei/AirlineApp/internal/devserver"
	"github.com/Joseph-eiei/AirlineApp/internal/localstore"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
	"github.com/Joseph-eiei/AirlineApp/internal/supabase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLocalService(t *testing.T) (*auth.Service, *localstore.UserStore, *localstore.SessionStore) {
	t.Helper()
	storage := localstore.NewStorage(t.TempDir())
	users := localstore.NewUserStore(storage, testLogger())
	sessions := localstore.NewSessionStore(storage, testLogger())
	be := backend.NewLocal(users, testLogger())
	return auth.NewService(be, sessions, testLogger()), users, sessions
}

func TestLogin_LocalFixtureAccount(t *testing.T) {
	svc, _, sessions := newLocalService(t)
	ctx := context.Background()

	user, err := svc.Login(ctx, "traveler", "traveler123")
	require.NoError(t, err)
	assert.Equal(t, "mock-user-001", user.ID)
	assert.Equal(t, "traveler", user.Username)

	// Session persisted after a successful login.
	stored, err := sessions.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "mock-user-001", stored.ID)
}

func TestLogin_Failures(t *testing.T) {
	svc, _, _ := newLocalService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"wrong password", "traveler", "wrong", model.ErrIncorrectPassword},
		{"unknown account", "nobody", "whatever", model.ErrAccountNotFound},
		{"missing username", "   ", "pw", model.ErrMissingCredentials},
		{"missing password", "traveler", "", model.ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin_UsernameCaseInsensitiveLocally(t *testing.T) {
	svc, _, _ := newLocalService(t)

	user, err := svc.Login(context.Background(), "TRAVELER", "traveler123")
	require.NoError(t, err)
	assert.Equal(t, "mock-user-001", user.ID)
}

func TestSignup_ValidationBeforeAnyIO(t *testing.T) {
	svc, users, _ := newLocalService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "ab", "abcdef")
	assert.ErrorIs(t, err, model.ErrUsernameTooShort)

	_, err = svc.Signup(ctx, "newtraveler", "abc")
	assert.ErrorIs(t, err, model.ErrPasswordTooShort)

	table, err := users.Load()
	require.NoError(t, err)
	assert.Len(t, table, 1, "rejected signups must not touch the store")
}

func TestSignup_ThenLogin(t *testing.T) {
	svc, _, _ := newLocalService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, "newtraveler", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "newtraveler", created.Username)
	assert.NotEmpty(t, created.ID)

	user, err := svc.Login(ctx, "newtraveler", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestSignup_DuplicateUsernameAnyCase(t *testing.T) {
	svc, users, _ := newLocalService(t)
	ctx := context.Background()

	before, err := users.Load()
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Traveler", "abcdef")
	assert.ErrorIs(t, err, model.ErrUsernameExists)

	after, err := users.Load()
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed signup must not mutate the table")
}

func TestLogoutAndCurrentUser(t *testing.T) {
	svc, _, _ := newLocalService(t)
	ctx := context.Background()

	current, err := svc.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = svc.Login(ctx, "traveler", "traveler123")
	require.NoError(t, err)

	current, err = svc.CurrentUser()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "traveler", current.Username)

	require.NoError(t, svc.Logout())
	current, err = svc.CurrentUser()
	require.NoError(t, err)
	assert.Nil(t, current)
}

// Remote mode exercised end to end against the dev backend.
func TestAuth_RemoteMode(t *testing.T) {
	store, err := devserver.NewMemStore()
	require.NoError(t, err)
	ts := httptest.NewServer(devserver.NewServer(store, "test-key").Router())
	defer ts.Close()

	client := supabase.New(ts.URL, "test-key", testLogger())
	be := backend.NewRemote(client, testLogger())
	svc := auth.NewService(be, nil, testLogger())
	ctx := context.Background()

	user, err := svc.Login(ctx, "traveler", "traveler123")
	require.NoError(t, err)
	assert.Equal(t, "mock-user-001", user.ID)

	_, err = svc.Login(ctx, "traveler", "wrong")
	assert.ErrorIs(t, err, model.ErrIncorrectPassword)

	created, err := svc.Signup(ctx, "remoteuser", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "remoteuser", created.Username)

	_, err = svc.Signup(ctx, "remoteuser", "abcdef")
	assert.ErrorIs(t, err, model.ErrUsernameExists)

	back, err := svc.Login(ctx, "remoteuser", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, created.ID, back.ID)

	// The remote duplicate check uses an exact-match filter, so a different
	// casing slips past it; the lookup on login is equally exact.
	_, err = svc.Login(ctx, "REMOTEUSER", "abcdef")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}
