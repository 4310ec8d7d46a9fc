package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupSession(t *testing.T, store storage.Store) *Session {
	t.Helper()
	s, err := newSession(context.Background(), store, bcrypt.MinCost)
	require.NoError(t, err)
	return s
}

func TestLogin(t *testing.T) {
	backing := storage.NewMemoryStore()
	s := setupSession(t, backing)
	ctx := context.Background()
	assert.False(t, s.IsAuthenticated())

	u, err := s.Login(ctx, " Demo@TradeHub.com ", DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "Demo User", u.Name)
	assert.True(t, s.IsAuthenticated())

	_, err = backing.Load(ctx, storage.KeyAuth)
	assert.NoError(t, err)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := setupSession(t, storage.NewMemoryStore())
	ctx := context.Background()

	_, err := s.Login(ctx, DemoEmail, "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody@tradehub.com", DemoPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	assert.False(t, s.IsAuthenticated())
}

func TestSignup(t *testing.T) {
	s := setupSession(t, storage.NewMemoryStore())
	ctx := context.Background()

	u, err := s.Signup(ctx, "Jane Doe", "jane@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)
	assert.Equal(t, "https://ui-avatars.com/api/?name=Jane+Doe&background=D2691E&color=fff", u.Avatar)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, u, current)

	require.NoError(t, s.Logout(ctx))
	_, err = s.Login(ctx, "jane@example.com", "secret")
	assert.NoError(t, err)
}

func TestSignup_EmailTaken(t *testing.T) {
	s := setupSession(t, storage.NewMemoryStore())

	_, err := s.Signup(context.Background(), "Someone", DemoEmail, "x")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogout_RemovesStoredSession(t *testing.T) {
	backing := storage.NewMemoryStore()
	s := setupSession(t, backing)
	ctx := context.Background()
	_, err := s.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())

	_, err = backing.Load(ctx, storage.KeyAuth)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSession_RestoredOnStart(t *testing.T) {
	backing := storage.NewMemoryStore()
	first := setupSession(t, backing)
	_, err := first.Login(context.Background(), DemoEmail, DemoPassword)
	require.NoError(t, err)

	second := setupSession(t, backing)
	u, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, DemoEmail, u.Email)
}

func TestUpdateProfile(t *testing.T) {
	s := setupSession(t, storage.NewMemoryStore())
	ctx := context.Background()
	name := "Demo Seller"

	_, err := s.UpdateProfile(ctx, ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = s.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)

	u, err := s.UpdateProfile(ctx, ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Demo Seller", u.Name)
	assert.NotEmpty(t, u.Avatar)

	// the account keeps the new name across logins
	require.NoError(t, s.Logout(ctx))
	u, err = s.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "Demo Seller", u.Name)
}

type brokenStore struct {
	*storage.MemoryStore
}

func (brokenStore) Save(context.Context, string, []byte) error {
	return errors.New("read-only")
}

func TestLogin_SaveFailure(t *testing.T) {
	s := setupSession(t, brokenStore{storage.NewMemoryStore()})

	_, err := s.Login(context.Background(), DemoEmail, DemoPassword)
	assert.ErrorIs(t, err, domain.ErrOperationFailed)
	assert.False(t, s.IsAuthenticated())
}
