package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/model"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTokenFixture(t *testing.T) (*gorm.DB, *TokenManager, *fakeClock, *model.User) {
	t.Helper()
	db := testutil.NewDB(t)

	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "x", IsActive: true}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))

	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	mgr := NewTokenManager(repository.NewTokenRepository(db), 24*time.Hour).WithClock(clock.Now)
	return db, mgr, clock, user
}

func TestGenerateTokenKey(t *testing.T) {
	a, err := GenerateTokenKey()
	require.NoError(t, err)
	b, err := GenerateTokenKey()
	require.NoError(t, err)

	assert.Len(t, a, 40)
	assert.Regexp(t, "^[0-9a-f]{40}$", a)
	assert.NotEqual(t, a, b)
}

func TestTokenManager_ExpiryBoundary(t *testing.T) {
	_, mgr, clock, user := newTokenFixture(t)
	ctx := context.Background()

	token, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	expired, same, err := mgr.Evaluate(ctx, token, false)
	require.NoError(t, err)
	assert.False(t, expired, "exactly TTL old is still valid")
	assert.Equal(t, token.Key, same.Key)

	clock.Advance(time.Second)
	expired, _, err = mgr.Evaluate(ctx, token, false)
	require.NoError(t, err)
	assert.True(t, expired)

	_, err = mgr.Authenticate(ctx, token.Key)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	// checking never deletes the token
	_, err = mgr.repo.GetByKey(ctx, token.Key)
	assert.NoError(t, err)
}

func TestTokenManager_LoginAlwaysRotates(t *testing.T) {
	db, mgr, clock, user := newTokenFixture(t)
	ctx := context.Background()

	first, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	expired, rotated, err := mgr.Evaluate(ctx, first, true)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.NotEqual(t, first.Key, rotated.Key)
	assert.Equal(t, user.ID, rotated.UserID)
	assert.True(t, clock.Now().Equal(rotated.Created))

	var count int64
	require.NoError(t, db.Model(&model.Token{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = mgr.Authenticate(ctx, first.Key)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	got, err := mgr.Authenticate(ctx, rotated.Key)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.User.Username)
}

func TestTokenManager_ConcurrentLoginsShareRotatedToken(t *testing.T) {
	db, mgr, _, user := newTokenFixture(t)
	ctx := context.Background()

	// both logins read the same token before either rotates it
	seenByFirst, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	seenBySecond, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, seenByFirst.Key, seenBySecond.Key)

	_, first, err := mgr.Evaluate(ctx, seenByFirst, true)
	require.NoError(t, err)
	_, second, err := mgr.Evaluate(ctx, seenBySecond, true)
	require.NoError(t, err)

	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, user.ID, second.UserID)

	var count int64
	require.NoError(t, db.Model(&model.Token{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTokenManager_ExpiredTokenRotatedAtLogin(t *testing.T) {
	_, mgr, clock, user := newTokenFixture(t)
	ctx := context.Background()

	old, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)
	_, fresh, err := mgr.Evaluate(ctx, old, true)
	require.NoError(t, err)

	expired, _, err := mgr.Evaluate(ctx, fresh, false)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestTokenManager_GetOrCreateReusesToken(t *testing.T) {
	_, mgr, _, user := newTokenFixture(t)
	ctx := context.Background()

	a, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	b, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Key, b.Key)
}

func TestTokenManager_KeyCollisionRetries(t *testing.T) {
	db, mgr, _, user := newTokenFixture(t)
	ctx := context.Background()

	other := &model.User{Username: "bob", Email: "bob@example.com", Password: "x", IsActive: true}
	require.NoError(t, repository.NewUserRepository(db).Create(ctx, other))

	keys := []string{"taken", "taken", "fresh"}
	mgr.WithKeyGenerator(func() (string, error) {
		k := keys[0]
		keys = keys[1:]
		return k, nil
	})

	first, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "taken", first.Key)

	second, err := mgr.GetOrCreate(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", second.Key)
}

func TestTokenManager_InactiveUser(t *testing.T) {
	db, mgr, _, user := newTokenFixture(t)
	ctx := context.Background()

	token, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, err = mgr.Authenticate(ctx, token.Key)
	assert.ErrorIs(t, err, apperrors.ErrUserInactive)
}

func TestTokenManager_Revoke(t *testing.T) {
	_, mgr, _, user := newTokenFixture(t)
	ctx := context.Background()

	token, err := mgr.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, mgr.Revoke(ctx, token.Key))
	assert.ErrorIs(t, mgr.Revoke(ctx, token.Key), apperrors.ErrInvalidToken)

	_, err = mgr.Authenticate(ctx, token.Key)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
