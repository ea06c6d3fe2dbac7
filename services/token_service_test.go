package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"rxvision_server/lib"
	"rxvision_server/stores"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records token lookups on top of a real store
type countingStore struct {
	stores.UserStore
	lookups atomic.Int32
}

func (c *countingStore) GetByVerificationToken(ctx context.Context, token string) (*tables.User, error) {
	c.lookups.Add(1)
	return c.UserStore.GetByVerificationToken(ctx, token)
}

func (c *countingStore) GetByResetToken(ctx context.Context, token string) (*tables.User, error) {
	c.lookups.Add(1)
	return c.UserStore.GetByResetToken(ctx, token)
}

type failingStore struct {
	stores.UserStore
}

func (failingStore) GetByVerificationToken(ctx context.Context, token string) (*tables.User, error) {
	return nil, errors.New("connection reset")
}

func TestVerifyEmailAcceptsTokenExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	ctx := context.Background()

	f.register(t, "ada@rx.example", "correct horse")
	stored := f.storedUser(t, "ada@rx.example")
	require.NotNil(t, stored.VerificationToken)
	assert.False(t, stored.IsEmailVerified)

	first := f.svc.TokenService.VerifyEmail(ctx, *stored.VerificationToken)
	assert.Equal(t, structs.VerificationSuccess, first.Status)

	second := f.svc.TokenService.VerifyEmail(ctx, *stored.VerificationToken)
	assert.Equal(t, structs.VerificationNotFound, second.Status)

	after := f.storedUser(t, "ada@rx.example")
	assert.True(t, after.IsEmailVerified)
	assert.Nil(t, after.VerificationToken)
	assert.Nil(t, after.VerificationExpires)
}

func TestVerifyEmailRefreshesCachedUser(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	ctx := context.Background()

	user := f.register(t, "ada@rx.example", "correct horse")
	before, err := f.svc.AuthService.GetUserByID(ctx, user.Id)
	require.NoError(t, err)
	assert.False(t, before.IsEmailVerified)

	token := *f.storedUser(t, "ada@rx.example").VerificationToken
	require.Equal(t, structs.VerificationSuccess, f.svc.TokenService.VerifyEmail(ctx, token).Status)

	after, err := f.svc.AuthService.GetUserByID(ctx, user.Id)
	require.NoError(t, err)
	assert.True(t, after.IsEmailVerified)
}

func TestVerifyEmailRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	ctx := context.Background()

	f.register(t, "ada@rx.example", "correct horse")
	stored := f.storedUser(t, "ada@rx.example")

	f.svc.TokenService.SetClock(func() time.Time { return time.Now().Add(25 * time.Hour) })

	result := f.svc.TokenService.VerifyEmail(ctx, *stored.VerificationToken)
	assert.Equal(t, structs.VerificationExpired, result.Status)
	assert.Equal(t, "Verification token has expired", result.Message)

	// Expired tokens are left in place
	after := f.storedUser(t, "ada@rx.example")
	assert.False(t, after.IsEmailVerified)
	assert.Equal(t, stored.VerificationToken, after.VerificationToken)
}

func TestMalformedTokensSkipTheStore(t *testing.T) {
	f := newFixture(t)
	counting := &countingStore{UserStore: f.set.Users}
	ts := NewTokenService(gecho.NewDefaultLogger(), f.cfg, counting, f.svc.CacheService)
	ctx := context.Background()

	for _, token := range []string{"", "abc", "00000000-0000-0000-0000-00000000000", "'; DROP TABLE users; --", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"} {
		result := ts.VerifyEmail(ctx, token)
		assert.Equal(t, structs.VerificationInvalidFormat, result.Status, token)

		_, err := ts.ResetPassword(ctx, token, "new password 1")
		assert.ErrorIs(t, err, lib.ErrInvalidToken, token)
	}
	assert.Equal(t, int32(0), counting.lookups.Load())

	// A well formed token does reach the store
	assert.Equal(t, structs.VerificationNotFound, ts.VerifyEmail(ctx, lib.GenerateToken()).Status)
	assert.Equal(t, int32(1), counting.lookups.Load())
}

func TestVerifyEmailReportsStoreFailure(t *testing.T) {
	f := newFixture(t)
	ts := NewTokenService(gecho.NewDefaultLogger(), f.cfg, failingStore{f.set.Users}, f.svc.CacheService)

	result := ts.VerifyEmail(context.Background(), lib.GenerateToken())
	assert.Equal(t, structs.VerificationError, result.Status)
}

func TestIssueVerificationTokenReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	ctx := context.Background()

	user := f.register(t, "ada@rx.example", "correct horse")
	old := *f.storedUser(t, "ada@rx.example").VerificationToken

	token, expires, err := f.svc.TokenService.IssueVerificationToken(ctx, user)
	require.NoError(t, err)
	assert.True(t, lib.IsValidToken(token))
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expires, time.Minute)

	assert.Equal(t, structs.VerificationNotFound, f.svc.TokenService.VerifyEmail(ctx, old).Status)
	assert.Equal(t, structs.VerificationSuccess, f.svc.TokenService.VerifyEmail(ctx, token).Status)
}

func TestResetPasswordLifecycle(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	ctx := context.Background()

	user := f.register(t, "ada@rx.example", "correct horse")
	token, expires, err := f.svc.TokenService.IssueResetToken(ctx, user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	reset, err := f.svc.TokenService.ResetPassword(ctx, token, "battery staple")
	require.NoError(t, err)
	assert.Empty(t, reset.PasswordHash)

	stored := f.storedUser(t, "ada@rx.example")
	assert.Nil(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpires)
	ok, err := lib.VerifyPassword("battery staple", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second use finds nothing
	_, err = f.svc.TokenService.ResetPassword(ctx, token, "another one")
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestResetPasswordDropsCachedUser(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	ctx := context.Background()

	user := f.register(t, "ada@rx.example", "correct horse")
	_, err := f.svc.AuthService.GetUserByID(ctx, user.Id)
	require.NoError(t, err)
	cached, err := f.svc.CacheService.GetUserFromCache(ctx, user.Id)
	require.NoError(t, err)
	require.NotNil(t, cached)

	token, _, err := f.svc.TokenService.IssueResetToken(ctx, user)
	require.NoError(t, err)
	_, err = f.svc.TokenService.ResetPassword(ctx, token, "battery staple")
	require.NoError(t, err)

	cached, err = f.svc.CacheService.GetUserFromCache(ctx, user.Id)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	ctx := context.Background()

	user := f.register(t, "ada@rx.example", "correct horse")
	token, _, err := f.svc.TokenService.IssueResetToken(ctx, user)
	require.NoError(t, err)

	f.svc.TokenService.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })

	_, err = f.svc.TokenService.ResetPassword(ctx, token, "battery staple")
	assert.ErrorIs(t, err, lib.ErrExpiredToken)

	ok, err := lib.VerifyPassword("correct horse", f.storedUser(t, "ada@rx.example").PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}
