package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"rxvision_server/lib"
	"rxvision_server/structs/tables"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	ctx := context.Background()

	f.register(t, "ada@rx.example", "correct horse")

	user, err := f.svc.AuthService.Login(ctx, "ADA@rx.example ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@rx.example", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = f.svc.AuthService.Login(ctx, "ada@rx.example", "wrong horse")
	assert.ErrorIs(t, err, lib.ErrInvalidCredentials)

	_, err = f.svc.AuthService.Login(ctx, "nobody@rx.example", "correct horse")
	assert.ErrorIs(t, err, lib.ErrInvalidCredentials)
}

func TestLoginVerifiedEmailGate(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	f.cfg.Auth.RequireVerifiedEmail = true
	ctx := context.Background()

	f.register(t, "ada@rx.example", "correct horse")

	_, err := f.svc.AuthService.Login(ctx, "ada@rx.example", "correct horse")
	assert.ErrorIs(t, err, lib.ErrEmailNotVerified)

	// Wrong password still reads as bad credentials, not as unverified
	_, err = f.svc.AuthService.Login(ctx, "ada@rx.example", "wrong horse")
	assert.ErrorIs(t, err, lib.ErrInvalidCredentials)

	token := *f.storedUser(t, "ada@rx.example").VerificationToken
	f.svc.TokenService.VerifyEmail(ctx, token)

	_, err = f.svc.AuthService.Login(ctx, "ada@rx.example", "correct horse")
	assert.NoError(t, err)
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = f.set.Users.Create(ctx, &tables.User{
		Id:           uuid.New(),
		Email:        "old@rx.example",
		PasswordHash: string(legacy),
	})
	require.NoError(t, err)

	_, err = f.svc.AuthService.Login(ctx, "old@rx.example", "correct horse")
	require.NoError(t, err)

	stored := f.storedUser(t, "old@rx.example")
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))

	_, err = f.svc.AuthService.Login(ctx, "old@rx.example", "correct horse")
	assert.NoError(t, err)
}

func TestSessionIssueParseRevoke(t *testing.T) {
	f := newFixture(t)
	f.expectMail()
	ctx := context.Background()

	user := f.register(t, "ada@rx.example", "correct horse")

	token, claims, err := f.svc.AuthService.IssueSession(user)
	require.NoError(t, err)
	assert.Equal(t, user.Id, claims.Sub)
	assert.Equal(t, "Ada Lovelace", claims.Name)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.Exp, time.Minute)

	parsed, err := f.svc.AuthService.ParseSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, claims.Jti, parsed.Jti)

	require.NoError(t, f.svc.AuthService.RevokeSession(ctx, parsed))

	_, err = f.svc.AuthService.ParseSession(ctx, token)
	assert.ErrorIs(t, err, lib.ErrInvalidToken)

	// Other sessions of the same user stay valid
	other, _, err := f.svc.AuthService.IssueSession(user)
	require.NoError(t, err)
	_, err = f.svc.AuthService.ParseSession(ctx, other)
	assert.NoError(t, err)
}

func TestParseSessionRejectsForeignSignature(t *testing.T) {
	f := newFixture(t)
	user := &tables.User{Id: uuid.New(), Email: "ada@rx.example"}

	token, _, err := lib.NewSessionToken(user, "someone-else", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = f.svc.AuthService.ParseSession(context.Background(), token)
	assert.ErrorIs(t, err, lib.ErrInvalidToken)
}
