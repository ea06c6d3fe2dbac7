package services

import (
	"context"
	"errors"
	"fmt"
	"rxvision_server/lib"
	"rxvision_server/stores"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// TokenService issues and consumes the single-use email verification and
// password reset tokens stored on user records.
type TokenService struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	users        stores.UserStore
	cacheService *CacheService
	now          func() time.Time
}

func NewTokenService(logger *gecho.Logger, cfg *structs.Config, users stores.UserStore, cacheService *CacheService) *TokenService {
	return &TokenService{
		logger:       logger,
		cfg:          cfg,
		users:        users,
		cacheService: cacheService,
		now:          time.Now,
	}
}

// SetClock replaces the time source used for expiry decisions
func (ts *TokenService) SetClock(now func() time.Time) {
	ts.now = now
}

// IssueVerificationToken stores a fresh verification token on user, replacing any previous one
func (ts *TokenService) IssueVerificationToken(ctx context.Context, user *tables.User) (string, time.Time, error) {
	token := lib.GenerateToken()
	expires := ts.now().Add(ts.cfg.Auth.VerificationTokenTTL)

	if err := ts.users.SetVerificationToken(ctx, user.Id, token, expires); err != nil {
		ts.logger.Error("Failed to store verification token", gecho.Field("user_id", user.Id), gecho.Field("error", err))
		return "", time.Time{}, fmt.Errorf("issue verification token: %w", err)
	}
	return token, expires, nil
}

// VerifyEmail consumes a verification token. It never returns an error; the
// outcome is reported through the result status.
func (ts *TokenService) VerifyEmail(ctx context.Context, token string) structs.VerificationResult {
	if !lib.IsValidToken(token) {
		return structs.VerificationResult{Status: structs.VerificationInvalidFormat, Message: "Invalid verification token format"}
	}

	user, err := ts.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			return structs.VerificationResult{Status: structs.VerificationNotFound, Message: "Invalid token or user not found"}
		}
		ts.logger.Error("Verification token lookup failed", gecho.Field("error", err))
		return structs.VerificationResult{Status: structs.VerificationError, Message: "An error occurred during email verification"}
	}

	if user.VerificationExpires != nil && user.VerificationExpires.Before(ts.now()) {
		return structs.VerificationResult{Status: structs.VerificationExpired, Message: "Verification token has expired"}
	}

	if err := ts.users.MarkEmailVerified(ctx, user.Id); err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			return structs.VerificationResult{Status: structs.VerificationNotFound, Message: "Invalid token or user not found"}
		}
		ts.logger.Error("Failed to mark email verified", gecho.Field("user_id", user.Id), gecho.Field("error", err))
		return structs.VerificationResult{Status: structs.VerificationError, Message: "An error occurred during email verification"}
	}

	ts.invalidate(ctx, user.Id)

	ts.logger.Info("Email verified", gecho.Field("user_id", user.Id))
	return structs.VerificationResult{Status: structs.VerificationSuccess, Message: "Email verified successfully"}
}

// IssueResetToken stores a fresh password reset token on user, replacing any previous one
func (ts *TokenService) IssueResetToken(ctx context.Context, user *tables.User) (string, time.Time, error) {
	token := lib.GenerateToken()
	expires := ts.now().Add(ts.cfg.Auth.ResetTokenTTL)

	if err := ts.users.SetResetToken(ctx, user.Id, token, expires); err != nil {
		ts.logger.Error("Failed to store reset token", gecho.Field("user_id", user.Id), gecho.Field("error", err))
		return "", time.Time{}, fmt.Errorf("issue reset token: %w", err)
	}
	return token, expires, nil
}

// ResetPassword consumes a reset token and stores the new password hash.
// Errors: lib.ErrInvalidToken (malformed), lib.ErrNotFound, lib.ErrExpiredToken.
func (ts *TokenService) ResetPassword(ctx context.Context, token, newPassword string) (*tables.User, error) {
	if !lib.IsValidToken(token) {
		return nil, lib.ErrInvalidToken
	}

	user, err := ts.users.GetByResetToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	if user.ResetPasswordExpires == nil || user.ResetPasswordExpires.Before(ts.now()) {
		return nil, lib.ErrExpiredToken
	}

	hash, err := lib.HashPassword(newPassword, lib.DefaultArgonParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := ts.users.ResetPassword(ctx, user.Id, hash); err != nil {
		return nil, fmt.Errorf("reset password: %w", err)
	}

	ts.invalidate(ctx, user.Id)

	ts.logger.Info("Password reset", gecho.Field("user_id", user.Id))

	user.PasswordHash = hash
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	return user.Sanitized(), nil
}

// invalidate drops the cached copy so the next read sees the stored row
func (ts *TokenService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := ts.cacheService.DeleteUserFromCache(ctx, id); err != nil {
		ts.logger.Warn("Failed to invalidate cached user", gecho.Field("user_id", id), gecho.Field("error", err))
	}
}
