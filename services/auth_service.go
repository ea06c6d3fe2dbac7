package services

import (
	"context"
	"errors"
	"fmt"
	"rxvision_server/lib"
	"rxvision_server/stores"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type AuthService struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	users        stores.UserStore
	cacheService *CacheService
	now          func() time.Time
}

func NewAuthService(logger *gecho.Logger, cfg *structs.Config, users stores.UserStore, cacheService *CacheService) *AuthService {
	return &AuthService{
		logger:       logger,
		cfg:          cfg,
		users:        users,
		cacheService: cacheService,
		now:          time.Now,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks credentials. Unknown emails and wrong passwords are indistinguishable to the caller.
func (as *AuthService) Login(ctx context.Context, email, password string) (*tables.User, error) {
	startTime := time.Now()
	email = NormalizeEmail(email)

	user, err := as.users.GetByEmail(ctx, email)
	if err != nil {
		if lib.IsNotFound(err) {
			as.logger.Debug("Login for unknown email", gecho.Field("email", email))
			return nil, lib.ErrInvalidCredentials
		}
		as.logger.Error("Unexpected database error during login",
			gecho.Field("error", err),
			gecho.Field("error_detail", lib.GetDetailForLogging(err)),
		)
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := lib.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		as.logger.Error("Stored password hash could not be verified", gecho.Field("user_id", user.Id), gecho.Field("error", err))
		return nil, lib.ErrInvalidCredentials
	}
	if !ok {
		as.logger.Debug("Password mismatch", gecho.Field("user_id", user.Id))
		return nil, lib.ErrInvalidCredentials
	}

	if as.cfg.Auth.RequireVerifiedEmail && !user.IsEmailVerified {
		return nil, lib.ErrEmailNotVerified
	}

	if lib.IsLegacyHash(user.PasswordHash) {
		as.upgradeHash(ctx, user.Id, password)
	}

	as.logger.Debug("User logged in", gecho.Field("user_id", user.Id), gecho.Field("elapsed_time_ms", time.Since(startTime).Milliseconds()))
	return user.Sanitized(), nil
}

// upgradeHash replaces a bcrypt hash with argon2id. Failure only costs a retry on the next login.
func (as *AuthService) upgradeHash(ctx context.Context, userID uuid.UUID, password string) {
	hash, err := lib.HashPassword(password, lib.DefaultArgonParams)
	if err == nil {
		err = as.users.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		as.logger.Warn("Failed to upgrade legacy password hash", gecho.Field("user_id", userID), gecho.Field("error", err))
		return
	}
	as.logger.Info("Upgraded legacy password hash", gecho.Field("user_id", userID))
}

// IssueSession signs a session token for user
func (as *AuthService) IssueSession(user *tables.User) (string, *structs.SessionClaims, error) {
	return lib.NewSessionToken(user, as.cfg.Auth.SessionSecret, as.cfg.Auth.SessionMaxAge, as.now())
}

// ParseSession validates a session token and rejects revoked ones
func (as *AuthService) ParseSession(ctx context.Context, token string) (*structs.SessionClaims, error) {
	claims, err := lib.ParseSessionToken(token, as.cfg.Auth.SessionSecret)
	if err != nil {
		return nil, err
	}

	revoked, err := as.cacheService.IsTokenBlacklisted(ctx, claims.Jti)
	if err != nil {
		// Cache outage should not sign everyone out
		as.logger.Warn("Failed to check session blacklist", gecho.Field("error", err))
		return claims, nil
	}
	if revoked {
		return nil, lib.ErrInvalidToken
	}
	return claims, nil
}

// RevokeSession blacklists the session until it expires
func (as *AuthService) RevokeSession(ctx context.Context, claims *structs.SessionClaims) error {
	if err := as.cacheService.BlacklistToken(ctx, claims.Jti, claims.Exp); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if err := as.cacheService.DeleteUserFromCache(ctx, claims.Sub); err != nil {
		as.logger.Warn("Failed to drop user from cache", gecho.Field("user_id", claims.Sub), gecho.Field("error", err))
	}
	return nil
}

// GetUserByID returns the sanitized user, consulting the cache first
func (as *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*tables.User, error) {
	if cached, err := as.cacheService.GetUserFromCache(ctx, id); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		as.logger.Warn("User cache read failed", gecho.Field("user_id", id), gecho.Field("error", err))
	}

	user, err := as.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, lib.ErrNotFound) {
			as.logger.Error("Failed to load user", gecho.Field("user_id", id), gecho.Field("error", err))
		}
		return nil, err
	}

	if err := as.cacheService.SetUserInCache(ctx, user); err != nil {
		as.logger.Warn("User cache write failed", gecho.Field("user_id", id), gecho.Field("error", err))
	}
	return user.Sanitized(), nil
}
