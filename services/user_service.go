package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"rxvision_server/lib"
	"rxvision_server/stores"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type UserService struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	users        stores.UserStore
	tokens       *TokenService
	emailService *EmailService
	cacheService *CacheService
}

func NewUserService(logger *gecho.Logger, cfg *structs.Config, users stores.UserStore, tokens *TokenService, emailService *EmailService, cacheService *CacheService) *UserService {
	return &UserService{
		logger:       logger,
		cfg:          cfg,
		users:        users,
		tokens:       tokens,
		emailService: emailService,
		cacheService: cacheService,
	}
}

// VerificationStatusResponse is what the frontend polls after registration
type VerificationStatusResponse struct {
	Email           string `json:"email"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

// CreateUser registers a new account and mails a verification link. A mail
// failure is logged and does not undo the registration.
func (us *UserService) CreateUser(ctx context.Context, req *structs.CreateUserRequest) (*tables.User, error) {
	email := NormalizeEmail(req.Email)

	existing, err := us.users.GetByEmail(ctx, email)
	if err != nil && !lib.IsNotFound(err) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, lib.ErrConflict
	}

	hash, err := lib.HashPassword(req.Password, lib.DefaultArgonParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user, err := us.users.Create(ctx, &tables.User{
		Id:           uuid.New(),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Photo:        req.Photo,
		UserBio:      req.UserBio,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, lib.ErrConflict) {
			return nil, lib.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	us.sendVerification(ctx, user)

	us.logger.Info("User registered", gecho.Field("user_id", user.Id))
	return user.Sanitized(), nil
}

func (us *UserService) sendVerification(ctx context.Context, user *tables.User) {
	token, _, err := us.tokens.IssueVerificationToken(ctx, user)
	if err != nil {
		return
	}
	link := us.link("/verify-email", token)
	if _, err := us.emailService.SendVerificationEmail(ctx, user.Email, user.FirstName, link); err != nil {
		us.logger.Error("Failed to send verification email",
			gecho.Field("user_id", user.Id),
			gecho.Field("error", err),
		)
	}
}

func (us *UserService) link(path, token string) string {
	return strings.TrimRight(us.cfg.Server.PublicBaseURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func (us *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*tables.User, error) {
	user, err := us.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (us *UserService) GetUserByEmail(ctx context.Context, email string) (*tables.User, error) {
	user, err := us.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (us *UserService) ListUsers(ctx context.Context) ([]*tables.User, error) {
	users, err := us.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*tables.User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	return out, nil
}

func (us *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *structs.UpdateUserRequest) (*tables.User, error) {
	user, err := us.users.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, err
	}
	us.invalidate(ctx, id)
	return user.Sanitized(), nil
}

func (us *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := us.users.Delete(ctx, id); err != nil {
		return err
	}
	us.invalidate(ctx, id)
	us.logger.Info("User deleted", gecho.Field("user_id", id))
	return nil
}

// UpdateCredits adds amount to the balance atomically; negative amounts spend credits
func (us *UserService) UpdateCredits(ctx context.Context, id uuid.UUID, amount int) (*tables.User, error) {
	user, err := us.users.IncrementCredits(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	us.invalidate(ctx, id)
	us.logger.Debug("Credits updated",
		gecho.Field("user_id", id),
		gecho.Field("amount", amount),
		gecho.Field("balance", user.CreditBalance),
	)
	return user.Sanitized(), nil
}

// RequestPasswordReset mails a reset link if the account exists. Unknown
// emails succeed silently so the endpoint cannot be used to enumerate accounts.
func (us *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := us.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if lib.IsNotFound(err) {
			us.logger.Debug("Password reset for unknown email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, _, err := us.tokens.IssueResetToken(ctx, user)
	if err != nil {
		return err
	}

	if err := us.emailService.SendResetPasswordEmail(ctx, user.Email, user.FirstName, us.link("/reset-password", token)); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResendVerification issues a new verification token, at most once per cooldown window
func (us *UserService) ResendVerification(ctx context.Context, email string) error {
	user, err := us.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if lib.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.IsEmailVerified {
		return nil
	}

	acquired, err := us.cacheService.AcquireCooldown(ctx, "verification_resend:"+user.Id.String(), us.cfg.Auth.VerificationResendWait)
	if err != nil {
		us.logger.Warn("Cooldown check failed, sending anyway", gecho.Field("error", err))
	} else if !acquired {
		return lib.ErrTooManyRequests
	}

	us.sendVerification(ctx, user)
	return nil
}

// VerificationStatus answers the same way for unknown and unverified emails
func (us *UserService) VerificationStatus(ctx context.Context, email string) (*VerificationStatusResponse, error) {
	normalized := NormalizeEmail(email)
	user, err := us.users.GetByEmail(ctx, normalized)
	if errors.Is(err, lib.ErrNotFound) {
		return &VerificationStatusResponse{Email: normalized, IsEmailVerified: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &VerificationStatusResponse{Email: user.Email, IsEmailVerified: user.IsEmailVerified}, nil
}

func (us *UserService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := us.cacheService.DeleteUserFromCache(ctx, id); err != nil {
		us.logger.Warn("Failed to invalidate cached user", gecho.Field("user_id", id), gecho.Field("error", err))
	}
}
