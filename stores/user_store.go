package stores

import (
	"context"
	"fmt"
	"rxvision_server/database"
	"rxvision_server/lib"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"
	"time"

	"github.com/google/uuid"
)

type BunUserStore struct {
	db *database.DB
}

func NewBunUserStore(db *database.DB) *BunUserStore {
	return &BunUserStore{db: db}
}

func (s *BunUserStore) Create(ctx context.Context, user *tables.User) (*tables.User, error) {
	now := time.Now()
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := database.Query[tables.User](s.db).Insert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", lib.MapPgError(err))
	}
	return created, nil
}

func (s *BunUserStore) GetByID(ctx context.Context, id uuid.UUID) (*tables.User, error) {
	return s.first(ctx, database.Query[tables.User](s.db).Where("id", id))
}

func (s *BunUserStore) GetByEmail(ctx context.Context, email string) (*tables.User, error) {
	return s.first(ctx, database.Query[tables.User](s.db).Where("email", email))
}

func (s *BunUserStore) GetByVerificationToken(ctx context.Context, token string) (*tables.User, error) {
	return s.first(ctx, database.Query[tables.User](s.db).Where("verification_token", token))
}

func (s *BunUserStore) GetByResetToken(ctx context.Context, token string) (*tables.User, error) {
	return s.first(ctx, database.Query[tables.User](s.db).Where("reset_password_token", token))
}

func (s *BunUserStore) first(ctx context.Context, q *database.QueryBuilder[tables.User]) (*tables.User, error) {
	user, err := q.First(ctx)
	if err != nil {
		return nil, lib.MapPgError(err)
	}
	if user == nil {
		return nil, lib.ErrNotFound
	}
	return user, nil
}

func (s *BunUserStore) List(ctx context.Context) ([]*tables.User, error) {
	users, err := database.Query[tables.User](s.db).OrderBy("created_at", database.ASC).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", lib.MapPgError(err))
	}
	return toPointers(users), nil
}

func (s *BunUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, req *structs.UpdateUserRequest) (*tables.User, error) {
	changes := map[string]any{"updated_at": time.Now()}
	if req.FirstName != nil {
		changes["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		changes["last_name"] = *req.LastName
	}
	if req.Photo != nil {
		changes["photo"] = *req.Photo
	}
	if req.UserBio != nil {
		changes["user_bio"] = *req.UserBio
	}

	rows, err := database.Query[tables.User](s.db).Where("id", id).UpdateReturning(ctx, changes)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", lib.MapPgError(err))
	}
	if len(rows) == 0 {
		return nil, lib.ErrNotFound
	}
	return &rows[0], nil
}

func (s *BunUserStore) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	return s.update(ctx, id, map[string]any{
		"verification_token":   token,
		"verification_expires": expires,
	})
}

func (s *BunUserStore) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, map[string]any{
		"is_email_verified":    true,
		"verification_token":   nil,
		"verification_expires": nil,
	})
}

func (s *BunUserStore) SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	return s.update(ctx, id, map[string]any{
		"reset_password_token":   token,
		"reset_password_expires": expires,
	})
}

func (s *BunUserStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(ctx, id, map[string]any{
		"password_hash":          passwordHash,
		"reset_password_token":   nil,
		"reset_password_expires": nil,
	})
}

func (s *BunUserStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(ctx, id, map[string]any{"password_hash": passwordHash})
}

func (s *BunUserStore) update(ctx context.Context, id uuid.UUID, changes map[string]any) error {
	changes["updated_at"] = time.Now()
	n, err := database.Query[tables.User](s.db).Where("id", id).Update(ctx, changes)
	if err != nil {
		return fmt.Errorf("update user: %w", lib.MapPgError(err))
	}
	if n == 0 {
		return lib.ErrNotFound
	}
	return nil
}

func (s *BunUserStore) IncrementCredits(ctx context.Context, id uuid.UUID, amount int) (*tables.User, error) {
	rows, err := database.Query[tables.User](s.db).Where("id", id).Increment(ctx, "credit_balance", amount)
	if err != nil {
		return nil, fmt.Errorf("increment credits: %w", lib.MapPgError(err))
	}
	if len(rows) == 0 {
		return nil, lib.ErrNotFound
	}
	return &rows[0], nil
}

func (s *BunUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := database.DeleteByID[tables.User](ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", lib.MapPgError(err))
	}
	if n == 0 {
		return lib.ErrNotFound
	}
	return nil
}
