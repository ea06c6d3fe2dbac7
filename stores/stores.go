// Package stores holds the persistence contracts used by services together
// with their bun implementations. Absent rows are reported as lib.ErrNotFound
// and unique collisions as lib.ErrConflict, whatever the backend.
package stores

import (
	"context"
	"rxvision_server/database"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"
	"time"

	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, user *tables.User) (*tables.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tables.User, error)
	GetByEmail(ctx context.Context, email string) (*tables.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*tables.User, error)
	GetByResetToken(ctx context.Context, token string) (*tables.User, error)
	List(ctx context.Context) ([]*tables.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *structs.UpdateUserRequest) (*tables.User, error)
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	// ResetPassword stores the new hash and clears the reset token in one write.
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	IncrementCredits(ctx context.Context, id uuid.UUID, amount int) (*tables.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GroupStore interface {
	// Create inserts the group and its memberships atomically.
	Create(ctx context.Context, group *tables.Group, memberIDs []uuid.UUID) (*tables.Group, error)
	// GetByID loads creator, members and messages (oldest first, with sender).
	GetByID(ctx context.Context, id uuid.UUID) (*tables.Group, error)
	// List returns every group when memberID is uuid.Nil, otherwise the groups memberID belongs to.
	List(ctx context.Context, memberID uuid.UUID) ([]*tables.Group, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*tables.Group, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	// AddMember is a no-op when the user already belongs to the group.
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	AddMessage(ctx context.Context, msg *tables.Message) (*tables.Message, error)
	ListMessages(ctx context.Context, groupID uuid.UUID) ([]*tables.Message, error)
}

type MoleculeStore interface {
	// Create inserts the history with its generated molecules atomically.
	Create(ctx context.Context, history *tables.MoleculeGenerationHistory) (*tables.MoleculeGenerationHistory, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tables.MoleculeGenerationHistory, error)
	// ListByUser returns the user's histories newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*tables.MoleculeGenerationHistory, error)
	// Delete removes the history and its molecules and returns what was removed.
	Delete(ctx context.Context, id uuid.UUID) (*tables.MoleculeGenerationHistory, error)
}

// Set bundles one implementation of every store.
type Set struct {
	Users     UserStore
	Groups    GroupStore
	Molecules MoleculeStore
}

// NewBunSet wires the bun implementations over db.
func NewBunSet(db *database.DB) *Set {
	return &Set{
		Users:     NewBunUserStore(db),
		Groups:    NewBunGroupStore(db),
		Molecules: NewBunMoleculeStore(db),
	}
}

func toPointers[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}
