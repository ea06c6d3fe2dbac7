// Package memory implements the stores contracts on mutex-guarded maps. It
// backs DB_DRIVER=memory for local runs and the service and handler tests.
package memory

import (
	"context"
	"rxvision_server/lib"
	"rxvision_server/stores"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	users     map[uuid.UUID]*tables.User
	groups    map[uuid.UUID]*tables.Group
	members   map[uuid.UUID]map[uuid.UUID]time.Time // group -> user -> joined
	messages  map[uuid.UUID][]*tables.Message       // group -> messages in insertion order
	histories map[uuid.UUID]*tables.MoleculeGenerationHistory
}

func New() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[uuid.UUID]*tables.User),
		groups:    make(map[uuid.UUID]*tables.Group),
		members:   make(map[uuid.UUID]map[uuid.UUID]time.Time),
		messages:  make(map[uuid.UUID][]*tables.Message),
		histories: make(map[uuid.UUID]*tables.MoleculeGenerationHistory),
	}
}

// Set exposes the store through the stores contracts.
func (s *Store) Set() *stores.Set {
	return &stores.Set{
		Users:     (*userStore)(s),
		Groups:    (*groupStore)(s),
		Molecules: (*moleculeStore)(s),
	}
}

// tick returns a timestamp strictly after the previous one so ordering by
// creation time is deterministic even within one clock tick.
func (s *Store) tick(last time.Time) time.Time {
	now := s.now()
	if !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	return now
}

type userStore Store

var _ stores.UserStore = (*userStore)(nil)

func copyUser(u *tables.User) *tables.User {
	c := *u
	return &c
}

func (s *userStore) Create(ctx context.Context, user *tables.User) (*tables.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return nil, lib.ErrConflict
		}
	}
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.Id] = copyUser(user)
	return copyUser(user), nil
}

func (s *userStore) GetByID(ctx context.Context, id uuid.UUID) (*tables.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *userStore) findBy(match func(*tables.User) bool) (*tables.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, lib.ErrNotFound
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*tables.User, error) {
	return s.findBy(func(u *tables.User) bool { return u.Email == email })
}

func (s *userStore) GetByVerificationToken(ctx context.Context, token string) (*tables.User, error) {
	return s.findBy(func(u *tables.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (s *userStore) GetByResetToken(ctx context.Context, token string) (*tables.User, error) {
	return s.findBy(func(u *tables.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token
	})
}

func (s *userStore) List(ctx context.Context) ([]*tables.User, error) {
	s.mu.RLock()
	out := make([]*tables.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, copyUser(u))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *userStore) mutate(id uuid.UUID, fn func(u *tables.User)) (*tables.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = s.now()
	return copyUser(u), nil
}

func (s *userStore) UpdateProfile(ctx context.Context, id uuid.UUID, req *structs.UpdateUserRequest) (*tables.User, error) {
	return s.mutate(id, func(u *tables.User) {
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		if req.Photo != nil {
			u.Photo = *req.Photo
		}
		if req.UserBio != nil {
			u.UserBio = *req.UserBio
		}
	})
}

func (s *userStore) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	_, err := s.mutate(id, func(u *tables.User) {
		u.VerificationToken = &token
		u.VerificationExpires = &expires
	})
	return err
}

func (s *userStore) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	_, err := s.mutate(id, func(u *tables.User) {
		u.IsEmailVerified = true
		u.VerificationToken = nil
		u.VerificationExpires = nil
	})
	return err
}

func (s *userStore) SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	_, err := s.mutate(id, func(u *tables.User) {
		u.ResetPasswordToken = &token
		u.ResetPasswordExpires = &expires
	})
	return err
}

func (s *userStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := s.mutate(id, func(u *tables.User) {
		u.PasswordHash = passwordHash
		u.ResetPasswordToken = nil
		u.ResetPasswordExpires = nil
	})
	return err
}

func (s *userStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := s.mutate(id, func(u *tables.User) { u.PasswordHash = passwordHash })
	return err
}

func (s *userStore) IncrementCredits(ctx context.Context, id uuid.UUID, amount int) (*tables.User, error) {
	return s.mutate(id, func(u *tables.User) { u.CreditBalance += amount })
}

func (s *userStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return lib.ErrNotFound
	}
	delete(s.users, id)

	// Mirror the ON DELETE CASCADE foreign keys
	for gid, g := range s.groups {
		if g.CreatedById == id {
			s.dropGroup(gid)
		}
	}
	for _, m := range s.members {
		delete(m, id)
	}
	for gid, msgs := range s.messages {
		kept := msgs[:0]
		for _, msg := range msgs {
			if msg.SenderId != id {
				kept = append(kept, msg)
			}
		}
		s.messages[gid] = kept
	}
	for hid, h := range s.histories {
		if h.UserId == id {
			delete(s.histories, hid)
		}
	}
	return nil
}

func (s *userStore) dropGroup(id uuid.UUID) {
	delete(s.groups, id)
	delete(s.members, id)
	delete(s.messages, id)
}
