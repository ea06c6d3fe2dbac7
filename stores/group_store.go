package stores

import (
	"context"
	"fmt"
	"rxvision_server/database"
	"rxvision_server/lib"
	"rxvision_server/structs/tables"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BunGroupStore struct {
	db *database.DB
}

func NewBunGroupStore(db *database.DB) *BunGroupStore {
	return &BunGroupStore{db: db}
}

func orderMessages(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("?TableAlias.created_at ASC")
}

func (s *BunGroupStore) Create(ctx context.Context, group *tables.Group, memberIDs []uuid.UUID) (*tables.Group, error) {
	now := time.Now()
	if group.Id == uuid.Nil {
		group.Id = uuid.New()
	}
	group.CreatedAt = now
	group.UpdatedAt = now

	err := database.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := database.Query[tables.Group](tx).Insert(ctx, group); err != nil {
			return err
		}
		return insertMembers(ctx, tx, group.Id, memberIDs, now)
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", lib.MapPgError(err))
	}

	return s.GetByID(ctx, group.Id)
}

func insertMembers(ctx context.Context, db bun.IDB, groupID uuid.UUID, userIDs []uuid.UUID, joinedAt time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}
	members := make([]*tables.GroupMember, 0, len(userIDs))
	for _, id := range userIDs {
		members = append(members, &tables.GroupMember{GroupId: groupID, UserId: id, JoinedAt: joinedAt})
	}
	_, err := db.NewInsert().Model(&members).On("CONFLICT (group_id, user_id) DO NOTHING").Exec(ctx)
	return err
}

func (s *BunGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*tables.Group, error) {
	group, err := database.Query[tables.Group](s.db).
		Where("id", id).
		With("CreatedBy").
		With("Members").
		With("Messages", orderMessages).
		With("Messages.Sender").
		First(ctx)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", lib.MapPgError(err))
	}
	if group == nil {
		return nil, lib.ErrNotFound
	}
	return group, nil
}

func (s *BunGroupStore) List(ctx context.Context, memberID uuid.UUID) ([]*tables.Group, error) {
	q := database.Query[tables.Group](s.db).
		With("CreatedBy").
		With("Members").
		OrderBy("created_at", database.DESC)
	if memberID != uuid.Nil {
		q = q.WhereRaw("?TableAlias.id IN (SELECT group_id FROM group_members WHERE user_id = ?)", memberID)
	}

	groups, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", lib.MapPgError(err))
	}
	return toPointers(groups), nil
}

func (s *BunGroupStore) Rename(ctx context.Context, id uuid.UUID, name string) (*tables.Group, error) {
	n, err := database.Query[tables.Group](s.db).Where("id", id).Update(ctx, map[string]any{
		"name":       name,
		"updated_at": time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("rename group: %w", lib.MapPgError(err))
	}
	if n == 0 {
		return nil, lib.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *BunGroupStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := database.DeleteByID[tables.Group](ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", lib.MapPgError(err))
	}
	if n == 0 {
		return lib.ErrNotFound
	}
	return nil
}

func (s *BunGroupStore) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	ok, err := database.Query[tables.GroupMember](s.db).
		Where("group_id", groupID).
		Where("user_id", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", lib.MapPgError(err))
	}
	return ok, nil
}

func (s *BunGroupStore) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	if err := insertMembers(ctx, s.db, groupID, []uuid.UUID{userID}, time.Now()); err != nil {
		return fmt.Errorf("add member: %w", lib.MapPgError(err))
	}
	return nil
}

func (s *BunGroupStore) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	n, err := database.Query[tables.GroupMember](s.db).
		Where("group_id", groupID).
		Where("user_id", userID).
		Delete(ctx)
	if err != nil {
		return fmt.Errorf("remove member: %w", lib.MapPgError(err))
	}
	if n == 0 {
		return lib.ErrNotFound
	}
	return nil
}

func (s *BunGroupStore) AddMessage(ctx context.Context, msg *tables.Message) (*tables.Message, error) {
	if msg.Id == uuid.Nil {
		msg.Id = uuid.New()
	}
	msg.CreatedAt = time.Now()

	if _, err := database.Query[tables.Message](s.db).Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("add message: %w", lib.MapPgError(err))
	}

	created, err := database.Query[tables.Message](s.db).Where("id", msg.Id).With("Sender").First(ctx)
	if err != nil {
		return nil, fmt.Errorf("load message: %w", lib.MapPgError(err))
	}
	if created == nil {
		return nil, lib.ErrNotFound
	}
	return created, nil
}

func (s *BunGroupStore) ListMessages(ctx context.Context, groupID uuid.UUID) ([]*tables.Message, error) {
	msgs, err := database.Query[tables.Message](s.db).
		Where("group_id", groupID).
		With("Sender").
		OrderBy("created_at", database.ASC).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", lib.MapPgError(err))
	}
	return toPointers(msgs), nil
}
