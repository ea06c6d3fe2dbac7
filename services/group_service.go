package services

import (
	"context"
	"fmt"
	"rxvision_server/lib"
	"rxvision_server/stores"
	"rxvision_server/structs/tables"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type GroupService struct {
	logger *gecho.Logger
	groups stores.GroupStore
}

func NewGroupService(logger *gecho.Logger, groups stores.GroupStore) *GroupService {
	return &GroupService{
		logger: logger,
		groups: groups,
	}
}

// CreateGroup creates a group owned by creatorID. The creator is always a member and duplicate ids collapse.
func (gs *GroupService) CreateGroup(ctx context.Context, name string, creatorID uuid.UUID, memberIDs []uuid.UUID) (*tables.Group, error) {
	seen := make(map[uuid.UUID]struct{}, len(memberIDs)+1)
	members := make([]uuid.UUID, 0, len(memberIDs)+1)
	for _, id := range append([]uuid.UUID{creatorID}, memberIDs...) {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	group, err := gs.groups.Create(ctx, &tables.Group{
		Name:        strings.TrimSpace(name),
		CreatedById: creatorID,
	}, members)
	if err != nil {
		return nil, err
	}

	gs.logger.Info("Group created",
		gecho.Field("group_id", group.Id),
		gecho.Field("created_by", creatorID),
		gecho.Field("members", len(members)),
	)
	return sanitizeGroup(group), nil
}

func (gs *GroupService) GetGroupByID(ctx context.Context, id uuid.UUID) (*tables.Group, error) {
	group, err := gs.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeGroup(group), nil
}

// GetAllGroups returns every group in the system
func (gs *GroupService) GetAllGroups(ctx context.Context) ([]*tables.Group, error) {
	return gs.list(ctx, uuid.Nil)
}

// ListGroupsForUser returns the groups userID belongs to
func (gs *GroupService) ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]*tables.Group, error) {
	return gs.list(ctx, userID)
}

func (gs *GroupService) list(ctx context.Context, memberID uuid.UUID) ([]*tables.Group, error) {
	groups, err := gs.groups.List(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	for i, g := range groups {
		groups[i] = sanitizeGroup(g)
	}
	return groups, nil
}

func (gs *GroupService) RenameGroup(ctx context.Context, id uuid.UUID, name string) (*tables.Group, error) {
	group, err := gs.groups.Rename(ctx, id, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return sanitizeGroup(group), nil
}

// DeleteGroup removes the group with its memberships and messages. Only the creator may do this.
func (gs *GroupService) DeleteGroup(ctx context.Context, id, requesterID uuid.UUID) error {
	group, err := gs.groups.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if group.CreatedById != requesterID {
		return lib.ErrForbidden
	}
	if err := gs.groups.Delete(ctx, id); err != nil {
		return err
	}
	gs.logger.Info("Group deleted", gecho.Field("group_id", id), gecho.Field("deleted_by", requesterID))
	return nil
}

func (gs *GroupService) AddMemberToGroup(ctx context.Context, groupID, userID uuid.UUID) (*tables.Group, error) {
	if err := gs.groups.AddMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return gs.GetGroupByID(ctx, groupID)
}

func (gs *GroupService) RemoveMemberFromGroup(ctx context.Context, groupID, userID uuid.UUID) (*tables.Group, error) {
	if err := gs.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return gs.GetGroupByID(ctx, groupID)
}

// AddMessageToGroup appends a message. The sender must belong to the group.
func (gs *GroupService) AddMessageToGroup(ctx context.Context, groupID, senderID uuid.UUID, text string) (*tables.Message, error) {
	member, err := gs.groups.IsMember(ctx, groupID, senderID)
	if err != nil {
		return nil, err
	}
	if !member {
		if _, err := gs.groups.GetByID(ctx, groupID); err != nil {
			return nil, err
		}
		return nil, lib.ErrForbidden
	}

	msg, err := gs.groups.AddMessage(ctx, &tables.Message{
		GroupId:  groupID,
		SenderId: senderID,
		Text:     text,
	})
	if err != nil {
		return nil, err
	}
	msg.Sender = msg.Sender.Sanitized()
	return msg, nil
}

// GetGroupMessages returns the group's messages oldest first
func (gs *GroupService) GetGroupMessages(ctx context.Context, groupID uuid.UUID) ([]*tables.Message, error) {
	if _, err := gs.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	msgs, err := gs.groups.ListMessages(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		m.Sender = m.Sender.Sanitized()
	}
	return msgs, nil
}

func sanitizeGroup(g *tables.Group) *tables.Group {
	if g == nil {
		return nil
	}
	g.CreatedBy = g.CreatedBy.Sanitized()
	for i, m := range g.Members {
		g.Members[i] = m.Sanitized()
	}
	for _, msg := range g.Messages {
		msg.Sender = msg.Sender.Sanitized()
	}
	return g
}
