package memory

import (
	"context"
	"rxvision_server/lib"
	"rxvision_server/stores"
	"rxvision_server/structs/tables"
	"sort"
	"time"

	"github.com/google/uuid"
)

type groupStore Store

var _ stores.GroupStore = (*groupStore)(nil)

func (s *groupStore) Create(ctx context.Context, group *tables.Group, memberIDs []uuid.UUID) (*tables.Group, error) {
	s.mu.Lock()

	if _, ok := s.users[group.CreatedById]; !ok {
		s.mu.Unlock()
		return nil, lib.ErrNotFound
	}
	for _, id := range memberIDs {
		if _, ok := s.users[id]; !ok {
			s.mu.Unlock()
			return nil, lib.ErrNotFound
		}
	}

	if group.Id == uuid.Nil {
		group.Id = uuid.New()
	}
	now := s.now()
	group.CreatedAt = now
	group.UpdatedAt = now
	s.groups[group.Id] = &tables.Group{
		Id:          group.Id,
		Name:        group.Name,
		CreatedById: group.CreatedById,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	members := make(map[uuid.UUID]time.Time, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = now
	}
	s.members[group.Id] = members
	s.mu.Unlock()

	return s.GetByID(ctx, group.Id)
}

// hydrate returns a copy of the group with relations attached. Callers hold the lock.
func (s *groupStore) hydrate(g *tables.Group, withMessages bool) *tables.Group {
	c := *g
	if creator, ok := s.users[g.CreatedById]; ok {
		c.CreatedBy = copyUser(creator)
	}

	type joined struct {
		user *tables.User
		at   time.Time
	}
	list := make([]joined, 0, len(s.members[g.Id]))
	for uid, at := range s.members[g.Id] {
		if u, ok := s.users[uid]; ok {
			list = append(list, joined{copyUser(u), at})
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].at.Equal(list[j].at) {
			return list[i].user.Email < list[j].user.Email
		}
		return list[i].at.Before(list[j].at)
	})
	c.Members = make([]*tables.User, 0, len(list))
	for _, j := range list {
		c.Members = append(c.Members, j.user)
	}

	c.Messages = nil
	if withMessages {
		c.Messages = s.messagesOf(g.Id)
	}
	return &c
}

func (s *groupStore) messagesOf(groupID uuid.UUID) []*tables.Message {
	msgs := s.messages[groupID]
	out := make([]*tables.Message, 0, len(msgs))
	for _, m := range msgs {
		c := *m
		if u, ok := s.users[m.SenderId]; ok {
			c.Sender = copyUser(u)
		}
		out = append(out, &c)
	}
	return out
}

func (s *groupStore) GetByID(ctx context.Context, id uuid.UUID) (*tables.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	return s.hydrate(g, true), nil
}

func (s *groupStore) List(ctx context.Context, memberID uuid.UUID) ([]*tables.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*tables.Group, 0, len(s.groups))
	for id, g := range s.groups {
		if memberID != uuid.Nil {
			if _, ok := s.members[id][memberID]; !ok {
				continue
			}
		}
		out = append(out, s.hydrate(g, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *groupStore) Rename(ctx context.Context, id uuid.UUID, name string) (*tables.Group, error) {
	s.mu.Lock()
	g, ok := s.groups[id]
	if !ok {
		s.mu.Unlock()
		return nil, lib.ErrNotFound
	}
	g.Name = name
	g.UpdatedAt = s.now()
	s.mu.Unlock()

	return s.GetByID(ctx, id)
}

func (s *groupStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return lib.ErrNotFound
	}
	(*userStore)(s).dropGroup(id)
	return nil
}

func (s *groupStore) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[groupID][userID]
	return ok, nil
}

func (s *groupStore) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return lib.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return lib.ErrNotFound
	}
	if _, ok := s.members[groupID][userID]; ok {
		return nil
	}
	s.members[groupID][userID] = s.now()
	return nil
}

func (s *groupStore) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[groupID][userID]; !ok {
		return lib.ErrNotFound
	}
	delete(s.members[groupID], userID)
	return nil
}

func (s *groupStore) AddMessage(ctx context.Context, msg *tables.Message) (*tables.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[msg.GroupId]; !ok {
		return nil, lib.ErrNotFound
	}
	sender, ok := s.users[msg.SenderId]
	if !ok {
		return nil, lib.ErrNotFound
	}

	if msg.Id == uuid.Nil {
		msg.Id = uuid.New()
	}
	var last time.Time
	if msgs := s.messages[msg.GroupId]; len(msgs) > 0 {
		last = msgs[len(msgs)-1].CreatedAt
	}
	msg.CreatedAt = (*Store)(s).tick(last)

	stored := *msg
	stored.Sender = nil
	s.messages[msg.GroupId] = append(s.messages[msg.GroupId], &stored)

	out := stored
	out.Sender = copyUser(sender)
	return &out, nil
}

func (s *groupStore) ListMessages(ctx context.Context, groupID uuid.UUID) ([]*tables.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.messagesOf(groupID), nil
}
