package memory

import (
	"context"
	"testing"

	"rxvision_server/lib"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, email string) *tables.User {
	t.Helper()
	u, err := s.Set().Users.Create(context.Background(), &tables.User{Email: email, PasswordHash: "h"})
	require.NoError(t, err)
	return u
}

func TestUserStoreCreateRejectsDuplicateEmail(t *testing.T) {
	s := New()
	seedUser(t, s, "ada@rxvision.io")

	_, err := s.Set().Users.Create(context.Background(), &tables.User{Email: "ada@rxvision.io"})
	assert.ErrorIs(t, err, lib.ErrConflict)
}

func TestUserStoreLookups(t *testing.T) {
	ctx := context.Background()
	s := New()
	users := s.Set().Users
	u := seedUser(t, s, "ada@rxvision.io")

	_, err := users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, lib.ErrNotFound)

	require.NoError(t, users.SetVerificationToken(ctx, u.Id, "tok", s.now()))
	got, err := users.GetByVerificationToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, u.Id, got.Id)

	require.NoError(t, users.MarkEmailVerified(ctx, u.Id))
	_, err = users.GetByVerificationToken(ctx, "tok")
	assert.ErrorIs(t, err, lib.ErrNotFound)

	got, err = users.GetByEmail(ctx, "ada@rxvision.io")
	require.NoError(t, err)
	assert.True(t, got.IsEmailVerified)
	assert.Nil(t, got.VerificationToken)
}

func TestUserStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := seedUser(t, s, "ada@rxvision.io")

	u.Email = "mutated@rxvision.io"
	got, err := s.Set().Users.GetByID(ctx, u.Id)
	require.NoError(t, err)
	assert.Equal(t, "ada@rxvision.io", got.Email)
}

func TestUserStoreIncrementCredits(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := seedUser(t, s, "ada@rxvision.io")

	got, err := s.Set().Users.IncrementCredits(ctx, u.Id, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, got.CreditBalance)

	got, err = s.Set().Users.IncrementCredits(ctx, u.Id, -3)
	require.NoError(t, err)
	assert.Equal(t, 7, got.CreditBalance)
}

func TestUserStoreUpdateProfileOnlyTouchesGivenFields(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, err := s.Set().Users.Create(ctx, &tables.User{Email: "ada@rxvision.io", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)

	bio := "analyst"
	got, err := s.Set().Users.UpdateProfile(ctx, u.Id, &structs.UpdateUserRequest{UserBio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "analyst", got.UserBio)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
}

func TestUserStoreList(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, email := range []string{"a@rx.io", "b@rx.io", "c@rx.io"} {
		seedUser(t, s, email)
	}

	users, err := s.Set().Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestGroupStoreMembershipAndMessages(t *testing.T) {
	ctx := context.Background()
	s := New()
	groups := s.Set().Groups
	owner := seedUser(t, s, "owner@rx.io")
	member := seedUser(t, s, "member@rx.io")
	outsider := seedUser(t, s, "outsider@rx.io")

	g, err := groups.Create(ctx, &tables.Group{Name: "Kinases", CreatedById: owner.Id}, []uuid.UUID{owner.Id, member.Id})
	require.NoError(t, err)
	assert.Len(t, g.Members, 2)
	assert.Equal(t, owner.Id, g.CreatedBy.Id)

	require.NoError(t, groups.AddMember(ctx, g.Id, member.Id))
	require.NoError(t, groups.AddMember(ctx, g.Id, outsider.Id))
	g, err = groups.GetByID(ctx, g.Id)
	require.NoError(t, err)
	assert.Len(t, g.Members, 3)

	for _, text := range []string{"first", "second", "third"} {
		_, err := groups.AddMessage(ctx, &tables.Message{GroupId: g.Id, SenderId: member.Id, Text: text})
		require.NoError(t, err)
	}
	msgs, err := groups.ListMessages(ctx, g.Id)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "third", msgs[2].Text)
	assert.Equal(t, member.Id, msgs[0].Sender.Id)

	require.NoError(t, groups.RemoveMember(ctx, g.Id, outsider.Id))
	assert.ErrorIs(t, groups.RemoveMember(ctx, g.Id, outsider.Id), lib.ErrNotFound)

	mine, err := groups.List(ctx, outsider.Id)
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err := groups.List(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGroupStoreCreateRejectsUnknownMembers(t *testing.T) {
	s := New()
	owner := seedUser(t, s, "owner@rx.io")

	_, err := s.Set().Groups.Create(context.Background(), &tables.Group{Name: "g", CreatedById: owner.Id}, []uuid.UUID{owner.Id, uuid.New()})
	assert.ErrorIs(t, err, lib.ErrNotFound)

	all, err := s.Set().Groups.List(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeletingUserCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	set := s.Set()
	owner := seedUser(t, s, "owner@rx.io")

	g, err := set.Groups.Create(ctx, &tables.Group{Name: "g", CreatedById: owner.Id}, []uuid.UUID{owner.Id})
	require.NoError(t, err)
	h, err := set.Molecules.Create(ctx, &tables.MoleculeGenerationHistory{UserId: owner.Id, Smiles: "CCO"})
	require.NoError(t, err)

	require.NoError(t, set.Users.Delete(ctx, owner.Id))

	_, err = set.Groups.GetByID(ctx, g.Id)
	assert.ErrorIs(t, err, lib.ErrNotFound)
	_, err = set.Molecules.GetByID(ctx, h.Id)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestMoleculeStoreOrderingAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	molecules := s.Set().Molecules
	u := seedUser(t, s, "chem@rx.io")

	var ids []uuid.UUID
	for _, smiles := range []string{"C", "CC", "CCC"} {
		h, err := molecules.Create(ctx, &tables.MoleculeGenerationHistory{
			UserId: u.Id,
			Smiles: smiles,
			GeneratedMolecules: []*tables.GeneratedMolecule{
				{Structure: smiles + "O", Score: 0.9},
			},
		})
		require.NoError(t, err)
		require.Len(t, h.GeneratedMolecules, 1)
		assert.Equal(t, h.Id, h.GeneratedMolecules[0].HistoryId)
		ids = append(ids, h.Id)
	}

	list, err := molecules.ListByUser(ctx, u.Id)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "CCC", list[0].Smiles)
	assert.Equal(t, "C", list[2].Smiles)

	deleted, err := molecules.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "C", deleted.Smiles)
	assert.Len(t, deleted.GeneratedMolecules, 1)

	_, err = molecules.Delete(ctx, ids[0])
	assert.ErrorIs(t, err, lib.ErrNotFound)
}
