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

type BunMoleculeStore struct {
	db *database.DB
}

func NewBunMoleculeStore(db *database.DB) *BunMoleculeStore {
	return &BunMoleculeStore{db: db}
}

func (s *BunMoleculeStore) Create(ctx context.Context, history *tables.MoleculeGenerationHistory) (*tables.MoleculeGenerationHistory, error) {
	if history.Id == uuid.Nil {
		history.Id = uuid.New()
	}
	history.CreatedAt = time.Now()
	molecules := history.GeneratedMolecules
	for _, m := range molecules {
		m.Id = uuid.New()
		m.HistoryId = history.Id
	}

	err := database.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := database.Query[tables.MoleculeGenerationHistory](tx).Insert(ctx, history); err != nil {
			return err
		}
		_, err := database.Query[tables.GeneratedMolecule](tx).InsertMany(ctx, molecules)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create molecule generation: %w", lib.MapPgError(err))
	}

	history.GeneratedMolecules = molecules
	return history, nil
}

func (s *BunMoleculeStore) GetByID(ctx context.Context, id uuid.UUID) (*tables.MoleculeGenerationHistory, error) {
	return getHistory(ctx, s.db, id)
}

func getHistory(ctx context.Context, db bun.IDB, id uuid.UUID) (*tables.MoleculeGenerationHistory, error) {
	history, err := database.Query[tables.MoleculeGenerationHistory](db).
		Where("id", id).
		With("GeneratedMolecules").
		First(ctx)
	if err != nil {
		return nil, fmt.Errorf("get molecule generation: %w", lib.MapPgError(err))
	}
	if history == nil {
		return nil, lib.ErrNotFound
	}
	return history, nil
}

func (s *BunMoleculeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*tables.MoleculeGenerationHistory, error) {
	rows, err := database.Query[tables.MoleculeGenerationHistory](s.db).
		Where("user_id", userID).
		With("GeneratedMolecules").
		OrderBy("created_at", database.DESC).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list molecule generations: %w", lib.MapPgError(err))
	}
	return toPointers(rows), nil
}

func (s *BunMoleculeStore) Delete(ctx context.Context, id uuid.UUID) (*tables.MoleculeGenerationHistory, error) {
	var deleted *tables.MoleculeGenerationHistory
	err := database.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		history, err := getHistory(ctx, tx, id)
		if err != nil {
			return err
		}
		// generated_molecules rows go with the history through ON DELETE CASCADE
		if _, err := database.DeleteByID[tables.MoleculeGenerationHistory](ctx, tx, id); err != nil {
			return err
		}
		deleted = history
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete molecule generation: %w", lib.MapPgError(err))
	}
	return deleted, nil
}
