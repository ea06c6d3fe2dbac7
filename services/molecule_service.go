package services

import (
	"context"
	"rxvision_server/lib"
	"rxvision_server/stores"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

type MoleculeService struct {
	logger    *gecho.Logger
	molecules stores.MoleculeStore
}

func NewMoleculeService(logger *gecho.Logger, molecules stores.MoleculeStore) *MoleculeService {
	return &MoleculeService{
		logger:    logger,
		molecules: molecules,
	}
}

// CreateHistory records one generation run with its results
func (ms *MoleculeService) CreateHistory(ctx context.Context, userID uuid.UUID, req *structs.CreateMoleculeGenerationRequest) (*tables.MoleculeGenerationHistory, error) {
	generated := make([]*tables.GeneratedMolecule, 0, len(req.GeneratedMolecules))
	for _, m := range req.GeneratedMolecules {
		generated = append(generated, &tables.GeneratedMolecule{
			Structure: strings.TrimSpace(m.Structure),
			Score:     m.Score,
		})
	}

	history, err := ms.molecules.Create(ctx, &tables.MoleculeGenerationHistory{
		Smiles:             strings.TrimSpace(req.Smiles),
		NumMolecules:       req.NumMolecules,
		MinSimilarity:      req.MinSimilarity,
		Particles:          req.Particles,
		Iterations:         req.Iterations,
		UserId:             userID,
		GeneratedMolecules: generated,
	})
	if err != nil {
		return nil, err
	}

	ms.logger.Debug("Molecule generation stored",
		gecho.Field("history_id", history.Id),
		gecho.Field("user_id", userID),
		gecho.Field("molecules", len(generated)),
	)
	return history, nil
}

// GetHistoryByID returns the history if userID owns it. Foreign histories read as not found.
func (ms *MoleculeService) GetHistoryByID(ctx context.Context, userID, id uuid.UUID) (*tables.MoleculeGenerationHistory, error) {
	history, err := ms.molecules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if history.UserId != userID {
		return nil, lib.ErrNotFound
	}
	history.User = history.User.Sanitized()
	return history, nil
}

// ListHistoryByUser returns the user's histories newest first
func (ms *MoleculeService) ListHistoryByUser(ctx context.Context, userID uuid.UUID) ([]*tables.MoleculeGenerationHistory, error) {
	return ms.molecules.ListByUser(ctx, userID)
}

func (ms *MoleculeService) DeleteHistory(ctx context.Context, userID, id uuid.UUID) (*tables.MoleculeGenerationHistory, error) {
	if _, err := ms.GetHistoryByID(ctx, userID, id); err != nil {
		return nil, err
	}
	deleted, err := ms.molecules.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	ms.logger.Info("Molecule generation deleted", gecho.Field("history_id", id), gecho.Field("user_id", userID))
	return deleted, nil
}
