package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type MoleculeGenerationHistory struct {
	bun.BaseModel `bun:"table:molecule_generation_histories,alias:mgh"`

	Id                 uuid.UUID            `json:"id" bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Smiles             string               `json:"smiles" bun:"smiles,notnull"`
	NumMolecules       int                  `json:"numMolecules" bun:"num_molecules,notnull"`
	MinSimilarity      float64              `json:"minSimilarity" bun:"min_similarity,notnull"`
	Particles          int                  `json:"particles" bun:"particles,notnull"`
	Iterations         int                  `json:"iterations" bun:"iterations,notnull"`
	UserId             uuid.UUID            `json:"userId" bun:"user_id,type:uuid,notnull"`
	User               *User                `json:"user,omitempty" bun:"rel:belongs-to,join:user_id=id"`
	GeneratedMolecules []*GeneratedMolecule `json:"generatedMolecules" bun:"rel:has-many,join:id=history_id"`
	CreatedAt          time.Time            `json:"createdAt" bun:"created_at,notnull,default:now()"`
}

type GeneratedMolecule struct {
	bun.BaseModel `bun:"table:generated_molecules,alias:gmol"`

	Id        uuid.UUID `json:"id" bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	HistoryId uuid.UUID `json:"historyId" bun:"history_id,type:uuid,notnull"`
	Structure string    `json:"structure" bun:"structure,notnull"`
	Score     float64   `json:"score" bun:"score,notnull"`
}
