package structs

type GeneratedMoleculeInput struct {
	Structure string  `json:"structure" validate:"required"`
	Score     float64 `json:"score"`
}

type CreateMoleculeGenerationRequest struct {
	Smiles             string                   `json:"smiles" validate:"required,max=2000"`
	NumMolecules       int                      `json:"numMolecules" validate:"gte=1,lte=1000"`
	MinSimilarity      float64                  `json:"minSimilarity" validate:"gte=0,lte=1"`
	Particles          int                      `json:"particles" validate:"gte=1"`
	Iterations         int                      `json:"iterations" validate:"gte=1"`
	GeneratedMolecules []GeneratedMoleculeInput `json:"generatedMolecules" validate:"dive"`
}
