package molecules

import (
	"rxvision_server/api/middleware"
	"rxvision_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type MoleculeRoutesManager struct {
	logger          *gecho.Logger
	moleculeService *services.MoleculeService
	mw              *middleware.Middleware
}

func NewMoleculeRoutesManager(logger *gecho.Logger, moleculeService *services.MoleculeService, mw *middleware.Middleware) *MoleculeRoutesManager {
	return &MoleculeRoutesManager{
		logger:          logger,
		moleculeService: moleculeService,
		mw:              mw,
	}
}

func (mrm *MoleculeRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/api/molecule-generations", func(r chi.Router) {
		r.Use(mrm.mw.SessionAuthMiddleware)
		r.Use(mrm.mw.CSRFMiddleware())

		r.Post("/", mrm.HandleCreate)
		r.Get("/", mrm.HandleList)
		r.Get("/{id}", mrm.HandleGet)
		r.Delete("/{id}", mrm.HandleDelete)
	})
}
