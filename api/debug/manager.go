package debug

import (
	"rxvision_server/api/middleware"
	"rxvision_server/services"
	"rxvision_server/structs"

	"github.com/go-chi/chi/v5"
)

type DebugRoutesManager struct {
	cfg          *structs.Config
	cacheService *services.CacheService
	mw           *middleware.Middleware
}

func NewDebugRoutesManager(cfg *structs.Config, cacheService *services.CacheService, mw *middleware.Middleware) *DebugRoutesManager {
	return &DebugRoutesManager{
		cfg:          cfg,
		cacheService: cacheService,
		mw:           mw,
	}
}

func (drm *DebugRoutesManager) RegisterRoutes(r chi.Router) {
	// Debug routes - only in non-production environments
	if drm.cfg.Server.Environment != "production" {
		r.Route("/debug", func(r chi.Router) {
			r.Get("/rate-limit", drm.GetRateLimit)
		})
	}
}
