package api

import (
	"rxvision_server/api/auth"
	"rxvision_server/api/debug"
	"rxvision_server/api/email"
	"rxvision_server/api/groups"
	"rxvision_server/api/health"
	"rxvision_server/api/molecules"
	"rxvision_server/api/users"

	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	healthRoutes   *health.HealthRoutesManager
	authRoutes     *auth.AuthRoutesManager
	emailRoutes    *email.EmailRoutesManager
	userRoutes     *users.UserRoutesManager
	groupRoutes    *groups.GroupRoutesManager
	moleculeRoutes *molecules.MoleculeRoutesManager
	debugRoutes    *debug.DebugRoutesManager
}

func NewRouterManager(
	healthRoutes *health.HealthRoutesManager,
	authRoutes *auth.AuthRoutesManager,
	emailRoutes *email.EmailRoutesManager,
	userRoutes *users.UserRoutesManager,
	groupRoutes *groups.GroupRoutesManager,
	moleculeRoutes *molecules.MoleculeRoutesManager,
	debugRoutes *debug.DebugRoutesManager,
) *routerManager {
	return &routerManager{
		healthRoutes:   healthRoutes,
		authRoutes:     authRoutes,
		emailRoutes:    emailRoutes,
		userRoutes:     userRoutes,
		groupRoutes:    groupRoutes,
		moleculeRoutes: moleculeRoutes,
		debugRoutes:    debugRoutes,
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.healthRoutes.RegisterRoutes(r)
	rm.authRoutes.RegisterRoutes(r)
	rm.emailRoutes.RegisterRoutes(r)
	rm.userRoutes.RegisterRoutes(r)
	rm.groupRoutes.RegisterRoutes(r)
	rm.moleculeRoutes.RegisterRoutes(r)
	rm.debugRoutes.RegisterRoutes(r)
}
