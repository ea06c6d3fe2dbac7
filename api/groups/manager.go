package groups

import (
	"rxvision_server/api/middleware"
	"rxvision_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type GroupRoutesManager struct {
	logger       *gecho.Logger
	groupService *services.GroupService
	mw           *middleware.Middleware
}

func NewGroupRoutesManager(logger *gecho.Logger, groupService *services.GroupService, mw *middleware.Middleware) *GroupRoutesManager {
	return &GroupRoutesManager{
		logger:       logger,
		groupService: groupService,
		mw:           mw,
	}
}

func (grm *GroupRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/api/groups", func(r chi.Router) {
		r.Use(grm.mw.SessionAuthMiddleware)
		r.Use(grm.mw.CSRFMiddleware())

		r.Post("/", grm.HandleCreateGroup)
		r.Get("/", grm.HandleListGroups)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", grm.HandleGetGroup)
			r.Put("/", grm.HandleRenameGroup)
			r.Delete("/", grm.HandleDeleteGroup)

			r.Post("/members", grm.HandleAddMember)
			r.Delete("/members/{userId}", grm.HandleRemoveMember)

			r.Post("/messages", grm.HandleAddMessage)
			r.Get("/messages", grm.HandleListMessages)
		})
	})
}
