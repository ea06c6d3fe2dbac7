package users

import (
	"rxvision_server/api/middleware"
	"rxvision_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type UserRoutesManager struct {
	logger      *gecho.Logger
	userService *services.UserService
	authService *services.AuthService
	mw          *middleware.Middleware
}

func NewUserRoutesManager(logger *gecho.Logger, userService *services.UserService, authService *services.AuthService, mw *middleware.Middleware) *UserRoutesManager {
	return &UserRoutesManager{
		logger:      logger,
		userService: userService,
		authService: authService,
		mw:          mw,
	}
}

func (urm *UserRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(urm.mw.SessionAuthMiddleware)
		r.Use(urm.mw.CSRFMiddleware())

		r.Get("/", urm.HandleListUsers)
		r.Get("/me", urm.HandleMe)
		r.Get("/{id}", urm.HandleGetUser)
		r.Put("/{id}", urm.HandleUpdateUser)
		r.Delete("/{id}", urm.HandleDeleteUser)
		r.Post("/{id}/credits", urm.HandleUpdateCredits)
	})
}
