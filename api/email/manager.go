package email

import (
	"rxvision_server/api/middleware"
	"rxvision_server/services"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type EmailRoutesManager struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	emailService *services.EmailService
	mw           *middleware.Middleware
}

func NewEmailRoutesManager(logger *gecho.Logger, cfg *structs.Config, emailService *services.EmailService, mw *middleware.Middleware) *EmailRoutesManager {
	return &EmailRoutesManager{
		logger:       logger,
		cfg:          cfg,
		emailService: emailService,
		mw:           mw,
	}
}

func (erm *EmailRoutesManager) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(erm.mw.StrictRateLimitMiddleware(erm.cfg.RateLimit.AuthLimit, erm.cfg.RateLimit.AuthWindow))
		r.Post("/api/send-verification-email", erm.HandleSendVerificationEmail)
	})
}
