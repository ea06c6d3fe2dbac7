package auth

import (
	"rxvision_server/api/middleware"
	"rxvision_server/services"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type AuthRoutesManager struct {
	logger       *gecho.Logger
	cfg          *structs.Config
	authService  *services.AuthService
	userService  *services.UserService
	tokenService *services.TokenService
	mw           *middleware.Middleware
}

func NewAuthRoutesManager(
	logger *gecho.Logger,
	cfg *structs.Config,
	authService *services.AuthService,
	userService *services.UserService,
	tokenService *services.TokenService,
	mw *middleware.Middleware,
) *AuthRoutesManager {
	return &AuthRoutesManager{
		logger:       logger,
		cfg:          cfg,
		authService:  authService,
		userService:  userService,
		tokenService: tokenService,
		mw:           mw,
	}
}

func (arm *AuthRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		// Session endpoints in the shapes the NextAuth client expects
		r.Get("/csrf", arm.HandleCSRF)
		r.Get("/providers", arm.HandleProviders)
		r.Get("/session", arm.HandleSession)
		// Checks the csrf token itself, NextAuth posts it in the form body
		r.Post("/callback/credentials", arm.HandleCredentialsCallback)

		r.Group(func(r chi.Router) {
			r.Use(arm.mw.CSRFMiddleware())
			r.Post("/signout", arm.HandleSignout)
		})

		// Account lifecycle
		r.Post("/register", arm.HandleRegister)
		r.Post("/verify-email", arm.HandleVerifyEmail)
		r.Get("/verification-status", arm.HandleVerificationStatus)
		r.Post("/resend-verification", arm.HandleResendVerification)
		r.Post("/forgot-password", arm.HandleForgotPassword)
		r.Post("/reset-password", arm.HandleResetPassword)
	})

	// Link target of the verification email
	r.Get("/verify-email", arm.HandleVerifyEmailPage)
}
