package middleware

import (
	"net/netip"
	"rxvision_server/services"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
)

type Middleware struct {
	logger         *gecho.Logger
	cfg            *structs.Config
	cacheService   *services.CacheService
	authService    *services.AuthService
	trustedProxies []netip.Prefix
}

func NewMiddleware(cfg *structs.Config, logger *gecho.Logger, cacheService *services.CacheService, authService *services.AuthService) *Middleware {
	trusted, err := ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		logger.Warn("Ignoring invalid trusted proxies", gecho.Field("error", err))
	}

	return &Middleware{
		logger:         logger,
		cfg:            cfg,
		cacheService:   cacheService,
		authService:    authService,
		trustedProxies: trusted,
	}
}
