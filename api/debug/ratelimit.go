package debug

import (
	"net/http"
	"rxvision_server/api/middleware"

	"github.com/MonkyMars/gecho"
)

// GetRateLimit shows the caller's counter for ?endpoint= (default /api/auth/callback/credentials)
func (drm *DebugRoutesManager) GetRateLimit(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		endpoint = "/api/auth/callback/credentials"
	}

	status, err := drm.cacheService.GetRateLimitStatus(r.Context(), drm.mw.ClientIP(r), middleware.NormalizeEndpoint(endpoint))
	if err != nil {
		gecho.InternalServerError(w,
			gecho.WithMessage("Failed to read rate limit"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(status),
		gecho.Send(),
	)
}
