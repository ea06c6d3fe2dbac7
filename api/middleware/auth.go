package middleware

import (
	"context"
	"net/http"
	"rxvision_server/lib"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
)

// Context keys for storing session data in request context
type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

// SessionAuthMiddleware protects routes to requests carrying a valid, unrevoked session
func (mw *Middleware) SessionAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := lib.ExtractSessionToken(r)
		if err != nil {
			gecho.Unauthorized(w, gecho.WithMessage("Authentication required"), gecho.Send())
			return
		}

		claims, err := mw.authService.ParseSession(r.Context(), token)
		if err != nil {
			mw.logger.Debug("Rejected session", gecho.Field("error", err))
			gecho.Unauthorized(w, gecho.WithMessage("Invalid or expired session"), gecho.Send())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// WithClaims stores claims in ctx
func WithClaims(ctx context.Context, claims *structs.SessionClaims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// GetClaimsFromContext is a helper function to extract the claims from request context
func GetClaimsFromContext(ctx context.Context) (*structs.SessionClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*structs.SessionClaims)
	return claims, ok && claims != nil
}
