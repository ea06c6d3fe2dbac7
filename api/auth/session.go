package auth

import (
	"net/http"
	"rxvision_server/handling"
	"rxvision_server/lib"

	"github.com/MonkyMars/gecho"
)

// HandleSession returns the current session, or {} when signed out
func (arm *AuthRoutesManager) HandleSession(w http.ResponseWriter, r *http.Request) {
	token, err := lib.ExtractSessionToken(r)
	if err != nil {
		handling.WriteJSON(w, http.StatusOK, struct{}{})
		return
	}

	claims, err := arm.authService.ParseSession(r.Context(), token)
	if err != nil {
		arm.logger.Debug("Stale session cookie", gecho.Field("error", err))
		lib.ClearCookie(lib.SessionCookieName, w)
		handling.WriteJSON(w, http.StatusOK, struct{}{})
		return
	}

	handling.WriteJSON(w, http.StatusOK, sessionFromClaims(claims))
}

// HandleSignout revokes the session and clears the cookie
func (arm *AuthRoutesManager) HandleSignout(w http.ResponseWriter, r *http.Request) {
	token, err := lib.ExtractSessionToken(r)
	if err == nil {
		if claims, err := lib.ParseSessionToken(token, arm.cfg.Auth.SessionSecret); err == nil {
			if err := arm.authService.RevokeSession(r.Context(), claims); err != nil {
				arm.logger.Error("Failed to revoke session", gecho.Field("error", err), gecho.Field("user_id", claims.Sub))
			}
		}
	}

	lib.ClearCookie(lib.SessionCookieName, w)
	gecho.Success(w,
		gecho.WithMessage("Signed out"),
		gecho.WithData(map[string]string{"url": arm.cfg.Server.FrontendURL}),
		gecho.Send(),
	)
}
