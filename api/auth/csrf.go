package auth

import (
	"net/http"
	"rxvision_server/handling"
	"rxvision_server/lib"
	"time"

	"github.com/MonkyMars/gecho"
)

// HandleCSRF generates a CSRF token, sets it as a cookie and returns it as {csrfToken}
func (arm *AuthRoutesManager) HandleCSRF(w http.ResponseWriter, r *http.Request) {
	// Reuse the current token so parallel tabs keep working
	if existing, err := lib.GetCookieValue(lib.CSRFCookieName, r); err == nil && existing != "" {
		handling.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": existing})
		return
	}

	token, err := lib.GenerateCSRFToken()
	if err != nil {
		arm.logger.Error("Failed to generate CSRF token", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Failed to generate CSRF token"),
			gecho.Send(),
		)
		return
	}

	lib.SetCSRFCookie(token, time.Now().Add(24*time.Hour), w)
	handling.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}
