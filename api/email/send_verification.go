package email

import (
	"errors"
	"net/http"
	"rxvision_server/handling"
	"rxvision_server/lib"
	"rxvision_server/services"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
)

// HandleSendVerificationEmail mails a caller supplied verification link. The
// provider response is passed through unwrapped, errors as {"error": ...}.
func (erm *EmailRoutesManager) HandleSendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.SendVerificationEmailRequest](r)
	if err != nil {
		handling.RespondError(err, "decode send verification body", erm.logger, w)
		return
	}

	resp, err := erm.emailService.SendVerificationEmail(r.Context(), body.Email, body.FirstName, body.VerificationUrl)
	if err != nil {
		if errors.Is(err, services.ErrMissingVerificationURL) {
			handling.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Verification URL missing"})
			return
		}
		erm.logger.Error("Verification email failed", gecho.Field("error", err), gecho.Field("email", body.Email))
		handling.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	handling.WriteJSON(w, http.StatusOK, resp)
}
