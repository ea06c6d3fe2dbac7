package handling

import (
	"encoding/json"
	"errors"
	"net/http"
	"rxvision_server/lib"

	"github.com/MonkyMars/gecho"
)

func HandleError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) {
	logger.Error("An error occurred", gecho.Field("error", err), gecho.Field("msg", msg), gecho.WithCallerSkip(3))

	gecho.InternalServerError(w, gecho.Send())
}

// RespondError maps service errors onto HTTP statuses. Anything unrecognized
// is logged and answered with a 500.
func RespondError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) {
	var ve *lib.ValidationError
	switch {
	case errors.As(err, &ve):
		gecho.BadRequest(w, gecho.WithMessage("Validation failed"), gecho.WithData(ve.Errors), gecho.Send())
	case errors.Is(err, lib.ErrEmptyBody):
		gecho.BadRequest(w, gecho.WithMessage("Request body is required"), gecho.Send())
	case errors.Is(err, lib.ErrInvalidBody):
		gecho.BadRequest(w, gecho.WithMessage("Invalid request body"), gecho.Send())
	case errors.Is(err, lib.ErrNotFound):
		gecho.NotFound(w, gecho.WithMessage(lib.GetUserMessage(err)), gecho.Send())
	case errors.Is(err, lib.ErrConflict):
		gecho.Conflict(w, gecho.WithMessage(lib.GetUserMessage(err)), gecho.Send())
	case errors.Is(err, lib.ErrInvalidCredentials):
		gecho.Unauthorized(w, gecho.WithMessage(lib.GetUserMessage(err)), gecho.Send())
	case errors.Is(err, lib.ErrEmailNotVerified), errors.Is(err, lib.ErrForbidden):
		gecho.Forbidden(w, gecho.WithMessage(lib.GetUserMessage(err)), gecho.Send())
	case errors.Is(err, lib.ErrTooManyRequests):
		gecho.TooManyRequests(w, gecho.WithMessage(lib.GetUserMessage(err)), gecho.Send())
	case errors.Is(err, lib.ErrInvalidToken):
		gecho.BadRequest(w, gecho.WithMessage(lib.GetUserMessage(err)), gecho.Send())
	case errors.Is(err, lib.ErrExpiredToken):
		WriteJSON(w, http.StatusGone, map[string]string{"message": lib.GetUserMessage(err)})
	default:
		HandleError(err, msg, logger, w)
	}
}

// WriteJSON writes payload as-is, for clients that expect a bare JSON shape
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}
