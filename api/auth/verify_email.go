package auth

import (
	"net/http"
	"net/url"
	"rxvision_server/handling"
	"rxvision_server/lib"
	"rxvision_server/structs"
	"strings"

	"github.com/MonkyMars/gecho"
)

// HandleVerifyEmail consumes a verification token and reports the structured outcome
func (arm *AuthRoutesManager) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.VerifyEmailRequest](r)
	if err != nil {
		handling.RespondError(err, "decode verify body", arm.logger, w)
		return
	}

	result := arm.tokenService.VerifyEmail(r.Context(), strings.TrimSpace(body.Token))
	if result.Status == structs.VerificationError {
		gecho.InternalServerError(w, gecho.WithMessage(result.Message), gecho.WithData(result), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithMessage(result.Message),
		gecho.WithData(result),
		gecho.Send(),
	)
}

// HandleVerifyEmailPage handles the emailed link and sends the browser to the frontend with the outcome
func (arm *AuthRoutesManager) HandleVerifyEmailPage(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))

	var status structs.VerificationStatus
	if token == "" {
		status = structs.VerificationInvalidFormat
	} else {
		status = arm.tokenService.VerifyEmail(r.Context(), token).Status
	}

	target := strings.TrimRight(arm.cfg.Server.FrontendURL, "/") + "/verify-email?status=" + url.QueryEscape(string(status))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleVerificationStatus reports whether the account behind ?email= is verified
func (arm *AuthRoutesManager) HandleVerificationStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		gecho.BadRequest(w, gecho.WithMessage("Email is required"), gecho.Send())
		return
	}

	status, err := arm.userService.VerificationStatus(r.Context(), email)
	if err != nil {
		handling.RespondError(err, "verification status", arm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithData(status), gecho.Send())
}

func (arm *AuthRoutesManager) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.EmailRequest](r)
	if err != nil {
		handling.RespondError(err, "decode resend body", arm.logger, w)
		return
	}

	if err := arm.userService.ResendVerification(r.Context(), body.Email); err != nil {
		handling.RespondError(err, "resend verification", arm.logger, w)
		return
	}

	// Same answer whether or not the account exists
	gecho.Success(w,
		gecho.WithMessage("If the account exists and is not verified, a new verification email has been sent"),
		gecho.Send(),
	)
}
