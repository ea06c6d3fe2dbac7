package auth

import (
	"net/http"
	"rxvision_server/handling"
	"rxvision_server/lib"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
)

// HandleForgotPassword always answers 200 so it cannot be used to enumerate accounts
func (arm *AuthRoutesManager) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.EmailRequest](r)
	if err != nil {
		handling.RespondError(err, "decode forgot password body", arm.logger, w)
		return
	}

	if err := arm.userService.RequestPasswordReset(r.Context(), body.Email); err != nil {
		arm.logger.Error("Password reset request failed", gecho.Field("error", err))
	}

	gecho.Success(w,
		gecho.WithMessage("If an account exists for this email, a reset link has been sent"),
		gecho.Send(),
	)
}

func (arm *AuthRoutesManager) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.ResetPasswordRequest](r)
	if err != nil {
		handling.RespondError(err, "decode reset password body", arm.logger, w)
		return
	}

	user, err := arm.tokenService.ResetPassword(r.Context(), body.Token, body.Password)
	if err != nil {
		handling.RespondError(err, "reset password", arm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Password has been reset"),
		gecho.WithData(map[string]string{"email": user.Email}),
		gecho.Send(),
	)
}
