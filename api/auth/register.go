package auth

import (
	"errors"
	"net/http"
	"rxvision_server/handling"
	"rxvision_server/lib"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
)

func (arm *AuthRoutesManager) HandleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.CreateUserRequest](r)
	if err != nil {
		arm.logger.Warn("Failed to extract request body", gecho.Field("error", err))
		handling.RespondError(err, "decode register body", arm.logger, w)
		return
	}

	user, err := arm.userService.CreateUser(r.Context(), body)
	if err != nil {
		if errors.Is(err, lib.ErrConflict) {
			gecho.Conflict(w, gecho.WithMessage("An account with this email already exists"), gecho.Send())
			return
		}
		handling.HandleError(err, "register user", arm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Registration successful. Please check your email to verify your account"),
		gecho.WithData(user),
		gecho.Send(),
	)
}
