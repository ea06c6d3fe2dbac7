package users

import (
	"net/http"
	"rxvision_server/api/middleware"
	"rxvision_server/handling"
	"rxvision_server/lib"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

func (urm *UserRoutesManager) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	user, err := urm.authService.GetUserByID(r.Context(), claims.Sub)
	if err != nil {
		handling.RespondError(err, "get current user", urm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithData(user), gecho.Send())
}

// HandleListUsers looks one user up by ?email=, otherwise lists everyone
func (urm *UserRoutesManager) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		user, err := urm.userService.GetUserByEmail(r.Context(), email)
		if err != nil {
			handling.RespondError(err, "get user by email", urm.logger, w)
			return
		}
		gecho.Success(w, gecho.WithData(user), gecho.Send())
		return
	}

	users, err := urm.userService.ListUsers(r.Context())
	if err != nil {
		handling.HandleError(err, "list users", urm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(users),
		gecho.Send(),
	)
}

func (urm *UserRoutesManager) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("Invalid user id"), gecho.Send())
		return
	}

	user, err := urm.userService.GetUserByID(r.Context(), id)
	if err != nil {
		handling.RespondError(err, "get user", urm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithData(user), gecho.Send())
}

func (urm *UserRoutesManager) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urm.self(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.UpdateUserRequest](r)
	if err != nil {
		handling.RespondError(err, "decode update user body", urm.logger, w)
		return
	}

	user, err := urm.userService.UpdateUser(r.Context(), id, body)
	if err != nil {
		handling.RespondError(err, "update user", urm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Profile updated"),
		gecho.WithData(user),
		gecho.Send(),
	)
}

func (urm *UserRoutesManager) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urm.self(w, r)
	if !ok {
		return
	}

	if err := urm.userService.DeleteUser(r.Context(), id); err != nil {
		handling.RespondError(err, "delete user", urm.logger, w)
		return
	}

	// The account is gone, so is the session
	if claims, ok := middleware.GetClaimsFromContext(r.Context()); ok {
		if err := urm.authService.RevokeSession(r.Context(), claims); err != nil {
			urm.logger.Warn("Failed to revoke session of deleted user", gecho.Field("error", err))
		}
	}
	lib.ClearCookie(lib.SessionCookieName, w)

	gecho.Success(w, gecho.WithMessage("Account deleted"), gecho.Send())
}

func (urm *UserRoutesManager) HandleUpdateCredits(w http.ResponseWriter, r *http.Request) {
	id, ok := urm.self(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.UpdateCreditsRequest](r)
	if err != nil {
		handling.RespondError(err, "decode credits body", urm.logger, w)
		return
	}

	user, err := urm.userService.UpdateCredits(r.Context(), id, body.Amount)
	if err != nil {
		handling.RespondError(err, "update credits", urm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{"creditBalance": user.CreditBalance}),
		gecho.Send(),
	)
}

// self parses {id} and requires it to be the session user
func (urm *UserRoutesManager) self(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("Invalid user id"), gecho.Send())
		return uuid.Nil, false
	}

	claims, _ := middleware.GetClaimsFromContext(r.Context())
	if claims.Sub != id {
		urm.logger.Warn("User tried to modify another account", gecho.Field("user_id", claims.Sub), gecho.Field("target", id))
		gecho.Forbidden(w, gecho.WithMessage("You can only modify your own account"), gecho.Send())
		return uuid.Nil, false
	}
	return id, true
}
