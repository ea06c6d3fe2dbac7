package auth

import (
	"errors"
	"mime"
	"net/http"
	"rxvision_server/api/middleware"
	"rxvision_server/handling"
	"rxvision_server/lib"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
)

// HandleCredentialsCallback signs a user in with email and password and sets the session cookie
func (arm *AuthRoutesManager) HandleCredentialsCallback(w http.ResponseWriter, r *http.Request) {
	body, err := decodeCredentials(r)
	if err != nil {
		arm.logger.Warn("Failed to extract request body", gecho.Field("error", err))
		handling.RespondError(err, "decode credentials", arm.logger, w)
		return
	}

	csrf := body.CsrfToken
	if csrf == "" {
		csrf = r.Header.Get(lib.CSRFHeaderName)
	}
	if !middleware.CheckCSRF(r, csrf) {
		arm.logger.Warn("CSRF check failed on sign in")
		gecho.Forbidden(w, gecho.WithMessage("Invalid CSRF token"), gecho.Send())
		return
	}

	user, err := arm.authService.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, lib.ErrInvalidCredentials) || errors.Is(err, lib.ErrEmailNotVerified) {
			arm.logger.Warn("Login failed", gecho.Field("error", err))
		}
		handling.RespondError(err, "login", arm.logger, w)
		return
	}

	token, claims, err := arm.authService.IssueSession(user)
	if err != nil {
		arm.logger.Error("Failed to issue session", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to complete login. Please try again"), gecho.Send())
		return
	}

	lib.SetCookie(lib.SessionCookieName, token, claims.Exp, w)

	callback := body.CallbackUrl
	if callback == "" {
		callback = arm.cfg.Server.FrontendURL
	}

	gecho.Success(w,
		gecho.WithMessage("Login successful"),
		gecho.WithData(map[string]any{
			"url":     callback,
			"session": sessionFromClaims(claims),
		}),
		gecho.Send(),
	)
}

// decodeCredentials accepts the form post NextAuth sends as well as JSON
func decodeCredentials(r *http.Request) (*structs.CredentialsRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" && mediaType != "multipart/form-data" {
		return lib.ExtractAndValidateBody[structs.CredentialsRequest](r)
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	body := &structs.CredentialsRequest{
		Email:       r.PostForm.Get("email"),
		Password:    r.PostForm.Get("password"),
		CsrfToken:   r.PostForm.Get("csrfToken"),
		CallbackUrl: r.PostForm.Get("callbackUrl"),
	}
	if err := lib.ValidateStruct(body); err != nil {
		return nil, err
	}
	return body, nil
}

func sessionFromClaims(claims *structs.SessionClaims) *structs.SessionResponse {
	return &structs.SessionResponse{
		User: &structs.SessionUser{
			Id:    claims.Sub.String(),
			Name:  claims.Name,
			Email: claims.Email,
			Image: claims.Picture,
		},
		Expires: claims.Exp,
	}
}
