package structs

import (
	"time"

	"github.com/google/uuid"
)

type ArgonParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

type SessionClaims struct {
	Sub     uuid.UUID `json:"sub"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Picture string    `json:"picture"`
	Iat     time.Time `json:"iat"`
	Exp     time.Time `json:"exp"`
	Jti     uuid.UUID `json:"jti"`
}

type CredentialsRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	CsrfToken   string `json:"csrfToken"`
	CallbackUrl string `json:"callbackUrl"`
}

// SessionUser mirrors the user block of a NextAuth session payload.
type SessionUser struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

type SessionResponse struct {
	User    *SessionUser `json:"user"`
	Expires time.Time    `json:"expires"`
}

type ProviderInfo struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SigninUrl   string `json:"signinUrl"`
	CallbackUrl string `json:"callbackUrl"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}
