package structs

type SendVerificationEmailRequest struct {
	FirstName       string `json:"firstName" validate:"max=100"`
	Email           string `json:"email" validate:"required,email"`
	VerificationUrl string `json:"verificationUrl"` // checked by the handler so a missing URL gets its own message
}
