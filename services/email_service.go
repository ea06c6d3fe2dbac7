package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"rxvision_server/structs"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	verifyEmailSubject   = "Verify your email"
	resetPasswordSubject = "Reset your password"
)

var ErrMissingVerificationURL = errors.New("verification URL missing")

// MailSender is the part of the Resend client the service depends on
type MailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	sender MailSender
}

// NewEmailService builds the service on the Resend API. Pass a non-nil sender to override it.
func NewEmailService(logger *gecho.Logger, cfg *structs.Config, sender MailSender) *EmailService {
	if sender == nil {
		sender = resend.NewClient(cfg.Email.ApiKey).Emails
	}
	return &EmailService{
		logger: logger,
		cfg:    cfg,
		sender: sender,
	}
}

type emailData struct {
	FirstName    string
	ActionURL    string
	ExpiresIn    string
	SupportEmail string
}

func (es *EmailService) render(name string, data emailData) (string, error) {
	data.SupportEmail = es.cfg.Email.SupportEmail
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// SendEmail sends an HTML email and returns the provider response
func (es *EmailService) SendEmail(ctx context.Context, to []string, subject string, body string) (*resend.SendEmailResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &resend.SendEmailRequest{
		From:    es.cfg.Email.From,
		To:      to,
		Html:    body,
		Subject: subject,
	}

	resp, err := es.sender.Send(params)
	if err != nil {
		es.logger.Error("Failed to send email", gecho.Field("error", err), gecho.Field("to", to), gecho.Field("subject", subject))
		return nil, err
	}

	es.logger.Debug("Email sent", gecho.Field("to", to), gecho.Field("subject", subject), gecho.Field("id", resp.Id))
	return resp, nil
}

// SendVerificationEmail mails the verification link to email
func (es *EmailService) SendVerificationEmail(ctx context.Context, email, firstName, verificationURL string) (*resend.SendEmailResponse, error) {
	if verificationURL == "" {
		return nil, ErrMissingVerificationURL
	}

	body, err := es.render("verify_email.html", emailData{
		FirstName: firstName,
		ActionURL: verificationURL,
		ExpiresIn: humanizeDuration(es.cfg.Auth.VerificationTokenTTL),
	})
	if err != nil {
		return nil, err
	}

	return es.SendEmail(ctx, []string{email}, verifyEmailSubject, body)
}

// SendResetPasswordEmail mails the password reset link to email
func (es *EmailService) SendResetPasswordEmail(ctx context.Context, email, firstName, resetURL string) error {
	body, err := es.render("reset_password.html", emailData{
		FirstName: firstName,
		ActionURL: resetURL,
		ExpiresIn: humanizeDuration(es.cfg.Auth.ResetTokenTTL),
	})
	if err != nil {
		return err
	}

	_, err = es.SendEmail(ctx, []string{email}, resetPasswordSubject, body)
	return err
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
