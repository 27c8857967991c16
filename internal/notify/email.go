// VillageVitals | 2026
// email.go

// Package notify delivers OTP and welcome mail. The account lifecycle
// service treats delivery as observable but unreliable: signup swallows
// failures, resend surfaces them.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/villagevitals/backend/internal/config"
)

type Mailer interface {
	SendOTPEmail(ctx context.Context, email, code, firstName string) error
	SendWelcomeEmail(ctx context.Context, email, firstName string) error
}

type SendGridMailer struct {
	client      *sendgrid.Client
	fromName    string
	fromAddress string
}

func NewSendGridMailer(cfg config.EmailConfig) *SendGridMailer {
	return &SendGridMailer{
		client:      sendgrid.NewSendClient(cfg.APIKey),
		fromName:    cfg.FromName,
		fromAddress: cfg.FromAddress,
	}
}

func (m *SendGridMailer) SendOTPEmail(
	ctx context.Context,
	email, code, firstName string,
) error {
	subject := "Verify Your VillageVitals Account - OTP Code"

	text := fmt.Sprintf(`Hello %s!

Welcome to VillageVitals! To complete your account verification, please use the following OTP code:

Verification Code: %s

This code will expire in 10 minutes.

Enter this code in the verification screen to activate your account.

If you didn't request this verification, please ignore this email.

Best regards,
The VillageVitals Team`, firstName, code)

	html := fmt.Sprintf(`<h2>Hello %s!</h2>
<p>Welcome to VillageVitals! To complete your account verification, please use the OTP code below:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:8px;">%s</p>
<p><small>This code will expire in 10 minutes.</small></p>
<p>Never share this code with anyone. VillageVitals staff will never ask for your verification code.</p>`,
		firstName, code)

	return m.send(ctx, email, firstName, subject, text, html)
}

func (m *SendGridMailer) SendWelcomeEmail(
	ctx context.Context,
	email, firstName string,
) error {
	subject := "Welcome to VillageVitals - Account Verified Successfully!"

	text := fmt.Sprintf(`Hello %s!

Congratulations! Your VillageVitals account is now active and ready to use.

You can now report health cases and symptoms, track water quality, view the interactive health map, and receive community alerts.

Best regards,
The VillageVitals Team`, firstName)

	html := fmt.Sprintf(`<h2>Hello %s!</h2>
<p>Congratulations! Your VillageVitals account is now active and ready to use. You're now part of a community dedicated to improving rural healthcare.</p>
<ul>
<li><strong>Health Reporting</strong> - Report health cases and symptoms in your community</li>
<li><strong>Water Quality Monitoring</strong> - Track and report water quality issues</li>
<li><strong>Interactive Health Map</strong> - View health data and unsafe areas</li>
<li><strong>Alert System</strong> - Create and receive important health alerts</li>
</ul>`, firstName)

	return m.send(ctx, email, firstName, subject, text, html)
}

func (m *SendGridMailer) send(
	ctx context.Context,
	toAddress, toName, subject, text, html string,
) error {
	from := mail.NewEmail(m.fromName, m.fromAddress)
	to := mail.NewEmail(toName, toAddress)
	message := mail.NewSingleEmail(from, subject, to, text, html)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf(
			"send email: sendgrid status %d: %s",
			resp.StatusCode,
			resp.Body,
		)
	}

	return nil
}

var _ Mailer = (*SendGridMailer)(nil)
