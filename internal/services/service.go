package services

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"Bazaarly/internal/config"
)

// Mailer sends one HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type EmailService struct {
	Client *resend.Client
	From   string
}

// NewEmailService returns nil when no API key is configured, which turns
// email copies off.
func NewEmailService(cfg config.EmailConfig) *EmailService {
	if cfg.ResendAPIKey == "" {
		zap.L().Warn("RESEND_API_KEY is empty, notification emails disabled")
		return nil
	}

	zap.L().Info("Email service initialized (Resend)",
		zap.String("from", cfg.From),
		zap.String("api_key", maskAPIKey(cfg.ResendAPIKey)))

	return &EmailService{
		Client: resend.NewClient(cfg.ResendAPIKey),
		From:   cfg.From,
	}
}

func maskAPIKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

const emailTemplate = `<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h2>%s</h2>
        %s
        <div class="footer">
            <p>This is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>`

func (es *EmailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    es.From,
		To:      []string{to},
		Subject: subject,
		Html:    fmt.Sprintf(emailTemplate, subject, htmlBody),
	}

	sent, err := es.Client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	zap.L().Debug("Email sent", zap.String("to", to), zap.String("id", sent.Id))
	return nil
}
