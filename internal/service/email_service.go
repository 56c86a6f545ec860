package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"pottytracker/internal/config"
	"pottytracker/internal/logging"
)

// sesAPI is the subset of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends partner invitations via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewEmailService creates an email service. A disabled config yields a
// service that logs and skips every send.
func NewEmailService(ctx context.Context, cfg config.EmailConfig, logger *zap.Logger) (*EmailService, error) {
	logger = logging.OrNop(logger)
	if !cfg.Enabled || cfg.FromAddress == "" {
		logger.Info("email service disabled")
		return &EmailService{enabled: false, logger: logger}, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled",
		zap.String("from", cfg.FromAddress),
		zap.String("region", awsCfg.Region),
	)
	return newEmailService(sesv2.NewFromConfig(awsCfg), cfg, logger), nil
}

func newEmailService(client sesAPI, cfg config.EmailConfig, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  cfg.FromAddress,
		fromName:   cfg.FromName,
		appBaseURL: cfg.AppURL,
		enabled:    true,
		logger:     logging.OrNop(logger),
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendPartnerInvite mails an invite token to a partner
func (s *EmailService) SendPartnerInvite(ctx context.Context, toEmail, toName, inviterName, token string) error {
	if !s.enabled {
		s.logger.Info("skipping partner invite email (service disabled)", zap.String("to", toEmail))
		return nil
	}

	if toName == "" {
		toName = "there"
	}
	signupLink := fmt.Sprintf("%s/signup?token=%s", s.appBaseURL, token)

	subject := fmt.Sprintf("%s invited you to Potty Tracker", inviterName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi %s,</p>
	<p>%s would like you to help track potty time together.</p>
	<p>Sign up with this invite code to join their family:</p>
	<p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</p>
	<p><a href="%s">Create your account</a></p>
	<p style="font-size: 12px; color: #666;">This is an automated email from Potty Tracker. Please do not reply.</p>
</body>
</html>
`, html.EscapeString(toName), html.EscapeString(inviterName), token, signupLink)

	textBody := fmt.Sprintf(`Hi %s,

%s would like you to help track potty time together.

Sign up with this invite code to join their family: %s

Create your account: %s

---
This is an automated email from Potty Tracker. Please do not reply.
`, toName, inviterName, token, signupLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result != nil && result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.logger.Info("email sent", fields...)
	return nil
}
