package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"santaswishlist/internal/models"
)

// sesClient is the part of the SES API used for sending
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesClient
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewEmailService creates a new email service. With no sender address the
// service is created disabled and every send is a no-op.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*EmailService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled",
		zap.String("from", fromEmail),
		zap.String("region", awsRegion))

	return newEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, logger), nil
}

func newEmailServiceWithClient(client sesClient, fromEmail, fromName, appBaseURL string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		enabled:    true,
		logger:     logger,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s != nil && s.enabled
}

const emailLayout = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #c0392b; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #fdf6ec; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #27ae60; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>%s</h1></div>
		<div class="content">%s</div>
		<div class="footer"><p>This is an automated email from Santa's Wishlist. Please do not reply.</p></div>
	</div>
</body>
</html>
`

// SendWelcomeEmail sends a welcome email to new users
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	if !s.IsEnabled() {
		return nil
	}

	subject := "Welcome to Santa's Wishlist!"
	name := html.EscapeString(username)
	content := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Your wishlist is ready. Santa's elves start reading as soon as you write your first wish.</p>
			<ul>
				<li>Add wishes for toys, books, electronics, clothes and more</li>
				<li>Watch your nice score grow as wishes get approved</li>
				<li>Unlock achievements along the way</li>
			</ul>
			<p style="text-align: center;"><a href="%s/dashboard" class="button">Start wishing</a></p>`,
		name, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your wishlist is ready. Santa's elves start reading as soon as you write your first wish.

- Add wishes for toys, books, electronics, clothes and more
- Watch your nice score grow as wishes get approved
- Unlock achievements along the way

Start wishing: %s/dashboard
`, username, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, fmt.Sprintf(emailLayout, subject, content), textBody)
}

// SendAchievementEmail tells a user which achievements they just unlocked
func (s *EmailService) SendAchievementEmail(ctx context.Context, toEmail, username string, unlocked []models.Achievement) error {
	if !s.IsEnabled() || len(unlocked) == 0 {
		return nil
	}

	subject := fmt.Sprintf("%s You unlocked %s!", unlocked[0].Icon, unlocked[0].Title)
	if len(unlocked) > 1 {
		subject = fmt.Sprintf("You unlocked %d achievements!", len(unlocked))
	}

	var items, lines strings.Builder
	for _, a := range unlocked {
		fmt.Fprintf(&items, "<li>%s <strong>%s</strong>: %s</li>", a.Icon, html.EscapeString(a.Title), html.EscapeString(a.Description))
		fmt.Fprintf(&lines, "- %s %s: %s\n", a.Icon, a.Title, a.Description)
	}

	content := fmt.Sprintf(`
			<p>Ho ho ho, %s!</p>
			<p>You just earned:</p>
			<ul>%s</ul>
			<p style="text-align: center;"><a href="%s/dashboard" class="button">See your badges</a></p>`,
		html.EscapeString(username), items.String(), s.appBaseURL)

	textBody := fmt.Sprintf("Ho ho ho, %s!\n\nYou just earned:\n%s\nSee your badges: %s/dashboard\n",
		username, lines.String(), s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, fmt.Sprintf(emailLayout, html.EscapeString(subject), content), textBody)
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
