package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/zfogg/murmur/internal/telemetry"
)

// sesAPI is the part of the SES client the sender uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender sends mail through AWS SES
type SESSender struct {
	client    sesAPI
	fromEmail string
	fromName  string
	siteURL   string
}

// NewSESSender creates a sender using the default AWS credential chain
func NewSESSender(ctx context.Context, region, fromEmail, fromName, siteURL string) (*SESSender, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithHTTPClient(telemetry.NewInstrumentedHTTPClient(telemetry.HTTPClientConfig{
			ServiceName: "ses",
			Timeout:     15 * time.Second,
		})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSESSender(ses.NewFromConfig(cfg), fromEmail, fromName, siteURL), nil
}

func newSESSender(client sesAPI, fromEmail, fromName, siteURL string) *SESSender {
	return &SESSender{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		siteURL:   siteURL,
	}
}

// SendPasswordResetEmail mails the reset link for resetToken to toEmail
func (s *SESSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error {
	msg, err := RenderPasswordReset(ResetURL(s.siteURL, resetToken))
	if err != nil {
		return err
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(msg.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(msg.HTML),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(msg.Text),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
