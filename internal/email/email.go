package email

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	texttemplate "text/template"

	"github.com/zfogg/murmur/internal/logger"
	"go.uber.org/zap"
)

// ResetLinkTTLText is shown in the reset mail; it matches the token expiry in auth
const ResetLinkTTLText = "1 hour"

// Sender delivers transactional mail
type Sender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error
}

// Message is a rendered email
type Message struct {
	Subject string
	HTML    string
	Text    string
}

var resetHTML = htmltemplate.Must(htmltemplate.New("reset_html").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.button { display: inline-block; padding: 12px 24px; background-color: #6b5bff; color: white; text-decoration: none; border-radius: 6px; margin: 20px 0; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Reset your password</h1>
		<p>Someone asked to reset the password for your Murmur account.</p>
		<p>The link below expires in {{.TTL}}.</p>
		<a href="{{.URL}}" class="button">Reset password</a>
		<p>Or paste this link into your browser:</p>
		<p style="word-break: break-all; color: #666;">{{.URL}}</p>
		<p>If you didn't ask for this, you can ignore this email.</p>
	</div>
</body>
</html>
`))

var resetText = texttemplate.Must(texttemplate.New("reset_text").Parse(`Reset your Murmur password

Someone asked to reset the password for your Murmur account.
The link below expires in {{.TTL}}.

{{.URL}}

If you didn't ask for this, you can ignore this email.
`))

// ResetURL builds the web link a reset token is delivered through
func ResetURL(siteURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", siteURL, url.QueryEscape(token))
}

// RenderPasswordReset renders the reset mail for the given link
func RenderPasswordReset(resetURL string) (*Message, error) {
	data := struct {
		URL string
		TTL string
	}{resetURL, ResetLinkTTLText}

	var html, text bytes.Buffer
	if err := resetHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render reset email: %w", err)
	}
	if err := resetText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render reset email: %w", err)
	}

	return &Message{
		Subject: "Reset your Murmur password",
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// LogSender writes reset links to the log instead of mailing them.
// Used in development and whenever SES is not configured.
type LogSender struct {
	siteURL string
}

// NewLogSender creates a LogSender
func NewLogSender(siteURL string) *LogSender {
	return &LogSender{siteURL: siteURL}
}

// SendPasswordResetEmail logs the reset link
func (s *LogSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error {
	logger.Log.Info("Password reset requested (email delivery disabled)",
		zap.String("to", toEmail),
		zap.String("reset_url", ResetURL(s.siteURL, resetToken)),
	)
	return nil
}

var (
	_ Sender = (*LogSender)(nil)
	_ Sender = (*SESSender)(nil)
)
