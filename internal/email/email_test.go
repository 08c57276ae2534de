package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	return &ses.SendEmailOutput{}, f.err
}

func TestResetURLEscapesToken(t *testing.T) {
	assert.Equal(t, "https://murmur.test/reset-password?token=a%2Bb", ResetURL("https://murmur.test", "a+b"))
}

func TestRenderPasswordReset(t *testing.T) {
	msg, err := RenderPasswordReset("https://murmur.test/reset-password?token=abc")
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "https://murmur.test/reset-password?token=abc")
	assert.Contains(t, msg.Text, ResetLinkTTLText)
	assert.Contains(t, msg.HTML, "reset-password?token=abc")
}

func TestSESSenderBuildsMessage(t *testing.T) {
	client := &fakeSES{}
	sender := newSESSender(client, "noreply@murmur.test", "Murmur", "https://murmur.test")

	require.NoError(t, sender.SendPasswordResetEmail(context.Background(), "alice@example.com", "tok"))
	require.NotNil(t, client.input)
	assert.Equal(t, "Murmur <noreply@murmur.test>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"alice@example.com"}, client.input.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(client.input.Message.Body.Text.Data), "token=tok")
}

func TestSESSenderWrapsFailure(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	sender := newSESSender(client, "noreply@murmur.test", "", "https://murmur.test")

	err := sender.SendPasswordResetEmail(context.Background(), "alice@example.com", "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.Equal(t, "noreply@murmur.test", aws.ToString(client.input.Source))
}

func TestLogSenderNeverFails(t *testing.T) {
	assert.NoError(t, NewLogSender("https://murmur.test").SendPasswordResetEmail(context.Background(), "a@b.c", "tok"))
}
