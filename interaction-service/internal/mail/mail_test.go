package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
)

func TestNewSenderModes(t *testing.T) {
	s, err := NewSender(Config{Mode: "log"})
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)

	s, err = NewSender(Config{Mode: "smtp", Host: "localhost", Port: 2525})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	_, err = NewSender(Config{Mode: "pigeon"})
	assert.Error(t, err)

	_, err = NewSender(Config{Mode: "smtp"})
	assert.Error(t, err, "smtp without a host")
}

func TestNewMessage(t *testing.T) {
	msg, err := newMessage("noreply@example.com", "bob@example.com", "Post notification", "<p>hi</p>")
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@example.com"}, rcpts)
	assert.Equal(t, []string{"Post notification"}, msg.GetGenHeader(gomail.HeaderSubject))

	_, err = newMessage("noreply@example.com", "not an address", "s", "b")
	assert.Error(t, err)
}

func TestSMTPSendFailureIsDeliveryError(t *testing.T) {
	s, err := NewSMTPSender(Config{Host: "127.0.0.1", Port: 1, From: "noreply@example.com", Timeout: time.Second})
	require.NoError(t, err)

	err = s.Send(context.Background(), "bob@example.com", "subject", "<p>x</p>")
	assert.ErrorIs(t, err, domain.ErrNotificationDelivery)
}

func TestLogSenderNeverFails(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), "bob@example.com", "s", "<p>x</p>"))
}
