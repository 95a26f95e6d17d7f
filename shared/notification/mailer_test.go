package notification

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *captureSender) Send(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *captureSender) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

func TestMailerDeliversQueuedMessages(t *testing.T) {
	sender := &captureSender{}
	mailer := NewMailer(sender)

	mailer.SendInvitation("new@example.com", "New", "Acme", "Temp1234!")
	mailer.SendAccountReactivated("back@example.com", "Back")

	// Close drains the queue before returning
	mailer.Close()

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "new@example.com", msgs[0].To)
	assert.Contains(t, msgs[0].Body, "Temp1234!")
	assert.Contains(t, msgs[0].Body, "change it on first login")
	assert.Equal(t, "back@example.com", msgs[1].To)
}

func TestMailerSendFailureDoesNotPropagate(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	mailer := NewMailer(sender)

	// Enqueue never blocks or panics when delivery fails
	mailer.SendOrgAdminApproval("founder@example.com", "Fay", "Acme")
	mailer.Close()

	assert.Empty(t, sender.messages())
}

func TestMailerCloseIsIdempotent(t *testing.T) {
	mailer := NewMailer(&captureSender{})
	mailer.Close()
	mailer.Close()
}
