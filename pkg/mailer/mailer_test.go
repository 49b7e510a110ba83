package mailer

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	from string
	to   []string
	body string
}

func TestSendComposesMessage(t *testing.T) {
	var got captured
	s := NewWithSendFunc(Config{
		Host: "smtp.test", Port: 587, User: "u", Password: "p",
		FromAddress: "noreply@eventhub.test", FromName: "EventHub",
	}, func(addr string, _ sasl.Client, from string, to []string, r io.Reader) error {
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		got = captured{addr: addr, from: from, to: to, body: string(b)}
		return nil
	}, nil)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }

	err := s.Send(Message{To: "ann@test", ToName: "Ann", Subject: "Hello\r\nBcc: x@test", Body: "line1\nline2"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.test:587", got.addr)
	assert.Equal(t, "noreply@eventhub.test", got.from)
	assert.Equal(t, []string{"ann@test"}, got.to)
	assert.Contains(t, got.body, "From: \"EventHub\" <noreply@eventhub.test>\r\n")
	assert.Contains(t, got.body, "To: \"Ann\" <ann@test>\r\n")
	assert.Contains(t, got.body, "Subject: Hello Bcc: x@test\r\n")
	assert.NotContains(t, got.body, "\r\nBcc:")
	assert.Contains(t, got.body, "\r\n\r\nline1\r\nline2")
}

func TestSendWrapsTransportError(t *testing.T) {
	s := NewWithSendFunc(Config{Host: "h", Port: 25, User: "u"}, func(string, sasl.Client, string, []string, io.Reader) error {
		return errors.New("421 busy")
	}, nil)
	err := s.Send(Message{To: "a@test"})
	assert.ErrorContains(t, err, "421 busy")
}

func TestSendRejectsEmptyRecipient(t *testing.T) {
	called := false
	s := NewWithSendFunc(Config{Host: "h", Port: 25, User: "u"}, func(string, sasl.Client, string, []string, io.Reader) error {
		called = true
		return nil
	}, nil)
	assert.Error(t, s.Send(Message{To: " "}))
	assert.False(t, called)
}

func TestNewFallsBackToLog(t *testing.T) {
	s := New(Config{}, nil)
	_, ok := s.(*Log)
	assert.True(t, ok)
	assert.NoError(t, s.Send(Message{To: "a@test"}))
}
