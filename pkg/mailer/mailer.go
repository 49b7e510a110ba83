// Package mailer delivers plain-text email over SMTP.
package mailer

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(msg Message) error
}

// Config holds SMTP settings.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	TLS         bool
	FromAddress string
	FromName    string
}

// SendFunc matches smtp.SendMail and smtp.SendMailTLS.
type SendFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

// SMTP sends mail through an authenticated SMTP relay.
type SMTP struct {
	cfg    Config
	send   SendFunc
	logger *zap.Logger
	now    func() time.Time
}

// New returns an SMTP sender. When the relay is not configured it returns a
// Log sender that only records what would have been sent.
func New(cfg Config, logger *zap.Logger) Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" || cfg.User == "" {
		logger.Warn("smtp not configured, emails will only be logged")
		return NewLog(logger)
	}
	send := smtp.SendMail
	if cfg.TLS {
		send = smtp.SendMailTLS
	}
	return &SMTP{cfg: cfg, send: send, logger: logger, now: time.Now}
}

// NewWithSendFunc is New with the transport replaced.
func NewWithSendFunc(cfg Config, send SendFunc, logger *zap.Logger) *SMTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTP{cfg: cfg, send: send, logger: logger, now: time.Now}
}

// Send delivers msg.
func (s *SMTP) Send(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mailer: empty recipient")
	}
	auth := sasl.NewPlainClient("", s.cfg.User, s.cfg.Password)
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	body := strings.NewReader(s.compose(msg))
	if err := s.send(addr, auth, s.cfg.FromAddress, []string{msg.To}, body); err != nil {
		s.logger.Error("smtp send failed", zap.String("to", msg.To), zap.Error(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	s.logger.Info("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (s *SMTP) compose(msg Message) string {
	var b strings.Builder
	b.WriteString("From: " + address(s.cfg.FromName, s.cfg.FromAddress) + "\r\n")
	b.WriteString("To: " + address(msg.ToName, msg.To) + "\r\n")
	b.WriteString("Subject: " + headerValue(msg.Subject) + "\r\n")
	b.WriteString("Date: " + s.now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.String()
}

func address(name, addr string) string {
	name = headerValue(name)
	if name == "" {
		return "<" + addr + ">"
	}
	return fmt.Sprintf("%q <%s>", name, addr)
}

// headerValue strips line breaks so values cannot inject headers.
func headerValue(v string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(strings.TrimSpace(v))
}

// Log records messages instead of sending them.
type Log struct {
	logger *zap.Logger
}

// NewLog returns a Log sender.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

func (l *Log) Send(msg Message) error {
	l.logger.Info("email (not sent, smtp disabled)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
