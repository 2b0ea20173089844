package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/deusflow/teledigest/internal/logger"
	"github.com/deusflow/teledigest/internal/retry"
)

const (
	DefaultHost        = "smtp.gmail.com"
	DefaultPort        = 587
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 5 * time.Second
)

// Message is one HTML mail with an optional plain-text alternative.
type Message struct {
	To        []string
	Subject   string
	HTML      string
	PlainText string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	MaxAttempts int
	RetryDelay  time.Duration
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender submits mail over SMTP with STARTTLS and PLAIN auth.
type SMTPSender struct {
	cfg  Config
	send sendFunc
	now  func() time.Time
}

func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.Username == "" {
		return nil, errors.New("GMAIL_USER is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("GMAIL_APP_PASSWORD is required")
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail, now: time.Now}, nil
}

// Send builds the MIME message and submits it, retrying transient
// failures. Authentication failures are not retried.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	to := cleanRecipients(msg.To)
	if len(to) == 0 {
		return errors.New("no recipients")
	}
	msg.To = to

	raw, err := BuildMessage(s.cfg.From, msg, s.now())
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	err = retry.WithRetry(ctx, retry.RetryConfig{MaxAttempts: s.cfg.MaxAttempts, Delay: s.cfg.RetryDelay},
		func(_ context.Context, attempt int) error {
			logger.Info("Sending email", "attempt", attempt, "recipients", len(to), "server", addr)
			err := s.send(addr, auth, s.cfg.From, to, raw)
			if err == nil {
				return nil
			}
			logger.Warn("Email send failed", "attempt", attempt, "error", err)
			if isAuthError(err) {
				return retry.Permanent(fmt.Errorf("SMTP authentication failed: %w", err))
			}
			return fmt.Errorf("SMTP error: %w", err)
		})
	if err != nil {
		return err
	}

	logger.Info("Email sent", "recipients", len(to), "subject", msg.Subject)
	return nil
}

// BuildMessage renders an RFC 5322 multipart/alternative message.
func BuildMessage(from string, msg Message, date time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if msg.PlainText != "" {
		if err := writePart(mw, "text/plain; charset=UTF-8", msg.PlainText); err != nil {
			return nil, err
		}
	}
	if err := writePart(mw, "text/html; charset=UTF-8", msg.HTML); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", from)
	fmt.Fprintf(&out, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", msg.Subject))
	fmt.Fprintf(&out, "Date: %s\r\n", date.Format(time.RFC1123Z))
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, content string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	pw, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	qp := quotedprintable.NewWriter(pw)
	if _, err := qp.Write([]byte(content)); err != nil {
		return fmt.Errorf("write part: %w", err)
	}
	return qp.Close()
}

// ParseRecipients splits a comma separated address list.
func ParseRecipients(s string) []string {
	return cleanRecipients(strings.Split(s, ","))
}

func cleanRecipients(in []string) []string {
	var out []string
	for _, addr := range in {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func isAuthError(err error) bool {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code == 534 || tpErr.Code == 535
	}
	return false
}
