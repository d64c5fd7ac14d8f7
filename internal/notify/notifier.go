package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"agenthub/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Receipt struct {
	Status            string
	ProviderMessageID string
}

const (
	StatusSent   = "sent"
	StatusLogged = "logged"
)

type Notifier interface {
	Send(ctx context.Context, to, subject, body string) (Receipt, error)
}

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	id := uuid.NewString()
	n.log.Info("notification",
		zap.String("message_id", id),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return Receipt{Status: StatusLogged, ProviderMessageID: id}, nil
}

type SMTPNotifier struct {
	cfg config.Notifier
}

func NewSMTPNotifier(cfg config.Notifier) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) (Receipt, error) {
	addr := net.JoinHostPort(n.cfg.SMTPHost, strconv.Itoa(n.cfg.SMTPPort))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Receipt{}, fmt.Errorf("connect to smtp server: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.cfg.SMTPHost)
	if err != nil {
		return Receipt{}, fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: n.cfg.SMTPHost, MinVersion: tls.VersionTLS12}); err != nil {
			return Receipt{}, fmt.Errorf("starttls: %w", err)
		}
	}

	if n.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPassword, n.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return Receipt{}, fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(n.cfg.FromAddress); err != nil {
		return Receipt{}, fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return Receipt{}, fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return Receipt{}, fmt.Errorf("open data writer: %w", err)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), n.cfg.SMTPHost)
	if _, err := w.Write(buildMessage(n.cfg.FromAddress, to, subject, body, messageID, time.Now())); err != nil {
		return Receipt{}, fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return Receipt{}, fmt.Errorf("close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		return Receipt{}, fmt.Errorf("quit smtp session: %w", err)
	}

	return Receipt{Status: StatusSent, ProviderMessageID: messageID}, nil
}

func buildMessage(from, to, subject, body, messageID string, date time.Time) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&msg, "Date: %s\r\n", date.Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.Bytes()
}

// New picks the notifier named by cfg.Provider. Misconfigured providers fall back to the log.
func New(cfg config.Notifier, log *zap.Logger) Notifier {
	switch cfg.Provider {
	case "smtp":
		if cfg.SMTPHost != "" {
			return NewSMTPNotifier(cfg)
		}
	case "ses":
		n, err := NewSESNotifier(cfg)
		if err == nil {
			return n
		}
		log.Warn("ses notifier unavailable, logging notifications instead", zap.Error(err))
	}
	return NewLogNotifier(log)
}
