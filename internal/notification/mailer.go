package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/Additional-Code/buyerdesk/internal/config"
)

// Message is an outbound HTML email. Bcc recipients never see each other.
type Message struct {
	From    string
	To      []string
	Bcc     []string
	Subject string
	HTML    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns the SMTP mailer, or a logging mailer when mail is disabled.
func NewMailer(cfg config.Config, logger *zap.Logger) Mailer {
	if !cfg.Mail.Enabled {
		logger.Info("mail disabled; notifications are logged only")
		return logMailer{logger: logger}
	}
	return newSMTPMailer(cfg.Mail, logger)
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpMailer struct {
	dialer  dialer
	breaker *gobreaker.CircuitBreaker
}

func newSMTPMailer(cfg config.Mail, logger *zap.Logger) *smtpMailer {
	return &smtpMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		breaker: newBreaker(cfg, logger),
	}
}

func newBreaker(cfg config.Mail, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To)+len(msg.Bcc) == 0 {
		return errors.New("message has no recipients")
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", msg.From)
	if len(msg.To) > 0 {
		gm.SetHeader("To", msg.To...)
	}
	if len(msg.Bcc) > 0 {
		gm.SetHeader("Bcc", msg.Bcc...)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, m.dialer.DialAndSend(gm)
	})
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

type logMailer struct {
	logger *zap.Logger
}

func (l logMailer) Send(_ context.Context, msg Message) error {
	l.logger.Info("mail suppressed",
		zap.String("subject", msg.Subject),
		zap.Int("recipients", len(msg.To)+len(msg.Bcc)),
	)
	return nil
}
