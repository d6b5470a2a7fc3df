// Package notify dispatches outbound email. The service never talks SMTP
// itself; it hands a Message to a Mailer which publishes it for a mail
// worker (NATS) or just logs it in development.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/saazhq/saaz/pkg/slogx"
)

// ErrDispatch is returned when a message could not be handed off.
var ErrDispatch = errors.New("notify: dispatch failed")

// Message is a plain-text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer hands a message to the delivery pipeline.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, msg Message) error

func (f MailerFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// LogMailer records that a message was sent without delivering it. Used
// when no broker is configured. Bodies carry live reset links, so only the
// envelope is logged unless IncludeBody is set.
type LogMailer struct {
	// IncludeBody adds the body to a separate Debug record. Development only.
	IncludeBody bool
}

func (m LogMailer) Send(ctx context.Context, msg Message) error {
	log := slogx.FromContext(ctx)
	log.Info("mail dispatched to log",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Body)),
	)
	if m.IncludeBody {
		log.Debug("mail body", slog.String("to", msg.To), slog.String("body", msg.Body))
	}
	return nil
}
