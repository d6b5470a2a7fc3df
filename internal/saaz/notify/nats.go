package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/saazhq/saaz/pkg/slogx"
)

// DefaultSubject is the NATS subject outbound mail is published on.
const DefaultSubject = "saaz.mail.outbound"

// DefaultFlushTimeout bounds the wait for the server to acknowledge a
// publish.
const DefaultFlushTimeout = 5 * time.Second

// Envelope is the wire format consumed by the mail worker.
type Envelope struct {
	EventType string    `json:"event_type"`
	Message   Message   `json:"message"`
	QueuedAt  time.Time `json:"queued_at"`
}

// NATSMailer publishes messages to a NATS subject and flushes so a
// successful Send means the server accepted the message.
type NATSMailer struct {
	conn    *nats.Conn
	subject string

	// FlushTimeout caps each Send's flush; the caller's deadline applies
	// when it is sooner.
	FlushTimeout time.Duration
}

// NewNATSMailer connects to url. An empty subject uses DefaultSubject.
func NewNATSMailer(url, subject string) (*NATSMailer, error) {
	nc, err := nats.Connect(url,
		nats.Name("saaz-mailer"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSMailer{conn: nc, subject: subject, FlushTimeout: DefaultFlushTimeout}, nil
}

func (m *NATSMailer) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(Envelope{
		EventType: "mail.requested",
		Message:   msg,
		QueuedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	if err := m.conn.Publish(m.subject, payload); err != nil {
		return fmt.Errorf("%w: publish: %v", ErrDispatch, err)
	}
	timeout := m.FlushTimeout
	if timeout <= 0 {
		timeout = DefaultFlushTimeout
	}
	// FlushWithContext rejects contexts without a deadline.
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := m.conn.FlushWithContext(fctx); err != nil {
		return fmt.Errorf("%w: flush: %v", ErrDispatch, err)
	}

	slogx.FromContext(ctx).Debug("mail published",
		slog.String("subject", m.subject),
		slog.String("to", msg.To),
	)
	return nil
}

// Close drains the connection.
func (m *NATSMailer) Close() error {
	return m.conn.Drain()
}
