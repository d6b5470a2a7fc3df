package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/saazhq/saaz/internal/saaz/notify"
	"github.com/saazhq/saaz/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func startNATS(t *testing.T) string {
	t.Helper()

	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns.ClientURL()
}

func TestNATSMailer_Publishes(t *testing.T) {
	url := startNATS(t)

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("test.mail", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	mailer, err := notify.NewNATSMailer(url, "test.mail")
	require.NoError(t, err)
	defer mailer.Close()

	err = mailer.Send(context.Background(), notify.Message{
		To:      "jane@x.com",
		Subject: "Password Reset Request",
		Body:    "link",
	})
	require.NoError(t, err)

	select {
	case m := <-msgs:
		var env notify.Envelope
		require.NoError(t, json.Unmarshal(m.Data, &env))
		require.Equal(t, "mail.requested", env.EventType)
		require.Equal(t, "jane@x.com", env.Message.To)
		require.Equal(t, "Password Reset Request", env.Message.Subject)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestNATSMailer_ConnectFailure(t *testing.T) {
	_, err := notify.NewNATSMailer("nats://127.0.0.1:1", "")
	require.Error(t, err)
}

func TestBreakerMailer(t *testing.T) {
	boom := errors.New("smtp down")
	calls := 0
	failing := notify.MailerFunc(func(ctx context.Context, msg notify.Message) error {
		calls++
		return boom
	})

	b := notify.NewBreakerMailer(failing, notify.BreakerConfig{FailureThreshold: 2, Timeout: time.Minute}, slogx.Discard())
	ctx := context.Background()

	require.ErrorIs(t, b.Send(ctx, notify.Message{}), boom)
	require.ErrorIs(t, b.Send(ctx, notify.Message{}), boom)
	require.Equal(t, "open", b.State())

	err := b.Send(ctx, notify.Message{})
	require.ErrorIs(t, err, notify.ErrDispatch)
	require.Equal(t, 2, calls, "open breaker must not call through")
}

func TestBreakerMailer_Success(t *testing.T) {
	var got notify.Message
	ok := notify.MailerFunc(func(ctx context.Context, msg notify.Message) error {
		got = msg
		return nil
	})

	b := notify.NewBreakerMailer(ok, notify.BreakerConfig{}, nil)
	require.NoError(t, b.Send(context.Background(), notify.Message{To: "a@b.c"}))
	require.Equal(t, "a@b.c", got.To)
	require.Equal(t, "closed", b.State())
}

func TestNATSMailer_ContextWithoutDeadline(t *testing.T) {
	url := startNATS(t)

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("test.mail", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	mailer, err := notify.NewNATSMailer(url, "test.mail")
	require.NoError(t, err)
	defer mailer.Close()

	t.Run("detached context", func(t *testing.T) {
		// Writes run on a context detached from the request, which has no deadline.
		ctx := context.WithoutCancel(context.Background())
		require.NoError(t, mailer.Send(ctx, notify.Message{To: "jane@x.com", Subject: "s", Body: "b"}))

		select {
		case m := <-msgs:
			var env notify.Envelope
			require.NoError(t, json.Unmarshal(m.Data, &env))
			require.Equal(t, "jane@x.com", env.Message.To)
		case <-time.After(5 * time.Second):
			t.Fatal("no message received")
		}
	})
}

func TestLogMailer(t *testing.T) {
	const link = "https://saaz.test/reset-password?token=deadbeefcafe"
	msg := notify.Message{To: "x@y.z", Subject: "Password Reset Request", Body: "Reset here: " + link}

	capture := func(m notify.LogMailer) string {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		require.NoError(t, m.Send(slogx.WithContext(context.Background(), logger), msg))
		return buf.String()
	}

	t.Run("body withheld by default", func(t *testing.T) {
		out := capture(notify.LogMailer{})
		require.Contains(t, out, "x@y.z")
		require.Contains(t, out, `"body_bytes"`)
		require.NotContains(t, out, "deadbeefcafe")
	})

	t.Run("body on request", func(t *testing.T) {
		require.Contains(t, capture(notify.LogMailer{IncludeBody: true}), "deadbeefcafe")
	})
}
