package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/saazhq/saaz/internal/saaz/domain"
	"github.com/saazhq/saaz/internal/saaz/metrics"
	"github.com/saazhq/saaz/internal/saaz/notify"
	"github.com/saazhq/saaz/internal/saaz/store"
	"github.com/saazhq/saaz/pkg/cryptox"
	"github.com/saazhq/saaz/pkg/slogx"
)

const (
	// DefaultResetTTL is the lifetime of a password reset ticket.
	DefaultResetTTL = time.Hour

	// DefaultResetURLBase is the page that consumes the reset token.
	DefaultResetURLBase = "http://localhost:3000/reset-password"

	resetSubject = "Password Reset Request"
)

const resetBodyFormat = `You are receiving this email because you (or someone else) have requested the reset of the password for your account.

Please click on the following link, or paste this into your browser to complete the process:

%s

If you did not request this, please ignore this email and your password will remain unchanged.
`

// ResetService issues and redeems password reset tickets.
type ResetService struct {
	Store        store.Store
	Hasher       PasswordHasher
	Mailer       notify.Mailer
	ResetURLBase string
	TTL          time.Duration
	Now          func() time.Time
}

func (s *ResetService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ResetLink builds the link mailed to the user.
func (s *ResetService) ResetLink(token string) string {
	base := s.ResetURLBase
	if base == "" {
		base = DefaultResetURLBase
	}
	return base + "?token=" + url.QueryEscape(token)
}

// ForgotPassword stores a fresh ticket on the account, replacing any
// earlier one, and mails the reset link.
func (s *ResetService) ForgotPassword(ctx context.Context, email string) (err error) {
	defer func(start time.Time) { metrics.ObserveAuth(metrics.FlowForgotPassword, start, err) }(time.Now())
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := cryptox.GenerateHexToken(cryptox.ResetTokenSize)
	if err != nil {
		return err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}

	wctx := context.WithoutCancel(ctx)
	if err := s.Store.Users().SetResetToken(wctx, u.ID, token, s.now().Add(ttl)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	msg := notify.Message{
		To:      u.Email,
		Subject: resetSubject,
		Body:    fmt.Sprintf(resetBodyFormat, s.ResetLink(token)),
	}
	if err := s.Mailer.Send(wctx, msg); err != nil {
		log.Error("failed to dispatch reset mail",
			slog.Int64("user_id", u.ID),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %w", ErrMailDispatch, err)
	}

	log.Info("password reset requested", slog.Int64("user_id", u.ID))
	return nil
}

// ResetPassword redeems an unexpired ticket, sets the new password and
// clears the ticket.
func (s *ResetService) ResetPassword(ctx context.Context, token, password string) (err error) {
	defer func(start time.Time) { metrics.ObserveAuth(metrics.FlowResetPassword, start, err) }(time.Now())

	if token == "" {
		return ErrInvalidOrExpiredToken
	}
	if password == "" {
		return ErrInvalidRequest
	}

	now := s.now()
	u, err := s.Store.Users().GetUserByResetToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return ErrInvalidRequest
		}
		return fmt.Errorf("hash password: %w", err)
	}

	// The lookup above is advisory; the conditional write decides which of
	// several concurrent redemptions wins.
	err = s.Store.Users().RedeemResetToken(context.WithoutCancel(ctx), u.ID, token, hash, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("update password: %w", err)
	}

	slogx.FromContext(ctx).Info("password reset completed", slog.Int64("user_id", u.ID))
	return nil
}
