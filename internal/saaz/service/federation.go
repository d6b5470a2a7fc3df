package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saazhq/saaz/internal/saaz/domain"
	"github.com/saazhq/saaz/internal/saaz/federation"
	"github.com/saazhq/saaz/internal/saaz/metrics"
	"github.com/saazhq/saaz/internal/saaz/store"
	"github.com/saazhq/saaz/pkg/idx"
	"github.com/saazhq/saaz/pkg/slogx"
)

// DefaultPendingTTL is how long verified claims wait for a role choice.
const DefaultPendingTTL = 10 * time.Minute

// maxCreateAttempts bounds retries when a synthesized username loses a race.
const maxCreateAttempts = 3

// FederatedInput is one federated sign-in attempt. Exactly one of
// Credential or PendingID identifies the caller; Role is needed only when
// no account exists yet.
type FederatedInput struct {
	Credential string
	PendingID  string
	Role       string
}

// FederationService resolves verified external identities to accounts.
type FederationService struct {
	Store      store.Store
	Verifier   federation.Verifier
	Issuer     TokenIssuer
	PendingTTL time.Duration
	Now        func() time.Time
}

func (s *FederationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Login verifies the assertion (or loads cached claims by pending id),
// then signs in an existing account, links it on first federated use, or
// creates a new one. Without a role for a new identity it records a
// pending federation and returns *RoleRequiredError.
func (s *FederationService) Login(ctx context.Context, in FederatedInput) (sess Session, err error) {
	defer func(start time.Time) { metrics.ObserveAuth(metrics.FlowFederated, start, err) }(time.Now())
	log := slogx.FromContext(ctx)

	// 1. Establish the verified identity.
	ident, err := s.resolveIdentity(ctx, in)
	if err != nil {
		return Session{}, err
	}
	email := domain.NormalizeEmail(ident.Email)
	if email == "" {
		return Session{}, ErrInvalidAssertion
	}

	// 2. Existing account.
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return s.signInExisting(ctx, u, ident)
	case !errors.Is(err, store.ErrNotFound):
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	// 3. New identity without a role: park the claims.
	if in.Role == "" {
		return Session{}, s.awaitRole(ctx, ident, email)
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return Session{}, ErrInvalidRequest
	}

	// 4. Create the account.
	for attempt := 1; ; attempt++ {
		acct, err := s.createAccount(ctx, ident, email, role)
		if err == nil {
			log.Info("user registered via federation",
				slog.Int64("user_id", acct.User.ID),
				slog.String("role", role.String()),
			)
			token, err := s.Issuer.Issue(acct.User.ID, role.String())
			if err != nil {
				return Session{}, fmt.Errorf("issue token: %w", err)
			}
			return Session{Token: token, Account: acct}, nil
		}

		switch {
		case errors.Is(err, store.ErrEmailTaken):
			// A concurrent request created the account first.
			u, err := s.Store.Users().GetUserByEmail(ctx, email)
			if err != nil {
				return Session{}, fmt.Errorf("lookup user: %w", err)
			}
			return s.signInExisting(ctx, u, ident)
		case errors.Is(err, store.ErrUsernameTaken) && attempt < maxCreateAttempts:
			continue
		}
		log.Error("failed to create federated user", slog.Any("error", err))
		return Session{}, fmt.Errorf("create user: %w", err)
	}
}

func (s *FederationService) resolveIdentity(ctx context.Context, in FederatedInput) (federation.Identity, error) {
	if in.Credential != "" {
		ident, err := s.Verifier.Verify(ctx, in.Credential)
		if err != nil {
			slogx.FromContext(ctx).Warn("federated assertion rejected", slog.Any("error", err))
			return federation.Identity{}, ErrInvalidAssertion
		}
		return ident, nil
	}

	if in.PendingID == "" {
		return federation.Identity{}, ErrInvalidAssertion
	}
	id, err := idx.Parse(in.PendingID)
	if err != nil {
		return federation.Identity{}, ErrPendingExpired
	}
	p, err := s.Store.PendingFederations().GetPendingFederation(ctx, id.String(), s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return federation.Identity{}, ErrPendingExpired
		}
		return federation.Identity{}, fmt.Errorf("load pending federation: %w", err)
	}
	return federation.Identity{
		Subject: p.Subject,
		Email:   p.Email,
		Name:    p.Name,
		Picture: p.Picture,
	}, nil
}

func (s *FederationService) awaitRole(ctx context.Context, ident federation.Identity, email string) error {
	ttl := s.PendingTTL
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	now := s.now()

	p, err := s.Store.PendingFederations().SavePendingFederation(context.WithoutCancel(ctx), domain.PendingFederation{
		ID:        idx.NewAt(now).String(),
		Subject:   ident.Subject,
		Email:     email,
		Name:      ident.Name,
		Picture:   ident.Picture,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("save pending federation: %w", err)
	}

	slogx.FromContext(ctx).Info("federated sign-in awaiting role", slog.String("pending_id", p.ID))
	return &RoleRequiredError{PendingID: p.ID}
}

func (s *FederationService) createAccount(
	ctx context.Context,
	ident federation.Identity,
	email string,
	role domain.Role,
) (domain.Account, error) {
	wctx := context.WithoutCancel(ctx)
	var acct domain.Account

	err := s.Store.WithTx(wctx, func(tx store.Tx) error {
		name := ident.Name
		if name == "" {
			name = "User"
		}
		username, err := synthesizeUsername(wctx, tx.Users(), name)
		if err != nil {
			return err
		}

		u := domain.User{
			Email:    email,
			Username: username,
			Name:     domain.OrDefault(ident.Name, "USER"),
			Role:     role,
			GoogleID: ident.Subject,
			Image:    ident.Picture,
		}
		id, err := tx.Users().CreateUser(wctx, u)
		if err != nil {
			return err
		}
		u.ID = id
		acct = domain.Account{User: u}

		switch role {
		case domain.RoleArtist:
			p := domain.ArtistProfile{
				UserID:   id,
				Category: domain.DefaultCategory,
				Location: domain.DefaultLocation,
				Image:    ident.Picture,
			}
			if err := tx.Profiles().UpsertArtistProfile(wctx, p); err != nil {
				return err
			}
			acct.Artist = &p
		case domain.RoleVenue:
			p := domain.VenueProfile{
				UserID:   id,
				Type:     domain.DefaultCategory,
				Location: domain.DefaultLocation,
				Image:    ident.Picture,
			}
			if err := tx.Profiles().UpsertVenueProfile(wctx, p); err != nil {
				return err
			}
			acct.Venue = &p
		}

		return tx.PendingFederations().DeletePendingFederationBySubject(wctx, ident.Subject)
	})
	return acct, err
}

func (s *FederationService) signInExisting(ctx context.Context, u domain.User, ident federation.Identity) (Session, error) {
	log := slogx.FromContext(ctx)
	wctx := context.WithoutCancel(ctx)

	// Link once; an existing google id is never overwritten.
	if u.GoogleID == "" {
		err := s.Store.Users().LinkGoogleID(wctx, u.ID, ident.Subject)
		switch {
		case err == nil:
			u.GoogleID = ident.Subject
			log.Info("linked federated identity", slog.Int64("user_id", u.ID))
		case errors.Is(err, store.ErrNotFound):
			// Linked concurrently.
		default:
			return Session{}, fmt.Errorf("link google id: %w", err)
		}
	}

	if err := s.Store.PendingFederations().DeletePendingFederationBySubject(wctx, ident.Subject); err != nil {
		log.Warn("failed to clear pending federation", slog.Any("error", err))
	}

	return issueSession(ctx, s.Store, s.Issuer, u)
}
