package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/saazhq/saaz/internal/saaz/domain"
	"github.com/saazhq/saaz/internal/saaz/metrics"
	"github.com/saazhq/saaz/internal/saaz/store"
	"github.com/saazhq/saaz/pkg/cryptox"
	"github.com/saazhq/saaz/pkg/slogx"
)

// PasswordHasher is satisfied by cryptox.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// TokenIssuer is satisfied by *jwtx.Issuer.
type TokenIssuer interface {
	Issue(userID int64, role string) (string, error)
}

// Session is the outcome of every successful sign-in flow.
type Session struct {
	Token   string
	Account domain.Account
}

// RegisterInput carries a password registration. Profile fields apply to
// ARTIST and VENUE roles only.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Username string
	Role     string

	Category   string
	Location   string
	Bio        string
	Price      string
	Type       string
	Capacity   *int
	LookingFor string
	Image      string
}

// IdentityService owns password registration, login and username checks.
type IdentityService struct {
	Store  store.Store
	Hasher PasswordHasher
	Issuer TokenIssuer
}

// Register creates a password account and its role profile, then signs
// the user in.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (sess Session, err error) {
	defer func(start time.Time) { metrics.ObserveAuth(metrics.FlowRegister, start, err) }(time.Now())
	log := slogx.FromContext(ctx)

	role, ok := domain.ParseRole(in.Role)
	email := domain.NormalizeEmail(in.Email)
	name := domain.NormalizeUpper(in.Name)
	if !ok || email == "" || in.Password == "" || name == "" {
		return Session{}, ErrInvalidRequest
	}

	users := s.Store.Users()

	// 1. Friendly duplicate check; the unique index is authoritative.
	exists, err := users.EmailExists(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return Session{}, ErrDuplicateEmail
	}

	// 2. Resolve the username.
	username := domain.NormalizeUpper(in.Username)
	if username != "" {
		taken, err := users.UsernameExists(ctx, username)
		if err != nil {
			return Session{}, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return Session{}, ErrDuplicateUsername
		}
	} else {
		username, err = synthesizeUsername(ctx, users, in.Name)
		if err != nil {
			return Session{}, err
		}
	}

	// 3. Hash.
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return Session{}, ErrInvalidRequest
		}
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		Email:        email,
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	}
	if role.HasProfile() {
		u.Image = in.Image
		u.Location = domain.NormalizeUpper(in.Location)
	}

	// 4. User and profile land together or not at all.
	acct := domain.Account{User: u}
	wctx := context.WithoutCancel(ctx)
	err = s.Store.WithTx(wctx, func(tx store.Tx) error {
		id, err := tx.Users().CreateUser(wctx, u)
		if err != nil {
			return err
		}
		acct.User.ID = id

		switch role {
		case domain.RoleArtist:
			p := domain.ArtistProfile{
				UserID:   id,
				Category: domain.OrDefault(in.Category, domain.DefaultCategory),
				Location: domain.OrDefault(in.Location, domain.DefaultLocation),
				Bio:      in.Bio,
				Price:    domain.NormalizeUpper(in.Price),
				Image:    in.Image,
			}
			acct.Artist = &p
			return tx.Profiles().UpsertArtistProfile(wctx, p)
		case domain.RoleVenue:
			p := domain.VenueProfile{
				UserID:     id,
				Type:       domain.OrDefault(in.Type, domain.DefaultCategory),
				Location:   domain.OrDefault(in.Location, domain.DefaultLocation),
				Capacity:   in.Capacity,
				LookingFor: in.LookingFor,
				Image:      in.Image,
			}
			acct.Venue = &p
			return tx.Profiles().UpsertVenueProfile(wctx, p)
		}
		return nil
	})
	if err != nil {
		// 5. Lost a race with a concurrent registration.
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			return Session{}, ErrDuplicateEmail
		case errors.Is(err, store.ErrUsernameTaken):
			return Session{}, ErrDuplicateUsername
		}
		log.Error("failed to create user", slog.Any("error", err))
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	// 6. Sign in.
	token, err := s.Issuer.Issue(acct.User.ID, role.String())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}

	log.Info("user registered",
		slog.Int64("user_id", acct.User.ID),
		slog.String("role", role.String()),
	)
	return Session{Token: token, Account: acct}, nil
}

// Login authenticates by email when the identifier contains "@", by
// username otherwise. Every failure mode returns ErrInvalidCredentials.
func (s *IdentityService) Login(ctx context.Context, identifier, password string) (sess Session, err error) {
	defer func(start time.Time) { metrics.ObserveAuth(metrics.FlowLogin, start, err) }(time.Now())

	var u domain.User
	if strings.Contains(identifier, "@") {
		u, err = s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(identifier))
	} else {
		u, err = s.Store.Users().GetUserByUsername(ctx, domain.NormalizeUpper(identifier))
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	if !u.HasPassword() {
		return Session{}, ErrInvalidCredentials
	}
	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("verify password: %w", err)
	}

	return issueSession(ctx, s.Store, s.Issuer, u)
}

// loadAccount attaches whichever role profiles exist for u.
func loadAccount(ctx context.Context, st store.Store, u domain.User) (domain.Account, error) {
	acct := domain.Account{User: u}

	artist, err := st.Profiles().GetArtistProfile(ctx, u.ID)
	switch {
	case err == nil:
		acct.Artist = &artist
	case !errors.Is(err, store.ErrNotFound):
		return domain.Account{}, fmt.Errorf("load artist profile: %w", err)
	}

	venue, err := st.Profiles().GetVenueProfile(ctx, u.ID)
	switch {
	case err == nil:
		acct.Venue = &venue
	case !errors.Is(err, store.ErrNotFound):
		return domain.Account{}, fmt.Errorf("load venue profile: %w", err)
	}

	return acct, nil
}

func issueSession(ctx context.Context, st store.Store, issuer TokenIssuer, u domain.User) (Session, error) {
	acct, err := loadAccount(ctx, st, u)
	if err != nil {
		return Session{}, err
	}
	token, err := issuer.Issue(u.ID, u.Role.String())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, Account: acct}, nil
}
