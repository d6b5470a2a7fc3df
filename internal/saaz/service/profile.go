package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saazhq/saaz/internal/saaz/domain"
	"github.com/saazhq/saaz/internal/saaz/store"
	"github.com/saazhq/saaz/pkg/slogx"
)

// Profile is an account together with the events it created.
type Profile struct {
	Account domain.Account
	Events  []domain.Event
}

// ProfileUpdate carries the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Role     *string
	Image    *string
	Location *string

	Category   *string
	Bio        *string
	Price      *string
	Type       *string
	Capacity   *int
	LookingFor *string
}

type ProfileService struct {
	Store store.Store
}

// GetProfile loads the caller's account, role profiles and events.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, fmt.Errorf("get user: %w", err)
	}

	acct, err := loadAccount(ctx, s.Store, u)
	if err != nil {
		return Profile{}, err
	}

	listings, err := s.Store.Events().ListEvents(ctx, store.EventFilter{CreatorID: userID})
	if err != nil {
		return Profile{}, fmt.Errorf("list events: %w", err)
	}
	events := make([]domain.Event, 0, len(listings))
	for _, l := range listings {
		events = append(events, l.Event)
	}

	return Profile{Account: acct, Events: events}, nil
}

// UpdateProfile edits the user record, then creates or patches the profile
// matching the resulting role. Both writes share one transaction.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdate) error {
	upd := store.UserUpdate{Image: in.Image}
	if in.Name != nil {
		name := domain.NormalizeUpper(*in.Name)
		if name == "" {
			return ErrInvalidRequest
		}
		upd.Name = &name
	}
	if in.Role != nil {
		role, ok := domain.ParseRole(*in.Role)
		if !ok {
			return ErrInvalidRequest
		}
		upd.Role = &role
	}
	if in.Location != nil {
		loc := domain.NormalizeUpper(*in.Location)
		upd.Location = &loc
	}

	wctx := context.WithoutCancel(ctx)
	err := s.Store.WithTx(wctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUser(wctx, userID, upd); err != nil {
			return err
		}
		u, err := tx.Users().GetUserByID(wctx, userID)
		if err != nil {
			return err
		}

		switch u.Role {
		case domain.RoleArtist:
			p, err := tx.Profiles().GetArtistProfile(wctx, userID)
			if errors.Is(err, store.ErrNotFound) {
				p, err = domain.ArtistProfile{
					UserID:   userID,
					Category: domain.DefaultCategory,
					Location: domain.DefaultLocation,
				}, nil
			}
			if err != nil {
				return err
			}
			applyArtist(&p, in, upd.Location)
			return tx.Profiles().UpsertArtistProfile(wctx, p)

		case domain.RoleVenue:
			p, err := tx.Profiles().GetVenueProfile(wctx, userID)
			if errors.Is(err, store.ErrNotFound) {
				p, err = domain.VenueProfile{
					UserID:   userID,
					Type:     domain.DefaultCategory,
					Location: domain.DefaultLocation,
				}, nil
			}
			if err != nil {
				return err
			}
			applyVenue(&p, in, upd.Location)
			return tx.Profiles().UpsertVenueProfile(wctx, p)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update profile: %w", err)
	}

	slogx.FromContext(ctx).Info("profile updated", slog.Int64("user_id", userID))
	return nil
}

func applyArtist(p *domain.ArtistProfile, in ProfileUpdate, location *string) {
	if in.Category != nil {
		p.Category = domain.OrDefault(*in.Category, domain.DefaultCategory)
	}
	if location != nil && *location != "" {
		p.Location = *location
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.Price != nil {
		p.Price = domain.NormalizeUpper(*in.Price)
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
}

func applyVenue(p *domain.VenueProfile, in ProfileUpdate, location *string) {
	if in.Type != nil {
		p.Type = domain.OrDefault(*in.Type, domain.DefaultCategory)
	}
	if location != nil && *location != "" {
		p.Location = *location
	}
	if in.Capacity != nil {
		p.Capacity = in.Capacity
	}
	if in.LookingFor != nil {
		p.LookingFor = *in.LookingFor
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
}

// DeleteProfile removes the account; profiles and events cascade.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID int64) error {
	if err := s.Store.Users().DeleteUser(context.WithoutCancel(ctx), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	slogx.FromContext(ctx).Info("account deleted", slog.Int64("user_id", userID))
	return nil
}

// ListUsers returns public accounts, optionally narrowed to one role. An
// unknown role matches nobody.
func (s *ProfileService) ListUsers(ctx context.Context, role string) ([]domain.Account, error) {
	var f store.UserFilter
	if role != "" {
		r, ok := domain.ParseRole(role)
		if !ok {
			return []domain.Account{}, nil
		}
		f.Role = r
	}

	users, err := s.Store.Users().ListUsers(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.Account, 0, len(users))
	for _, u := range users {
		acct, err := loadAccount(ctx, s.Store, u)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, nil
}
