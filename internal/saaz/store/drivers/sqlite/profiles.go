package sqlite

import (
	"context"
	"database/sql"

	"github.com/saazhq/saaz/internal/saaz/domain"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) GetArtistProfile(ctx context.Context, userID int64) (domain.ArtistProfile, error) {
	var p domain.ArtistProfile
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, category, location, bio, price, image
		 FROM artist_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Category, &p.Location, &p.Bio, &p.Price, &p.Image)
	if err != nil {
		return domain.ArtistProfile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) GetVenueProfile(ctx context.Context, userID int64) (domain.VenueProfile, error) {
	var (
		p        domain.VenueProfile
		capacity sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, type, location, capacity, looking_for, image
		 FROM venue_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Type, &p.Location, &capacity, &p.LookingFor, &p.Image)
	if err != nil {
		return domain.VenueProfile{}, mapNotFound(err)
	}
	p.Capacity = mapNullIntPtr(capacity)
	return p, nil
}

func (r *profilesRepo) UpsertArtistProfile(ctx context.Context, p domain.ArtistProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO artist_profiles (user_id, category, location, bio, price, image)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   category = excluded.category,
		   location = excluded.location,
		   bio      = excluded.bio,
		   price    = excluded.price,
		   image    = excluded.image`,
		p.UserID, p.Category, p.Location, p.Bio, p.Price, p.Image)
	return mapConstraint(err)
}

func (r *profilesRepo) UpsertVenueProfile(ctx context.Context, p domain.VenueProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO venue_profiles (user_id, type, location, capacity, looking_for, image)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   type        = excluded.type,
		   location    = excluded.location,
		   capacity    = excluded.capacity,
		   looking_for = excluded.looking_for,
		   image       = excluded.image`,
		p.UserID, p.Type, p.Location, mapIntPtrNull(p.Capacity), p.LookingFor, p.Image)
	return mapConstraint(err)
}
