package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/saazhq/saaz/internal/saaz/domain"
	"github.com/saazhq/saaz/internal/saaz/store"
)

type eventsRepo struct {
	db dbtx
}

func (r *eventsRepo) CreateEvent(ctx context.Context, e domain.Event) (int64, error) {
	now := time.Now().UTC()
	res, err := exec(ctx, r.db, sq.Insert("events").
		Columns("title", "date", "location", "description", "price", "image",
			"creator_id", "created_at", "updated_at").
		Values(e.Title, e.Date.UTC(), e.Location, e.Description, e.Price, e.Image,
			e.CreatorID, now, now))
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *eventsRepo) GetEventByID(ctx context.Context, id int64) (domain.Event, error) {
	var e domain.Event
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, date, location, description, price, image, creator_id, created_at, updated_at
		 FROM events WHERE id = ?`, id).
		Scan(&e.ID, &e.Title, &e.Date, &e.Location, &e.Description, &e.Price, &e.Image,
			&e.CreatorID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Event{}, mapNotFound(err)
	}
	e.Date = e.Date.UTC()
	return e, nil
}

func (r *eventsRepo) ListEvents(ctx context.Context, f store.EventFilter) ([]domain.EventListing, error) {
	b := sq.Select(
		"e.id", "e.title", "e.date", "e.location", "e.description", "e.price", "e.image",
		"e.creator_id", "e.created_at", "e.updated_at",
		"u.name", "u.role", "ap.category", "vp.type",
	).
		From("events e").
		Join("users u ON u.id = e.creator_id").
		LeftJoin("artist_profiles ap ON ap.user_id = u.id").
		LeftJoin("venue_profiles vp ON vp.user_id = u.id").
		OrderBy("e.date ASC", "e.id ASC")

	if f.CreatorID > 0 {
		b = b.Where(sq.Eq{"e.creator_id": f.CreatorID})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"e.date": f.From.UTC()})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EventListing
	for rows.Next() {
		var (
			l        domain.EventListing
			role     string
			category sql.NullString
			kind     sql.NullString
		)
		e := &l.Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Date, &e.Location, &e.Description, &e.Price, &e.Image,
			&e.CreatorID, &e.CreatedAt, &e.UpdatedAt,
			&l.Creator.Name, &role, &category, &kind,
		); err != nil {
			return nil, err
		}
		e.Date = e.Date.UTC()
		l.Creator.ID = e.CreatorID
		l.Creator.Role = domain.Role(role)
		l.Creator.Category = mapNullString(category)
		l.Creator.Type = mapNullString(kind)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *eventsRepo) UpdateEvent(ctx context.Context, id int64, upd store.EventUpdate) error {
	b := sq.Update("events").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})

	if upd.Title != nil {
		b = b.Set("title", *upd.Title)
	}
	if upd.Date != nil {
		b = b.Set("date", upd.Date.UTC())
	}
	if upd.Location != nil {
		b = b.Set("location", *upd.Location)
	}
	if upd.Description != nil {
		b = b.Set("description", *upd.Description)
	}
	if upd.Price != nil {
		b = b.Set("price", *upd.Price)
	}
	if upd.Image != nil {
		b = b.Set("image", *upd.Image)
	}

	return requireAffected(exec(ctx, r.db, b))
}

func (r *eventsRepo) DeleteEvent(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return requireAffected(res, err)
}
