package sqlite

import (
	"context"
	"time"

	"github.com/saazhq/saaz/internal/saaz/domain"
)

type federationsRepo struct {
	db dbtx
}

const federationColumns = `id, subject, email, name, picture, expires_at, created_at`

func scanFederation(row rowScanner) (domain.PendingFederation, error) {
	var p domain.PendingFederation
	if err := row.Scan(&p.ID, &p.Subject, &p.Email, &p.Name, &p.Picture, &p.ExpiresAt, &p.CreatedAt); err != nil {
		return domain.PendingFederation{}, mapNotFound(err)
	}
	p.ExpiresAt = p.ExpiresAt.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r *federationsRepo) SavePendingFederation(
	ctx context.Context,
	p domain.PendingFederation,
) (domain.PendingFederation, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_federations (id, subject, email, name, picture, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (subject) DO UPDATE SET
		   email      = excluded.email,
		   name       = excluded.name,
		   picture    = excluded.picture,
		   expires_at = excluded.expires_at`,
		p.ID, p.Subject, p.Email, p.Name, p.Picture, p.ExpiresAt.UTC(), time.Now().UTC())
	if err != nil {
		return domain.PendingFederation{}, mapConstraint(err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+federationColumns+` FROM pending_federations WHERE subject = ?`, p.Subject)
	return scanFederation(row)
}

func (r *federationsRepo) GetPendingFederation(
	ctx context.Context,
	id string,
	now time.Time,
) (domain.PendingFederation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+federationColumns+` FROM pending_federations WHERE id = ? AND expires_at > ?`,
		id, now.UTC())
	return scanFederation(row)
}

func (r *federationsRepo) DeletePendingFederationBySubject(ctx context.Context, subject string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_federations WHERE subject = ?`, subject)
	return err
}

func (r *federationsRepo) DeleteExpiredPendingFederations(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_federations WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
