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

const userColumns = `id, email, username, name, password_hash, role, google_id,
	image, location, reset_token, reset_expires, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u            domain.User
		role         string
		passwordHash sql.NullString
		googleID     sql.NullString
		resetToken   sql.NullString
		resetExpires sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.Name, &passwordHash, &role, &googleID,
		&u.Image, &u.Location, &resetToken, &resetExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.PasswordHash = mapNullString(passwordHash)
	u.GoogleID = mapNullString(googleID)
	u.ResetToken = mapNullString(resetToken)
	u.ResetExpires = mapNullTimePtr(resetExpires)
	return u, nil
}

func (r *usersRepo) getBy(ctx context.Context, column string, value any) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)
	return scanUser(row)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *usersRepo) GetUserByResetToken(
	ctx context.Context,
	token string,
	now time.Time,
) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token = ? AND reset_expires > ?`,
		token, now.UTC())
	return scanUser(row)
}

func (r *usersRepo) exists(ctx context.Context, column, value string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE `+column+` = ? LIMIT 1`, value).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *usersRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *usersRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	now := time.Now().UTC()
	res, err := exec(ctx, r.db, sq.Insert("users").
		Columns("email", "username", "name", "password_hash", "role", "google_id",
			"image", "location", "created_at", "updated_at").
		Values(u.Email, u.Username, u.Name, mapStringNull(u.PasswordHash), string(u.Role),
			mapStringNull(u.GoogleID), u.Image, u.Location, now, now))
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *usersRepo) UpdateUser(ctx context.Context, id int64, upd store.UserUpdate) error {
	b := sq.Update("users").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})

	if upd.Name != nil {
		b = b.Set("name", *upd.Name)
	}
	if upd.Role != nil {
		b = b.Set("role", string(*upd.Role))
	}
	if upd.Image != nil {
		b = b.Set("image", *upd.Image)
	}
	if upd.Location != nil {
		b = b.Set("location", *upd.Location)
	}

	return requireAffected(exec(ctx, r.db, b))
}

func (r *usersRepo) LinkGoogleID(ctx context.Context, id int64, googleID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET google_id = ?, updated_at = ? WHERE id = ? AND google_id IS NULL`,
		googleID, time.Now().UTC(), id)
	return requireAffected(res, err)
}

func (r *usersRepo) SetResetToken(
	ctx context.Context,
	id int64,
	token string,
	expires time.Time,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_token = ?, reset_expires = ?, updated_at = ? WHERE id = ?`,
		token, expires.UTC(), time.Now().UTC(), id)
	return requireAffected(res, err)
}

func (r *usersRepo) RedeemResetToken(
	ctx context.Context,
	id int64,
	token, newHash string,
	now time.Time,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = ?, reset_token = NULL, reset_expires = NULL, updated_at = ?
		 WHERE id = ? AND reset_token = ? AND reset_expires > ?`,
		newHash, time.Now().UTC(), id, token, now.UTC())
	return requireAffected(res, err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return requireAffected(res, err)
}

func (r *usersRepo) ListUsers(ctx context.Context, f store.UserFilter) ([]domain.User, error) {
	b := sq.Select(userColumns).From("users").OrderBy("id ASC")
	if f.Role != "" {
		b = b.Where(sq.Eq{"role": string(f.Role)})
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
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

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_token = NULL, reset_expires = NULL
		 WHERE reset_token IS NOT NULL AND reset_expires <= ?`,
		now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
