package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/triadacafetera/triada/internal/auth/domain"
	"github.com/triadacafetera/triada/internal/auth/store"
)

const userColumns = `id, username, email, phone, full_name, password_hash, is_active, created_at, updated_at`

type usersRepo struct {
	q querier
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u     domain.User
		phone sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &phone, &u.FullName, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Phone = mapNullStringPtr(phone)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO users (username, email, phone, full_name, password_hash, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, mapOptionalString(u.Phone), u.FullName, u.PasswordHash, u.Active, now, now,
	)
	if err != nil {
		return domain.User{}, mapConflict(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUserByID(ctx, id)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, time.Now().UTC(), id)
}

func (r *usersRepo) UpdateActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`, active, time.Now().UTC(), id)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if patch.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *patch.FullName)
	}
	if patch.Phone != nil {
		// An empty phone clears the column.
		sets = append(sets, "phone = ?")
		args = append(args, sql.NullString{String: *patch.Phone, Valid: *patch.Phone != ""})
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	return r.exec(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
}

func (r *usersRepo) CountUsers(ctx context.Context) (domain.UserCounts, error) {
	var c domain.UserCounts
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) FROM users`,
	).Scan(&c.Total, &c.Active)
	return c, err
}

// exec runs an UPDATE and reports ErrNotFound when no row matched.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapConflict(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
