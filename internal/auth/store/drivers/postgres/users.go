package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/triadacafetera/triada/internal/auth/domain"
	"github.com/triadacafetera/triada/internal/auth/store"
)

const userColumns = `id, username, email, phone, full_name, password_hash, is_active, created_at, updated_at`

type usersRepo struct {
	q querier
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.FullName, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	row := r.q.QueryRow(ctx,
		`INSERT INTO users (username, email, phone, full_name, password_hash, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.Phone, u.FullName, u.PasswordHash, u.Active,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, mapConflict(err)
	}
	return u, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
}

func (r *usersRepo) UpdateActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) error {
	var (
		sets []string
		args []any
	)
	if patch.FullName != nil {
		args = append(args, *patch.FullName)
		sets = append(sets, fmt.Sprintf("full_name = $%d", len(args)))
	}
	if patch.Phone != nil {
		// An empty phone clears the column.
		var phone any
		if *patch.Phone != "" {
			phone = *patch.Phone
		}
		args = append(args, phone)
		sets = append(sets, fmt.Sprintf("phone = $%d", len(args)))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	return r.exec(ctx, query, args...)
}

func (r *usersRepo) CountUsers(ctx context.Context) (domain.UserCounts, error) {
	var c domain.UserCounts
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM users`,
	).Scan(&c.Total, &c.Active)
	return c, err
}

func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return mapConflict(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
