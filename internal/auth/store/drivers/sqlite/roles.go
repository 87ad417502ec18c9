package sqlite

import (
	"context"
	"time"

	"github.com/triadacafetera/triada/internal/auth/domain"
)

type rolesRepo struct {
	q querier
}

func (r *rolesRepo) AssignRole(ctx context.Context, userID int64, role domain.Role) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, role) DO NOTHING`,
		userID, string(role), time.Now().UTC(),
	)
	return err
}

func (r *rolesRepo) ListRoles(ctx context.Context, userID int64) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, domain.Role(role))
	}
	return roles, rows.Err()
}
