package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"github.com/triadacafetera/triada/internal/auth/domain"
	"github.com/triadacafetera/triada/internal/auth/store"
	"github.com/triadacafetera/triada/internal/auth/store/drivers/postgres"
)

var userCols = []string{"id", "username", "email", "phone", "full_name", "password_hash", "is_active", "created_at", "updated_at"}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *postgres.Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock, postgres.New(mock, "")
}

func TestUsers_GetUserByUsername(t *testing.T) {
	now := time.Now().UTC()
	phone := "+34600000000"

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      domain.User
		wantErr   error
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1`).
					WithArgs("alice").
					WillReturnRows(pgxmock.NewRows(userCols).
						AddRow(int64(1), "alice", "alice@x.com", &phone, "Alice", "hash", true, now, now))
			},
			want: domain.User{ID: 1, Username: "alice", Email: "alice@x.com", Phone: &phone, FullName: "Alice", PasswordHash: "hash", Active: true, CreatedAt: now, UpdatedAt: now},
		},
		{
			name: "null phone",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1`).
					WithArgs("alice").
					WillReturnRows(pgxmock.NewRows(userCols).
						AddRow(int64(1), "alice", "alice@x.com", nil, "Alice", "hash", false, now, now))
			},
			want: domain.User{ID: 1, Username: "alice", Email: "alice@x.com", FullName: "Alice", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now},
		},
		{
			name: "missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1`).
					WithArgs("alice").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: store.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, s := newMock(t)
			tt.setupMock(mock)

			got, err := s.Users().GetUserByUsername(context.Background(), "alice")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestUsers_CreateUser(t *testing.T) {
	now := time.Now().UTC()

	t.Run("returns assigned id", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", "a@x.com", (*string)(nil), "Alice", "hash", true).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

		u, err := s.Users().CreateUser(context.Background(), domain.User{Username: "alice", Email: "a@x.com", FullName: "Alice", PasswordHash: "hash", Active: true})
		require.NoError(t, err)
		require.Equal(t, int64(7), u.ID)
		require.Equal(t, now, u.CreatedAt)
	})

	for constraint, field := range map[string]string{
		"users_username_key": store.FieldUsername,
		"users_email_key":    store.FieldEmail,
		"users_phone_key":    store.FieldPhone,
	} {
		t.Run(constraint, func(t *testing.T) {
			mock, s := newMock(t)
			mock.ExpectQuery(`INSERT INTO users`).
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint})

			_, err := s.Users().CreateUser(context.Background(), domain.User{Username: "alice", Email: "a@x.com"})
			require.ErrorIs(t, err, store.ErrAlreadyExists)
			got, ok := store.ConflictField(err)
			require.True(t, ok)
			require.Equal(t, field, got)
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		_, err := s.Users().CreateUser(context.Background(), domain.User{Username: "alice"})
		require.ErrorContains(t, err, "connection refused")
		require.NotErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestUsers_Updates(t *testing.T) {
	t.Run("password hash", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectExec(`UPDATE users SET password_hash = \$1, updated_at = now\(\) WHERE id = \$2`).
			WithArgs("new-hash", int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		require.NoError(t, s.Users().UpdatePasswordHash(context.Background(), 3, "new-hash"))
	})

	t.Run("active flag on missing user", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectExec(`UPDATE users SET is_active = \$1`).
			WithArgs(false, int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		require.ErrorIs(t, s.Users().UpdateActive(context.Background(), 3, false), store.ErrNotFound)
	})

	t.Run("profile builds numbered placeholders", func(t *testing.T) {
		mock, s := newMock(t)
		name, phone := "Alice B", "555"
		mock.ExpectExec(`UPDATE users SET full_name = \$1, phone = \$2, updated_at = now\(\) WHERE id = \$3`).
			WithArgs(name, phone, int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		require.NoError(t, s.Users().UpdateProfile(context.Background(), 3, domain.ProfilePatch{FullName: &name, Phone: &phone}))
	})

	t.Run("profile phone only", func(t *testing.T) {
		mock, s := newMock(t)
		phone := "555"
		mock.ExpectExec(`UPDATE users SET phone = \$1, updated_at = now\(\) WHERE id = \$2`).
			WithArgs(phone, int64(3)).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_phone_key"})
		err := s.Users().UpdateProfile(context.Background(), 3, domain.ProfilePatch{Phone: &phone})
		field, ok := store.ConflictField(err)
		require.True(t, ok)
		require.Equal(t, store.FieldPhone, field)
	})
}

func TestUsers_CountUsers(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(\*\) FILTER`).
		WillReturnRows(pgxmock.NewRows([]string{"count", "active"}).AddRow(int64(5), int64(3)))

	c, err := s.Users().CountUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.UserCounts{Total: 5, Active: 3}, c)
}

func TestRoles(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(int64(1), "owner").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT role FROM user_roles WHERE user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"role"}).AddRow("client").AddRow("owner"))

	require.NoError(t, s.Roles().AssignRole(context.Background(), 1, domain.RoleOwner))
	roles, err := s.Roles().ListRoles(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []domain.Role{domain.RoleClient, domain.RoleOwner}, roles)
}

func TestWithTx(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO user_roles`).WithArgs(int64(1), "client").WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		err := s.WithTx(context.Background(), func(tx store.Tx) error {
			return tx.Roles().AssignRole(context.Background(), 1, domain.RoleClient)
		})
		require.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mock, s := newMock(t)
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.WithTx(context.Background(), func(store.Tx) error { return boom })
		require.ErrorIs(t, err, boom)
	})
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@host/db", postgres.MigrateURL("postgres://u:p@host/db"))
	require.Equal(t, "pgx5://u:p@host/db", postgres.MigrateURL("postgresql://u:p@host/db"))
	require.Equal(t, "pgx5://host/db", postgres.MigrateURL("pgx5://host/db"))
}
