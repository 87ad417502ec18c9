package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/triadacafetera/triada/internal/auth/store"
)

var errNestedTx = errors.New("sqlite: nested transactions are not supported")

// txStore scopes the repositories to one *sql.Tx. It satisfies store.Tx.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Lifecycle methods belong to the outer Store.
func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, errNestedTx }

// WithTx runs fn inside the transaction already open, so helpers that
// demand a transaction compose with callers that hold one.
func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return fn(t)
}

func (t *txStore) Users() store.Users { return &usersRepo{q: t.tx} }
func (t *txStore) Roles() store.Roles { return &rolesRepo{q: t.tx} }
