package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/appsnxt/platform/internal/domain/shared"
)

type txContextKey struct{}

// WithTxContext binds a transaction handle to the context. Repositories
// built on this package pick it up and join the transaction.
func WithTxContext(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext returns the transaction bound to the context, if any.
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*gorm.DB)
	return tx, ok
}

// GormTransactionManager implements shared.TransactionManager on a GORM
// connection.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager creates a transaction manager for the database.
func NewTransactionManager(db *Database) *GormTransactionManager {
	return &GormTransactionManager{db: db.DB}
}

// Do runs fn inside a transaction. The context passed to fn carries the
// transaction handle, so repository calls within fn are atomic.
func (m *GormTransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTxContext(ctx, tx))
	})
}

var _ shared.TransactionManager = (*GormTransactionManager)(nil)
