package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	errDuplicateEntry  = 1062
	errDeadlock        = 1213
	errLockWaitTimeout = 1205
)

// Execer is the write surface shared by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type Tx interface {
	Execer
	Commit() error
	Rollback() error
}

type TransactionManager struct {
	db *sql.DB
}

func NewTransactionManager(db *sql.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

func (m *TransactionManager) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func IsDuplicateKey(err error) bool {
	return hasErrorNumber(err, errDuplicateEntry)
}

// IsDeadlock reports deadlocks and lock wait timeouts, both of which are safe
// to retry from the start of the transaction.
func IsDeadlock(err error) bool {
	return hasErrorNumber(err, errDeadlock, errLockWaitTimeout)
}

func hasErrorNumber(err error, numbers ...uint16) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	for _, n := range numbers {
		if mysqlErr.Number == n {
			return true
		}
	}
	return false
}
