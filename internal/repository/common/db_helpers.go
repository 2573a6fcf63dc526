package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Queryer - общий интерфейс *sqlx.DB и *sqlx.Tx для чтения.
type Queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// RowLock - режим блокировки строки при чтении.
type RowLock string

const (
	NoLock    RowLock = ""
	ForUpdate RowLock = "FOR UPDATE"
	ForShare  RowLock = "FOR SHARE"
)

func getOne[T any](ctx context.Context, q Queryer, table, column string, value interface{}, lock RowLock, notFoundErr error) (*T, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", table, column)
	if lock != NoLock {
		query += " " + string(lock)
	}

	var entity T
	if err := q.GetContext(ctx, &entity, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("select %s by %s: %w", table, column, err)
	}
	return &entity, nil
}

// GetByID читает строку по первичному ключу.
func GetByID[T any](ctx context.Context, q Queryer, table string, id interface{}, notFoundErr error) (*T, error) {
	return getOne[T](ctx, q, table, "id", id, NoLock, notFoundErr)
}

// GetByField читает строку по уникальному полю.
func GetByField[T any](ctx context.Context, q Queryer, table, field string, value interface{}, notFoundErr error) (*T, error) {
	return getOne[T](ctx, q, table, field, value, NoLock, notFoundErr)
}

// LockByID читает строку под FOR UPDATE. Блокировка держится до конца tx.
func LockByID[T any](ctx context.Context, tx *sqlx.Tx, table string, id interface{}, notFoundErr error) (*T, error) {
	return getOne[T](ctx, tx, table, "id", id, ForUpdate, notFoundErr)
}

// BatchInserter копит строки и вставляет их пачками одним INSERT ... VALUES.
type BatchInserter struct {
	tx        *sqlx.Tx
	prefix    string
	suffix    string
	columns   int
	batchSize int
	rows      int
	args      []interface{}
}

// NewBatchInserter создает вставщик для запроса вида "INSERT INTO t (a, b)".
func NewBatchInserter(tx *sqlx.Tx, insertPrefix string, columns, batchSize int) *BatchInserter {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BatchInserter{
		tx:        tx,
		prefix:    insertPrefix,
		columns:   columns,
		batchSize: batchSize,
		args:      make([]interface{}, 0, batchSize*columns),
	}
}

// OnConflict задаёт хвост запроса, например "ON CONFLICT DO NOTHING".
func (bi *BatchInserter) OnConflict(suffix string) *BatchInserter {
	bi.suffix = suffix
	return bi
}

// Add добавляет строку. Полная пачка отправляется сразу.
func (bi *BatchInserter) Add(ctx context.Context, values ...interface{}) error {
	if len(values) != bi.columns {
		return fmt.Errorf("batch insert: ожидалось %d значений, получено %d", bi.columns, len(values))
	}
	bi.args = append(bi.args, values...)
	bi.rows++
	if bi.rows >= bi.batchSize {
		return bi.Flush(ctx)
	}
	return nil
}

// Flush отправляет накопленные строки.
func (bi *BatchInserter) Flush(ctx context.Context) error {
	if bi.rows == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(bi.prefix)
	sb.WriteString(" VALUES ")
	for row := 0; row < bi.rows; row++ {
		if row > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for col := 0; col < bi.columns; col++ {
			if col > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", row*bi.columns+col+1)
		}
		sb.WriteByte(')')
	}
	if bi.suffix != "" {
		sb.WriteString(" ")
		sb.WriteString(bi.suffix)
	}

	if _, err := bi.tx.ExecContext(ctx, sb.String(), bi.args...); err != nil {
		return fmt.Errorf("batch insert: %w", err)
	}
	bi.args = bi.args[:0]
	bi.rows = 0
	return nil
}

// WithTransaction выполняет fn в одной транзакции. Любая ошибка или panic откатывает её.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
