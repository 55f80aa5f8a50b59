package pgdb

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/DRSN-tech/pos-register/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Pool описывает подмножество *pgxpool.Pool, которым пользуется репозиторий.
type Pool interface {
	executor
	transaction.Transactional
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Pool = (*pgxpool.Pool)(nil)

// KVRepo реализует хранилище состояния кассы поверх таблицы kv_store.
type KVRepo struct {
	pool    Pool
	session string
}

func NewKVRepo(pool Pool, session string) *KVRepo {
	return &KVRepo{
		pool:    pool,
		session: session,
	}
}

func (k *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_store WHERE session = $1 AND key = $2`

	var value string
	err := k.pool.QueryRow(ctx, query, k.session, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, e.Wrap(whereami.WhereAmI(), err)
	}

	return value, true, nil
}

func (k *KVRepo) Set(ctx context.Context, key, value string) error {
	return k.upsert(ctx, key, value)
}

// SetMany записывает все ключи в одной транзакции.
// Ключи пишутся в отсортированном порядке, чтобы параллельные транзакции не блокировали друг друга.
func (k *KVRepo) SetMany(ctx context.Context, values map[string]string) (err error) {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, k.pool)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()
	ctx = tr.WithTx(ctx, tx.Transaction())

	for _, key := range slices.Sorted(maps.Keys(values)) {
		if err = k.upsert(ctx, key, values[key]); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Clear удаляет все ключи сессии.
func (k *KVRepo) Clear(ctx context.Context) error {
	if _, err := k.executor(ctx).Exec(ctx, `DELETE FROM kv_store WHERE session = $1`, k.session); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (k *KVRepo) upsert(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (session, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (session, key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`

	if _, err := k.executor(ctx).Exec(ctx, query, k.session, key, value); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// executor возвращает транзакцию из контекста, если она есть, иначе пул.
func (k *KVRepo) executor(ctx context.Context) executor {
	if tx, err := tr.TxFromCtx(ctx); err == nil {
		return tx
	}

	return k.pool
}
