package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/anonq-bot/internal/model"
)

// ErrNotFound is returned when a lookup or removal matches no row.
var ErrNotFound = errors.New("repository: not found")

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuestionStore is the durable set of active questions.
type QuestionStore interface {
	// ListActiveQuestionIDs returns the public ids of questions still open at now.
	ListActiveQuestionIDs(ctx context.Context, now time.Time) ([]string, error)
	Create(ctx context.Context, q *model.Question) error
	// FindActiveForUpdate locks and returns the open question with the given public id.
	FindActiveForUpdate(ctx context.Context, questionID string, now time.Time) (*model.Question, error)
	UpdateResponses(ctx context.Context, q *model.Question) error
	// ListExpiredIDs returns storage ids of questions whose closes_at is not after now.
	ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error)
	// Remove deletes the question and returns it; ErrNotFound if already gone.
	Remove(ctx context.Context, id int64) (*model.Question, error)
	RemoveAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context, now time.Time) (int, error)
}

// StatisticStore holds the string-encoded monotonic counters.
type StatisticStore interface {
	Ensure(ctx context.Context, name, initial string) error
	Increment(ctx context.Context, name string) (int64, error)
	List(ctx context.Context) ([]model.Statistic, error)
}

// UnitOfWork groups the repositories bound to one connection or transaction.
type UnitOfWork interface {
	Questions() QuestionStore
	Statistics() StatisticStore
}

// Store is the durable store collaborator. InTx runs fn inside a single
// transaction; it is committed when fn returns nil and rolled back otherwise.
type Store interface {
	UnitOfWork
	InTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Questions() QuestionStore   { return NewQuestionRepository(s.pool) }
func (s *PostgresStore) Statistics() StatisticStore { return NewStatisticRepository(s.pool) }

// InTx runs fn in a transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(txUnit{tx: tx})
	})
}

type txUnit struct {
	tx pgx.Tx
}

func (u txUnit) Questions() QuestionStore   { return NewQuestionRepository(u.tx) }
func (u txUnit) Statistics() StatisticStore { return NewStatisticRepository(u.tx) }

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
