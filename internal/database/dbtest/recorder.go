// Package dbtest provides an in-memory database.PGX that records the SQL it
// is asked to run. Repository tests assert on the recorded queries, service
// tests use it as the transaction source.
package dbtest

import (
	"context"
	"errors"
	"sync"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Query struct {
	SQL  string
	Args []interface{}
}

type Recorder struct {
	mu      sync.Mutex
	Queries []Query

	// OnGet and OnSelect fill dst for the given query.
	OnGet    func(dst interface{}, q Query) error
	OnSelect func(dst interface{}, q Query) error
	// OnExec returns the command tag, e.g. pgconn.CommandTag("DELETE 2").
	OnExec func(q Query) (pgconn.CommandTag, error)

	Begun      int
	Committed  int
	RolledBack int
}

var _ database.PGX = (*Recorder)(nil)

func (r *Recorder) record(sqlizer database.Sqlizer) (Query, error) {
	sql, args, err := sqlizer.ToSql()
	if err != nil {
		return Query{}, err
	}

	q := Query{SQL: sql, Args: args}

	r.mu.Lock()
	r.Queries = append(r.Queries, q)
	r.mu.Unlock()

	return q, nil
}

func (r *Recorder) Exec(_ context.Context, sqlizer database.Sqlizer) (pgconn.CommandTag, error) {
	q, err := r.record(sqlizer)
	if err != nil {
		return nil, err
	}

	if r.OnExec == nil {
		return pgconn.CommandTag("OK 0"), nil
	}
	return r.OnExec(q)
}

func (r *Recorder) Get(_ context.Context, dst interface{}, sqlizer database.Sqlizer) error {
	q, err := r.record(sqlizer)
	if err != nil {
		return err
	}

	if r.OnGet == nil {
		return pgx.ErrNoRows
	}
	return r.OnGet(dst, q)
}

func (r *Recorder) Select(_ context.Context, dst interface{}, sqlizer database.Sqlizer) error {
	q, err := r.record(sqlizer)
	if err != nil {
		return err
	}

	if r.OnSelect == nil {
		return nil
	}
	return r.OnSelect(dst, q)
}

func (r *Recorder) ExecRaw(_ context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	r.mu.Lock()
	r.Queries = append(r.Queries, Query{SQL: sql, Args: arguments})
	r.mu.Unlock()

	return pgconn.CommandTag("OK 0"), nil
}

func (r *Recorder) GetPool(_ context.Context) *pgxpool.Pool {
	return nil
}

func (r *Recorder) BeginTx(_ context.Context, _ *pgx.TxOptions) (database.Tx, error) {
	r.mu.Lock()
	r.Begun++
	r.mu.Unlock()

	return &tx{Recorder: r}, nil
}

// Last returns the most recently recorded query.
func (r *Recorder) Last() Query {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Queries) == 0 {
		return Query{}
	}
	return r.Queries[len(r.Queries)-1]
}

var errTxDone = errors.New("tx already finished")

type tx struct {
	*Recorder
	done bool
}

func (t *tx) Commit(_ context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true

	t.mu.Lock()
	t.Committed++
	t.mu.Unlock()

	return nil
}

// Rollback after Commit is a no-op, matching the deferred Rollback idiom.
func (t *tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true

	t.mu.Lock()
	t.RolledBack++
	t.mu.Unlock()

	return nil
}
