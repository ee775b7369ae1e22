// Package testutil provides a fake database/sql driver standing in for
// Postgres in registry store tests. It understands only the statements the
// store issues against the slides table.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

var driverSeq atomic.Int64

// Row is one slides row keyed by column name.
type Row map[string]any

// StubConn records every statement and keeps the slides rows in memory.
// A transaction snapshots the rows on begin and restores them on rollback or
// failed commit. The first inserted column acts as the primary key.
type StubConn struct {
	mu    sync.Mutex
	rows  []Row
	Execs []string

	FailPing   bool
	FailBegin  bool
	FailExec   bool
	FailQuery  bool
	FailCommit bool
	// RowsErr is returned by the row iterator after the last row.
	RowsErr error
}

// NewStubDB registers a fresh driver and returns a single-connection sql.DB
// backed by it.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{}
	name := fmt.Sprintf("slidesstub%d", driverSeq.Add(1))
	sql.Register(name, stubDriver{conn})
	db, err := sql.Open(name, "")
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(1)
	return db, conn
}

// Rows returns a copy of the stored rows in insertion order.
func (c *StubConn) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRows(c.rows)
}

// Seed replaces the stored rows.
func (c *StubConn) Seed(rows ...Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = cloneRows(rows)
}

type stubDriver struct{ conn *StubConn }

func (d stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *StubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("stub: prepared statements not supported")
}

func (c *StubConn) Close() error { return nil }

func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return errors.New("stub: ping failed")
	}
	return nil
}

func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, errors.New("stub: begin failed")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return &stubTx{conn: c, snapshot: cloneRows(c.rows)}, nil
}

func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, errors.New("stub: exec failed")
	}
	verb := strings.ToUpper(firstWord(query))
	switch verb {
	case "DELETE":
		n := len(c.rows)
		c.rows = nil
		return driver.RowsAffected(n), nil
	case "INSERT":
		cols, err := columnsBetween(query, "(", ")")
		if err != nil {
			return nil, err
		}
		if len(cols) != len(args) {
			return nil, fmt.Errorf("stub: %d columns but %d args", len(cols), len(args))
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = args[i].Value
		}
		for _, existing := range c.rows {
			if existing[cols[0]] == row[cols[0]] {
				return nil, fmt.Errorf("stub: duplicate key %s=%v", cols[0], row[cols[0]])
			}
		}
		c.rows = append(c.rows, row)
		return driver.RowsAffected(1), nil
	}
	// DDL and anything else is accepted and only recorded.
	return driver.RowsAffected(0), nil
}

func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailQuery {
		return nil, errors.New("stub: query failed")
	}
	if !strings.EqualFold(firstWord(query), "SELECT") {
		return nil, fmt.Errorf("stub: unsupported query %q", query)
	}
	cols, err := columnsBetween(query, " ", " FROM ")
	if err != nil {
		return nil, err
	}
	out := &stubRows{cols: cols, err: c.RowsErr}
	for _, row := range c.rows {
		vals := make([]driver.Value, len(cols))
		for i, col := range cols {
			vals[i] = row[col]
		}
		out.values = append(out.values, vals)
	}
	return out, nil
}

type stubTx struct {
	conn     *StubConn
	snapshot []Row
}

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		t.restore()
		return errors.New("stub: commit failed")
	}
	return nil
}

func (t *stubTx) Rollback() error {
	t.restore()
	return nil
}

func (t *stubTx) restore() {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.rows = t.snapshot
}

type stubRows struct {
	cols   []string
	values [][]driver.Value
	next   int
	err    error
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.next == len(r.values) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.values[r.next])
	r.next++
	return nil
}

func firstWord(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// columnsBetween splits the comma separated column list found between the
// first open token and the following close token (case-insensitive).
func columnsBetween(query, open, closeTok string) ([]string, error) {
	upper := strings.ToUpper(query)
	start := strings.Index(upper, strings.ToUpper(open))
	if start < 0 {
		return nil, fmt.Errorf("stub: cannot parse %q", query)
	}
	start += len(open)
	end := strings.Index(upper[start:], strings.ToUpper(closeTok))
	if end < 0 {
		return nil, fmt.Errorf("stub: cannot parse %q", query)
	}
	var cols []string
	for _, c := range strings.Split(query[start:start+end], ",") {
		cols = append(cols, strings.ToLower(strings.TrimSpace(c)))
	}
	return cols, nil
}

func cloneRows(in []Row) []Row {
	if in == nil {
		return nil
	}
	out := make([]Row, len(in))
	for i, row := range in {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}
