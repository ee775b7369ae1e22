// Package schema holds the slides table DDL shared by the SQL registry
// backends, plus the row scanning both of them use.
package schema

import (
	"bufio"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"slidedeck/pkg/domain"
)

//go:embed sqlite.sql
var sqliteDDL string

//go:embed postgres.sql
var postgresDDL string

// Columns lists the slides table columns in scan order.
const Columns = "ordinal, slug, title, content_ref, section, active"

// SelectAll reads every registry row.
const SelectAll = "SELECT " + Columns + " FROM slides"

// DeleteAll empties the registry table inside a replace transaction.
const DeleteAll = "DELETE FROM slides"

// SQLite returns the SQLite DDL for the slides table.
func SQLite() string { return sqliteDDL }

// Postgres returns the Postgres DDL for the slides table.
func Postgres() string { return postgresDDL }

// Insert returns the INSERT statement using the placeholder style produced by
// placeholder (e.g. "?" or "$n").
func Insert(placeholder func(n int) string) string {
	cols := strings.Split(Columns, ", ")
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = placeholder(i + 1)
	}
	return "INSERT INTO slides (" + Columns + ") VALUES (" + strings.Join(ph, ", ") + ")"
}

// Args returns the insert arguments for r in column order.
func Args(r domain.SlideRecord) []any {
	return []any{r.Ordinal, r.Slug, r.Title, r.ContentRef, r.Section, r.Active}
}

// ScanRecords drains rows into slide records and closes rows.
func ScanRecords(rows *sql.Rows) ([]domain.SlideRecord, error) {
	defer func() { _ = rows.Close() }()
	var out []domain.SlideRecord
	for rows.Next() {
		var r domain.SlideRecord
		if err := rows.Scan(&r.Ordinal, &r.Slug, &r.Title, &r.ContentRef, &r.Section, &r.Active); err != nil {
			return nil, fmt.Errorf("scan slide: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slides: %w", err)
	}
	return out, nil
}

// SplitStatements splits a semicolon-terminated DDL script into executable statements.
// It drops blank lines and single-line comments that start with "--".
func SplitStatements(ddl string) ([]string, error) {
	scanner := bufio.NewScanner(strings.NewReader(ddl))
	var stmts []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("split ddl: %w", err)
	}
	if tail := strings.TrimSpace(current.String()); tail != "" {
		stmts = append(stmts, tail)
	}
	return stmts, nil
}
