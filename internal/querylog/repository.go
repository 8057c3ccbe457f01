package querylog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Entry is one logged search. Results are optional.
type Entry struct {
	QueryText string
	QueryType string
	Timestamp time.Time
	Results   []Result
}

// Result is one persisted record of a search.
type Result struct {
	Category string
	Source   string
	Data     json.RawMessage
}

// Row is a stored query.
type Row struct {
	ID        int64     `db:"id"`
	QueryText string    `db:"query_text"`
	QueryType string    `db:"query_type"`
	Timestamp time.Time `db:"timestamp"`
}

// columnsPerResult is the number of placeholders per osint_results row.
const columnsPerResult = 5

// Repository stores entries.
type Repository struct {
	db *sqlx.DB
}

// NewRepository returns a Repository over db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores e and its results in one transaction and returns the new
// query id.
func (r *Repository) Insert(ctx context.Context, e Entry) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin query log transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO osint_queries (query_text, query_type, timestamp) VALUES ($1, $2, $3) RETURNING id`,
		e.QueryText, e.QueryType, e.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert query: %w", err)
	}

	if len(e.Results) > 0 {
		if err := insertResults(ctx, tx, id, e.Timestamp, e.Results); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit query log: %w", err)
	}
	return id, nil
}

func insertResults(ctx context.Context, tx *sqlx.Tx, queryID int64, ts time.Time, results []Result) error {
	var sb strings.Builder
	args := make([]any, 0, len(results)*columnsPerResult)

	sb.WriteString("INSERT INTO osint_results (query_id, category, data, source, timestamp) VALUES ")
	for i, res := range results {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * columnsPerResult
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, queryID, res.Category, []byte(res.Data), res.Source, ts)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert results: %w", err)
	}
	return nil
}

// Recent returns the latest queries, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Row, error) {
	var rows []Row
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, query_text, query_type, timestamp FROM osint_queries ORDER BY timestamp DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent queries: %w", err)
	}
	return rows, nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
