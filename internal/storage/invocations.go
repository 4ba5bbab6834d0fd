package storage

import (
	"database/sql"
	"strings"
	"time"
)

// InvocationRow is one persisted tool call.
type InvocationRow struct {
	ID         int64
	CallID     string
	SessionID  string
	Timestamp  time.Time
	Tool       string
	Arguments  string
	OK         bool
	Error      string
	DurationMs int64
}

func SaveInvocation(db *sql.DB, row InvocationRow) error {
	query := `INSERT INTO invocations (call_id, session_id, timestamp, tool, arguments, ok, error, duration_ms)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	ts := row.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ok := 0
	if row.OK {
		ok = 1
	}
	_, err := db.Exec(query, row.CallID, row.SessionID, ts.Unix(), row.Tool, row.Arguments, ok, row.Error, row.DurationMs)
	return err
}

func GetRecentInvocations(db *sql.DB, limit int) ([]InvocationRow, error) {
	query := `SELECT id, call_id, session_id, timestamp, tool, arguments, ok, error, duration_ms
			  FROM invocations ORDER BY id DESC LIMIT ?`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvocations(rows)
}

func SearchInvocations(db *sql.DB, term string, limit int) ([]InvocationRow, error) {
	query := `SELECT id, call_id, session_id, timestamp, tool, arguments, ok, error, duration_ms
			  FROM invocations
			  WHERE tool LIKE ? OR arguments LIKE ? OR error LIKE ?
			  ORDER BY id DESC
			  LIMIT ?`

	wildcard := "%" + term + "%"
	rows, err := db.Query(query, wildcard, wildcard, wildcard, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvocations(rows)
}

// QueryOpts narrows failure queries.
type QueryOpts struct {
	Limit int
	Tool  string
	Since time.Duration
}

func GetFailedInvocations(db *sql.DB, opts QueryOpts) ([]InvocationRow, error) {
	queryBuilder := `SELECT id, call_id, session_id, timestamp, tool, arguments, ok, error, duration_ms
					 FROM invocations`
	var args []interface{}
	whereClauses := []string{"ok = 0"}

	if opts.Tool != "" {
		whereClauses = append(whereClauses, "tool LIKE ?")
		args = append(args, "%"+opts.Tool+"%")
	}

	if opts.Since > 0 {
		cutoff := time.Now().Add(-opts.Since).Unix()
		whereClauses = append(whereClauses, "timestamp >= ?")
		args = append(args, cutoff)
	}

	queryBuilder += " WHERE " + strings.Join(whereClauses, " AND ")
	queryBuilder += " ORDER BY id DESC"

	if opts.Limit > 0 {
		queryBuilder += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.Query(queryBuilder, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvocations(rows)
}

// ToolCounts returns how often each tool was called, most used first.
func ToolCounts(db *sql.DB) ([]ToolCount, error) {
	query := `SELECT tool, COUNT(*) AS calls, SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END) AS failures
			  FROM invocations GROUP BY tool ORDER BY calls DESC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ToolCount
	for rows.Next() {
		var c ToolCount
		if err := rows.Scan(&c.Tool, &c.Calls, &c.Failures); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ToolCount aggregates the call history of one tool.
type ToolCount struct {
	Tool     string
	Calls    int
	Failures int
}

func scanInvocations(rows *sql.Rows) ([]InvocationRow, error) {
	var items []InvocationRow
	for rows.Next() {
		var item InvocationRow
		var ts int64
		var ok int
		if err := rows.Scan(&item.ID, &item.CallID, &item.SessionID, &ts, &item.Tool, &item.Arguments, &ok, &item.Error, &item.DurationMs); err != nil {
			return nil, err
		}
		item.Timestamp = time.Unix(ts, 0)
		item.OK = ok == 1
		items = append(items, item)
	}
	return items, rows.Err()
}
