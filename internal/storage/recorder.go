package storage

import (
	"context"
	"database/sql"

	"azdo-cli/internal/logger"
	"azdo-cli/internal/tools"
)

// Recorder persists dispatch invocations into the history database. It
// sits on the dispatch path, so persistence failures are logged and
// swallowed rather than surfaced to the caller.
type Recorder struct {
	db  *sql.DB
	log *logger.Logger
}

func NewRecorder(db *sql.DB, log *logger.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

func (r *Recorder) Record(_ context.Context, inv tools.Invocation) {
	err := SaveInvocation(r.db, InvocationRow{
		CallID:     inv.ID,
		SessionID:  inv.SessionID,
		Timestamp:  inv.Timestamp,
		Tool:       inv.Tool,
		Arguments:  inv.Arguments,
		OK:         inv.OK,
		Error:      inv.Error,
		DurationMs: inv.DurationMs,
	})
	if err != nil && r.log != nil {
		r.log.LogEvent("history_write_failed", err.Error())
	}
}
