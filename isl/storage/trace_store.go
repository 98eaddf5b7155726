// Package storage provides SQLite persistence for execution traces and
// verification evidence. Event lists and evidence payloads are stored as
// JSON blobs; behavior and status columns are indexed for querying.
package storage

import (
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/intentlang/isl/errors"
	"github.com/intentlang/isl/isl/types"
	"github.com/intentlang/isl/isl/verify"
)

// Query constants
const (
	traceInsertQuery = `
		INSERT OR REPLACE INTO traces (id, behavior, start_time, end_time, events)
		VALUES (?, ?, ?, ?, ?)`

	traceSelectQuery = `
		SELECT id, behavior, start_time, end_time, events
		FROM traces WHERE id = ?`

	traceListQuery = `
		SELECT id, behavior, start_time, end_time, events
		FROM traces ORDER BY start_time, id`

	traceListByBehaviorQuery = `
		SELECT id, behavior, start_time, end_time, events
		FROM traces WHERE behavior = ? ORDER BY start_time, id`

	traceCountQuery = `SELECT COUNT(*) FROM traces`

	evidenceInsertQuery = `
		INSERT INTO evidence (run_id, clause_id, behavior, outcome, status, tri_state, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	evidenceListByRunQuery = `
		SELECT payload FROM evidence WHERE run_id = ? ORDER BY rowid`

	evidenceListViolatedQuery = `
		SELECT payload FROM evidence WHERE run_id = ? AND status = 'violated' ORDER BY rowid`
)

const schema = `
	CREATE TABLE IF NOT EXISTS traces (
		id         TEXT PRIMARY KEY,
		behavior   TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time   INTEGER,
		events     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_traces_behavior ON traces(behavior);

	CREATE TABLE IF NOT EXISTS evidence (
		run_id     TEXT NOT NULL,
		clause_id  TEXT NOT NULL,
		behavior   TEXT NOT NULL,
		outcome    TEXT,
		status     TEXT NOT NULL,
		tri_state  TEXT NOT NULL,
		payload    TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_evidence_run ON evidence(run_id);
	CREATE INDEX IF NOT EXISTS idx_evidence_status ON evidence(run_id, status);`

// TraceStore persists traces and evidence in SQLite
type TraceStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewTraceStore creates a store over an open database handle
func NewTraceStore(database *sql.DB, logger *zap.SugaredLogger) *TraceStore {
	return &TraceStore{db: database, logger: logger}
}

// InitSchema creates the trace and evidence tables when missing
func (s *TraceStore) InitSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, "failed to initialize trace schema")
	}
	return nil
}

// SaveTrace upserts one execution trace
func (s *TraceStore) SaveTrace(trace *types.ExecutionTrace) error {
	if trace == nil {
		return errors.New("trace is nil")
	}
	eventsJSON, err := json.Marshal(trace.Events)
	if err != nil {
		return errors.Wrap(err, "failed to marshal trace events")
	}

	_, err = s.db.Exec(traceInsertQuery,
		trace.ID, trace.Behavior, trace.StartTime, trace.EndTime, string(eventsJSON))
	if err != nil {
		return errors.Wrapf(err, "failed to save trace %s", trace.ID)
	}

	if s.logger != nil {
		s.logger.Debugw("Saved trace",
			"trace", trace.ID,
			"behavior", trace.Behavior,
			"events", len(trace.Events))
	}
	return nil
}

// GetTrace loads one trace by ID; errors.ErrNotFound when absent
func (s *TraceStore) GetTrace(id string) (*types.ExecutionTrace, error) {
	row := s.db.QueryRow(traceSelectQuery, id)
	trace, err := scanTrace(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("trace %s", id)
	}
	return trace, err
}

// ListTraces returns all stored traces ordered by start time. With a
// non-empty behavior only that behavior's traces are returned.
func (s *TraceStore) ListTraces(behavior string) ([]*types.ExecutionTrace, error) {
	var rows *sql.Rows
	var err error
	if behavior == "" {
		rows, err = s.db.Query(traceListQuery)
	} else {
		rows, err = s.db.Query(traceListByBehaviorQuery, behavior)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query traces")
	}
	defer rows.Close()

	var traces []*types.ExecutionTrace
	for rows.Next() {
		trace, err := scanTrace(rows)
		if err != nil {
			return nil, err
		}
		traces = append(traces, trace)
	}
	return traces, rows.Err()
}

// CountTraces returns the number of stored traces
func (s *TraceStore) CountTraces() (int, error) {
	var count int
	if err := s.db.QueryRow(traceCountQuery).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count traces")
	}
	return count, nil
}

// SaveEvidence persists every clause's evidence for one verification run
func (s *TraceStore) SaveEvidence(runID string, createdAt int64, evidence []verify.ClauseEvidence) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin evidence transaction")
	}
	defer tx.Rollback()

	for _, ev := range evidence {
		payload, err := json.Marshal(ev)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal evidence for %s", ev.ClauseID)
		}
		_, err = tx.Exec(evidenceInsertQuery,
			runID, ev.ClauseID, ev.Behavior, ev.Outcome,
			string(ev.Status), ev.TriStateResult.String(), string(payload), createdAt)
		if err != nil {
			return errors.Wrapf(err, "failed to save evidence for %s", ev.ClauseID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit evidence")
	}
	if s.logger != nil {
		s.logger.Infow("Saved verification evidence",
			"run_id", runID,
			"clauses", len(evidence))
	}
	return nil
}

// ListEvidence loads one run's evidence; violatedOnly restricts to
// violated clauses
func (s *TraceStore) ListEvidence(runID string, violatedOnly bool) ([]verify.ClauseEvidence, error) {
	query := evidenceListByRunQuery
	if violatedOnly {
		query = evidenceListViolatedQuery
	}
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query evidence")
	}
	defer rows.Close()

	var evidence []verify.ClauseEvidence
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(err, "failed to scan evidence row")
		}
		var ev verify.ClauseEvidence
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, errors.Wrap(err, "failed to decode evidence payload")
		}
		evidence = append(evidence, ev)
	}
	return evidence, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrace(row rowScanner) (*types.ExecutionTrace, error) {
	var trace types.ExecutionTrace
	var eventsJSON string
	var endTime sql.NullInt64

	err := row.Scan(&trace.ID, &trace.Behavior, &trace.StartTime, &endTime, &eventsJSON)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		trace.EndTime = endTime.Int64
	}
	if err := json.Unmarshal([]byte(eventsJSON), &trace.Events); err != nil {
		return nil, errors.Wrapf(errors.ErrTraceCorrupt, "trace %s: %v", trace.ID, err)
	}
	return &trace, nil
}
