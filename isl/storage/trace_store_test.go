package storage

import (
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentlang/isl/errors"
	"github.com/intentlang/isl/isl/types"
	"github.com/intentlang/isl/isl/verify"
)

func newMockStore(t *testing.T) (*TraceStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTraceStore(db, nil), mock
}

func TestSaveTrace(t *testing.T) {
	store, mock := newMockStore(t)

	trace := &types.ExecutionTrace{
		ID:        "trace_1",
		Behavior:  "Withdraw",
		StartTime: 1700000000000,
		EndTime:   1700000000100,
		Events: []types.TraceEvent{
			{ID: "evt_1", Type: types.EventHandlerCall, Behavior: "Withdraw"},
		},
	}
	eventsJSON, err := json.Marshal(trace.Events)
	require.NoError(t, err)

	mock.ExpectExec("INSERT OR REPLACE INTO traces").
		WithArgs("trace_1", "Withdraw", int64(1700000000000), int64(1700000000100), string(eventsJSON)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.SaveTrace(trace))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTraceNil(t *testing.T) {
	store, _ := newMockStore(t)
	assert.Error(t, store.SaveTrace(nil))
}

func TestGetTrace(t *testing.T) {
	store, mock := newMockStore(t)

	events := `[{"id":"evt_1","type":"handler_call","behavior":"Withdraw"}]`
	rows := sqlmock.NewRows([]string{"id", "behavior", "start_time", "end_time", "events"}).
		AddRow("trace_1", "Withdraw", int64(100), int64(200), events)
	mock.ExpectQuery("SELECT id, behavior, start_time, end_time, events").
		WithArgs("trace_1").
		WillReturnRows(rows)

	trace, err := store.GetTrace("trace_1")
	require.NoError(t, err)
	assert.Equal(t, "Withdraw", trace.Behavior)
	assert.Equal(t, int64(200), trace.EndTime)
	require.Len(t, trace.Events, 1)
	assert.Equal(t, types.EventHandlerCall, trace.Events[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTraceNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, behavior, start_time, end_time, events").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "behavior", "start_time", "end_time", "events"}))

	_, err := store.GetTrace("missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestGetTraceCorruptEvents(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "behavior", "start_time", "end_time", "events"}).
		AddRow("trace_1", "Withdraw", int64(100), nil, "{not json")
	mock.ExpectQuery("SELECT id, behavior, start_time, end_time, events").
		WithArgs("trace_1").
		WillReturnRows(rows)

	_, err := store.GetTrace("trace_1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTraceCorrupt))
}

func TestListTracesByBehavior(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "behavior", "start_time", "end_time", "events"}).
		AddRow("trace_1", "Withdraw", int64(100), int64(150), "[]").
		AddRow("trace_2", "Withdraw", int64(200), nil, "[]")
	mock.ExpectQuery("FROM traces WHERE behavior = \\?").
		WithArgs("Withdraw").
		WillReturnRows(rows)

	traces, err := store.ListTraces("Withdraw")
	require.NoError(t, err)
	require.Len(t, traces, 2)
	assert.Equal(t, "trace_1", traces[0].ID)
	assert.Equal(t, int64(0), traces[1].EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountTraces(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM traces").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := store.CountTraces()
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestSaveEvidence(t *testing.T) {
	store, mock := newMockStore(t)

	evidence := []verify.ClauseEvidence{
		{
			ClauseID:       "Withdraw_post_success_12",
			Type:           "postcondition",
			Behavior:       "Withdraw",
			Outcome:        "success",
			Status:         verify.StatusProven,
			TriStateResult: verify.TriTrue,
		},
		{
			ClauseID:       "Withdraw_post_success_14",
			Type:           "postcondition",
			Behavior:       "Withdraw",
			Outcome:        "success",
			Status:         verify.StatusViolated,
			TriStateResult: verify.TriFalse,
		},
	}

	mock.ExpectBegin()
	for _, ev := range evidence {
		payload, err := json.Marshal(ev)
		require.NoError(t, err)
		mock.ExpectExec("INSERT INTO evidence").
			WithArgs("run_1", ev.ClauseID, ev.Behavior, ev.Outcome,
				string(ev.Status), ev.TriStateResult.String(), string(payload), int64(1234)).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, store.SaveEvidence("run_1", 1234, evidence))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEvidenceViolatedOnly(t *testing.T) {
	store, mock := newMockStore(t)

	ev := verify.ClauseEvidence{
		ClauseID:       "Withdraw_post_success_14",
		Behavior:       "Withdraw",
		Status:         verify.StatusViolated,
		TriStateResult: verify.TriFalse,
	}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	mock.ExpectQuery("FROM evidence WHERE run_id = \\? AND status = 'violated'").
		WithArgs("run_1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(string(payload)))

	loaded, err := store.ListEvidence("run_1", true)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, verify.StatusViolated, loaded[0].Status)
	assert.Equal(t, verify.TriFalse, loaded[0].TriStateResult)
}

func TestInitSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS traces").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.InitSchema())
	assert.NoError(t, mock.ExpectationsWereMet())
}
