package repo

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func TestEnsureSchema(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS bet_submissions").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, p.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaWrapsError(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err := p.EnsureSchema(context.Background())
	assert.EqualError(t, err, "create bet_submissions: permission denied")
}

func TestRecordExactScore(t *testing.T) {
	p, mock := newMock(t)
	home, away := 2, 0
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bet_submissions")).
		WithArgs(sqlmock.AnyArg(), "sess-1", int64(42), "SCORE", int64(20000),
			sql.NullInt64{Int64: 2, Valid: true}, sql.NullInt64{Int64: 0, Valid: true},
			"5.00", StatusSubmitted, "ok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &Submission{SessionID: "sess-1", FixtureID: 42, BetType: "SCORE", Amount: 20000,
		PredictedHome: &home, PredictedAway: &away, Multiplier: "5.00", Status: StatusSubmitted, Message: "ok"}
	id, err := p.Record(context.Background(), s)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, s.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutcomeStoresNullScores(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bet_submissions")).
		WithArgs(sqlmock.AnyArg(), "sess-1", int64(42), "WIN", int64(50000),
			sql.NullInt64{}, sql.NullInt64{}, "2.50", StatusRejected, "market closed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := p.Record(context.Background(), &Submission{SessionID: "sess-1", FixtureID: 42, BetType: "WIN",
		Amount: 50000, Multiplier: "2.50", Status: StatusRejected, Message: "market closed"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySession(t *testing.T) {
	p, mock := newMock(t)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "session_id", "fixture_id", "bet_type", "amount",
		"predicted_home", "predicted_away", "multiplier", "status", "message", "created_at"}).
		AddRow("a", "sess-1", int64(42), "SCORE", int64(20000), int64(1), int64(1), "5.00", StatusSubmitted, "ok", at).
		AddRow("b", "sess-1", int64(42), "DRAW", int64(30000), nil, nil, "3.33", StatusFailed, "timeout", at)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bet_submissions WHERE session_id=$1")).
		WithArgs("sess-1", 20).
		WillReturnRows(rows)

	out, err := p.ListBySession(context.Background(), "sess-1", 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].PredictedHome)
	assert.Equal(t, 1, *out[0].PredictedHome)
	assert.Nil(t, out[1].PredictedHome)
	assert.Equal(t, StatusFailed, out[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
