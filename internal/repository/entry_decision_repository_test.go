package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gardenia-api/internal/models"
)

func decisionRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "registration_id", "reg_id", "event_id", "leader", "team_members", "event_details", "action", "reason", "operator_id", "scanned_at", "logged_at"}).
		AddRow("d2", "8a4c", "GDN2025-0001", "code-sprint", []byte(leaderJSON), []byte(teamJSON), []byte(`{"customId":"code-sprint","title":"Code Sprint"}`), "ENTRY_DENIED", "wrong event", "op-1", now, now).
		AddRow("d1", "8a4c", "GDN2025-0001", "code-sprint", []byte(leaderJSON), []byte(`[]`), []byte(`{"customId":"code-sprint","title":"Code Sprint"}`), "ENTRY_ALLOWED", nil, nil, now.Add(-time.Minute), now.Add(-time.Minute))
}

func TestEntryDecisionCreateAppends(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEntryDecisionRepository(db)

	mock.ExpectExec("INSERT INTO entry_decisions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO entry_decisions").WillReturnResult(sqlmock.NewResult(1, 1))

	first := &models.EntryDecision{RegistrationID: "8a4c", RegID: "GDN2025-0001", EventID: "code-sprint", Action: models.ActionEntryAllowed, ScannedAt: time.Now()}
	second := &models.EntryDecision{RegistrationID: "8a4c", RegID: "GDN2025-0001", EventID: "code-sprint", Action: models.ActionEntryDenied, Reason: strPtr("mistake"), ScannedAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), first))
	require.NoError(t, repo.Create(context.Background(), second))

	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.LoggedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryDecisionListByRegID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEntryDecisionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM entry_decisions WHERE reg_id = $1 ORDER BY scanned_at DESC")).
		WithArgs("GDN2025-0001").
		WillReturnRows(decisionRows())

	decisions, err := repo.ListByRegID(context.Background(), "GDN2025-0001")
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, models.ActionEntryDenied, decisions[0].Action)
	assert.Equal(t, "Code Sprint", decisions[0].EventDetails.Title)
	assert.Nil(t, decisions[1].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryDecisionListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEntryDecisionRepository(db)

	action := models.ActionEntryDenied
	from := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM entry_decisions WHERE event_id = $1 AND action = $2 AND scanned_at >= $3 ORDER BY scanned_at DESC, logged_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("code-sprint", action, from).
		WillReturnRows(decisionRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM entry_decisions WHERE event_id = $1 AND action = $2 AND scanned_at >= $3")).
		WithArgs("code-sprint", action, from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	decisions, total, err := repo.List(context.Background(), models.EntryDecisionFilter{EventID: "code-sprint", Action: &action, From: &from, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
	assert.Equal(t, 12, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryDecisionListForExportCapped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEntryDecisionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM entry_decisions ORDER BY scanned_at DESC, logged_at DESC LIMIT 10000")).
		WillReturnRows(decisionRows())

	decisions, err := repo.ListForExport(context.Background(), models.EntryDecisionFilter{})
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
}
