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

func eventRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"custom_id", "title", "category", "type", "team_size_min", "team_size_max", "department", "date", "external_date", "time", "location", "registration_open", "created_at", "updated_at"}).
		AddRow("code-sprint", "Code Sprint", "Technical", "Group", 2, 4, "Computer Science", "2025-03-14", "2025-03-15", "10:00", "Lab 3", true, now, now)
}

func TestEventFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery("FROM events WHERE custom_id = \\$1").WithArgs("code-sprint").WillReturnRows(eventRows())

	ev, err := repo.FindByID(context.Background(), "code-sprint")
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeGroup, ev.Type)
	assert.Equal(t, 4, ev.TeamSizeMax)
}

func TestEventListOpenOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE category = $1 AND registration_open = TRUE ORDER BY date ASC, title ASC")).
		WithArgs("Technical").
		WillReturnRows(eventRows())

	events, err := repo.List(context.Background(), models.EventFilter{Category: "Technical", OpenOnly: true})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
