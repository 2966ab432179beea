package repository

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func strPtr(v string) *string {
	return &v
}

const (
	leaderJSON = `{"name":"Asha Rao","email":"asha@example.com","phone":"9999999999","identityType":"INTERNAL_STUDENT","registerNumber":"22BCA001"}`
	teamJSON   = `[{"name":"Ravi Kumar","identityType":"INTERNAL_STUDENT","registerNumber":"22BCA002"}]`
)
