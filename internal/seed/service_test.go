package seed

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-dashboard/internal/calls"
)

func TestAuthorize(t *testing.T) {
	assert.NoError(t, NewService(nil, "").Authorize(""))

	svc := NewService(nil, "s3cret")
	assert.ErrorIs(t, svc.Authorize(""), ErrUnauthorized)
	assert.ErrorIs(t, svc.Authorize("wrong"), ErrUnauthorized)
	assert.NoError(t, svc.Authorize("s3cret"))
}

func TestSeed_WritesBatchToMemory(t *testing.T) {
	callRepo := calls.NewMemoryRepo(nil)
	repo := NewMemoryRepo(callRepo)

	sum, err := NewService(repo, "").Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Calls: 100, UsageHistory: 50, Payments: 20}, sum)
	assert.Len(t, callRepo.Snapshot(), 100)

	usage, payments := repo.Counts()
	assert.Equal(t, 50, usage)
	assert.Equal(t, 20, payments)
}

func TestPostgresRepo_WriteIsOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	g := testGenerator(fixedNow)
	b := Batch{Calls: g.Calls(2), Usage: g.Usage(1), Payments: g.Payments(1)}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO calls").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO calls").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertUsageSQL)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertPaymentSQL)).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = NewPostgresRepo(db).Write(context.Background(), b)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
