package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calendario/calendario-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestAvailabilityRepositoryGetByUserID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT id, user_id, time_gap").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "time_gap", "created_at", "updated_at"}).
			AddRow("av-1", "user-1", 30, now, now))
	mock.ExpectQuery("SELECT id, availability_id, day").
		WithArgs("av-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "availability_id", "day", "start_time", "end_time", "is_available"}).
			AddRow("day-1", "av-1", "MONDAY", "09:00", "17:00", true).
			AddRow("day-2", "av-1", "TUESDAY", "09:00", "17:00", false))

	av, err := repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 30, av.TimeGap)
	require.Len(t, av.Days, 2)
	assert.Equal(t, models.Monday, av.Days[0].Day)
	assert.True(t, av.Days[0].IsAvailable)
}

func TestAvailabilityRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO availabilities").
		WillReturnResult(sqlmock.NewResult(1, 1))
	for range models.Weekdays {
		mock.ExpectExec("INSERT INTO day_availabilities").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	days := make([]models.DayAvailability, 0, len(models.Weekdays))
	for _, d := range models.Weekdays {
		days = append(days, models.DayAvailability{Day: d, StartTime: "09:00", EndTime: "17:00"})
	}
	av := &models.Availability{UserID: "user-1", TimeGap: 30, Days: days}
	require.NoError(t, repo.Create(context.Background(), av))
	assert.NotEmpty(t, av.ID)
}

func TestAvailabilityRepositoryReplaceDays(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE availabilities SET time_gap").
		WithArgs("av-1", 45, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM day_availabilities").
		WithArgs("av-1").
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec("INSERT INTO day_availabilities").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	days := []models.DayAvailability{{Day: models.Monday, StartTime: "10:00", EndTime: "16:00", IsAvailable: true}}
	require.NoError(t, repo.ReplaceDays(context.Background(), "av-1", 45, days))
	assert.Equal(t, "av-1", days[0].AvailabilityID)
}

func TestAvailabilityRepositoryGetByEventID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAvailabilityRepository(db)
	now := time.Now()

	mock.ExpectQuery("JOIN events e ON").
		WithArgs("event-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "time_gap", "created_at", "updated_at"}).
			AddRow("av-1", "user-1", 30, now, now))
	mock.ExpectQuery("SELECT id, availability_id, day").
		WithArgs("av-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "availability_id", "day", "start_time", "end_time", "is_available"}))

	av, err := repo.GetByEventID(context.Background(), "event-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", av.UserID)
	assert.Empty(t, av.Days)
}
