package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/middleware"
	"github.com/calendario/calendario-api/internal/models"
	"github.com/calendario/calendario-api/internal/service"
)

type weeklyRepoStub struct {
	av *models.Availability
}

func (s *weeklyRepoStub) GetByUserID(ctx context.Context, userID string) (*models.Availability, error) {
	if s.av == nil {
		return nil, sql.ErrNoRows
	}
	return s.av, nil
}

func (s *weeklyRepoStub) Create(ctx context.Context, av *models.Availability) error { return nil }

func (s *weeklyRepoStub) ReplaceDays(ctx context.Context, availabilityID string, timeGap int, days []models.DayAvailability) error {
	return nil
}

func (s *weeklyRepoStub) GetByEventID(ctx context.Context, eventID string) (*models.Availability, error) {
	if s.av == nil {
		return nil, sql.ErrNoRows
	}
	return s.av, nil
}

type eventFinderStub struct {
	event *models.Event
}

func (s *eventFinderStub) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if s.event == nil {
		return nil, sql.ErrNoRows
	}
	return s.event, nil
}

type noMeetingsStub struct{}

func (noMeetingsStub) ListBlocking(ctx context.Context, userID string, from, to time.Time) ([]models.Meeting, error) {
	return nil, nil
}

func openWednesdayTemplate() *models.Availability {
	days := make([]models.DayAvailability, 0, 7)
	for _, d := range models.Weekdays {
		days = append(days, models.DayAvailability{
			Day:         d,
			StartTime:   "09:00",
			EndTime:     "17:00",
			IsAvailable: d == models.Wednesday,
		})
	}
	return &models.Availability{ID: "av-1", UserID: "user-1", TimeGap: 30, Days: days}
}

func newAvailabilityHandler(av *models.Availability, event *models.Event, now time.Time) *AvailabilityHandler {
	svc := service.NewAvailabilityService(&weeklyRepoStub{av: av}, &eventFinderStub{event: event}, noMeetingsStub{}, nil, nil, nil, nil, time.Minute, "UTC")
	svc.WithClock(func() time.Time { return now })
	return NewAvailabilityHandler(svc)
}

func TestAvailabilityHandlerGetMineUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAvailabilityHandler(nil, nil, time.Now())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/availability/me", nil)

	handler.GetMine(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAvailabilityHandlerGetMineDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	emptyWeek := &models.Availability{ID: "av-1", UserID: "user-1", TimeGap: 30}
	handler := newAvailabilityHandler(emptyWeek, nil, time.Now())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/availability/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})

	handler.GetMine(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.OwnerAvailabilityResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 30, envelope.Data.TimeGap)
	assert.Len(t, envelope.Data.Days, 7)
}

func TestAvailabilityHandlerUpdateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAvailabilityHandler(nil, nil, time.Now())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPut, "/availability/me", bytes.NewReader([]byte(`not json`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})

	handler.UpdateMine(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerGetPublicReturnsWeek(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	event := &models.Event{ID: "event-1", UserID: "user-1", Title: "Intro", Duration: 30}
	handler := newAvailabilityHandler(openWednesdayTemplate(), event, now)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/availability/public/event-1", nil)
	c.Params = gin.Params{{Key: "eventId", Value: "event-1"}}

	handler.GetPublic(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []dto.PublicDayAvailability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 7)
	assert.Equal(t, "WEDNESDAY", envelope.Data[3].Day)
	require.Len(t, envelope.Data[3].Dates, 4)
	assert.Len(t, envelope.Data[3].Dates[0].Slots, 17)
}

func TestAvailabilityHandlerGetPublicUnknownEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAvailabilityHandler(nil, nil, time.Now())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/availability/public/missing", nil)
	c.Params = gin.Params{{Key: "eventId", Value: "missing"}}

	handler.GetPublic(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []dto.PublicDayAvailability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
}
