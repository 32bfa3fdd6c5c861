package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calendario/calendario-api/internal/calendar"
	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/models"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
)

type meetingRepoStub struct {
	meetings  map[string]*models.Meeting
	created   *models.Meeting
	cancelled []string
}

func newMeetingRepoStub() *meetingRepoStub {
	return &meetingRepoStub{meetings: map[string]*models.Meeting{}}
}

func (s *meetingRepoStub) Create(ctx context.Context, meeting *models.Meeting) error {
	if meeting.ID == "" {
		meeting.ID = "meeting-1"
	}
	s.created = meeting
	s.meetings[meeting.ID] = meeting
	return nil
}

func (s *meetingRepoStub) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	if m, ok := s.meetings[id]; ok {
		return m, nil
	}
	return nil, sql.ErrNoRows
}

func (s *meetingRepoStub) ListByUser(ctx context.Context, userID string, filter models.MeetingFilter, now time.Time) ([]models.Meeting, error) {
	var result []models.Meeting
	for _, m := range s.meetings {
		if m.UserID == userID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (s *meetingRepoStub) Cancel(ctx context.Context, id string) error {
	s.cancelled = append(s.cancelled, id)
	if m, ok := s.meetings[id]; ok {
		m.Status = models.MeetingCancelled
	}
	return nil
}

type meetingUserRepoStub struct {
	users map[string]*models.User
}

func (s *meetingUserRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type integrationRepoStub struct {
	integration *models.Integration
	updatedID   string
}

func (s *integrationRepoStub) FindByUserAndType(ctx context.Context, userID string, appType models.IntegrationAppType) (*models.Integration, error) {
	if s.integration == nil {
		return nil, sql.ErrNoRows
	}
	return s.integration, nil
}

func (s *integrationRepoStub) UpdateTokens(ctx context.Context, id, accessToken string, expiry *time.Time) error {
	s.updatedID = id
	return nil
}

type calendarClientStub struct {
	created   *calendar.EventDetails
	deleted   []string
	createErr error
	deleteErr error
}

func (c *calendarClientStub) CreateEvent(ctx context.Context, details calendar.EventDetails) (*calendar.CreatedEvent, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.created = &details
	return &calendar.CreatedEvent{EventID: "gcal-1", JoinURL: "https://meet.google.com/abc"}, nil
}

func (c *calendarClientStub) DeleteEvent(ctx context.Context, eventID string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deleted = append(c.deleted, eventID)
	return nil
}

type providerStub struct {
	client *calendarClientStub
}

func (p *providerStub) ClientFor(integration *models.Integration, persist calendar.TokenPersistFunc) calendar.Client {
	return p.client
}

type invalidatorStub struct {
	userIDs []string
}

func (s *invalidatorStub) InvalidateForUser(ctx context.Context, userID string) {
	s.userIDs = append(s.userIDs, userID)
}

func newMeetingServiceForTest(
	repo *meetingRepoStub,
	eventRepo *eventRepoStub,
	users *meetingUserRepoStub,
	integrations *integrationRepoStub,
	provider *providerStub,
	invalidator *invalidatorStub,
	now time.Time,
) *MeetingService {
	svc := NewMeetingService(repo, eventRepo, users, integrations, provider, nil, invalidator, nil, validator.New(), nil)
	return svc.WithClock(func() time.Time { return now })
}

func googleEvent() *models.Event {
	return &models.Event{
		ID:           "550e8400-e29b-41d4-a716-446655440000",
		UserID:       "host-1",
		Title:        "Intro call",
		Duration:     30,
		LocationType: models.LocationGoogleMeet,
	}
}

func validBooking(eventID string, start time.Time) dto.CreateMeetingRequest {
	return dto.CreateMeetingRequest{
		EventID:    eventID,
		GuestName:  "Ada",
		GuestEmail: "ada@example.com",
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
	}
}

func TestCreateForGuestMirrorsToCalendar(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	event := googleEvent()
	repo := newMeetingRepoStub()
	client := &calendarClientStub{}
	invalidator := &invalidatorStub{}
	svc := newMeetingServiceForTest(
		repo,
		&eventRepoStub{event: event},
		&meetingUserRepoStub{users: map[string]*models.User{"host-1": {ID: "host-1", Name: "Host", Email: "host@example.com"}}},
		&integrationRepoStub{integration: &models.Integration{ID: "int-1", UserID: "host-1", AppType: models.IntegrationGoogleMeet}},
		&providerStub{client: client},
		invalidator,
		now,
	)

	resp, err := svc.CreateForGuest(context.Background(), validBooking(event.ID, now.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/abc", resp.MeetLink)
	assert.Equal(t, "SCHEDULED", resp.Status)

	require.NotNil(t, repo.created)
	assert.Equal(t, "gcal-1", repo.created.CalendarEventID)
	assert.Equal(t, "host-1", repo.created.UserID)
	require.NotNil(t, client.created)
	assert.Equal(t, "host@example.com", client.created.HostEmail)
	assert.Equal(t, []string{"host-1"}, invalidator.userIDs)
}

func TestCreateForGuestRequiresIntegration(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	event := googleEvent()
	svc := newMeetingServiceForTest(
		newMeetingRepoStub(),
		&eventRepoStub{event: event},
		&meetingUserRepoStub{users: map[string]*models.User{"host-1": {ID: "host-1"}}},
		&integrationRepoStub{},
		&providerStub{client: &calendarClientStub{}},
		&invalidatorStub{},
		now,
	)

	_, err := svc.CreateForGuest(context.Background(), validBooking(event.ID, now.Add(24*time.Hour)))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrors.FromError(err).Code)
}

func TestCreateForGuestPrivateEventNotFound(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	event := googleEvent()
	event.IsPrivate = true
	repo := newMeetingRepoStub()
	svc := newMeetingServiceForTest(
		repo,
		&eventRepoStub{event: event},
		&meetingUserRepoStub{users: map[string]*models.User{"host-1": {ID: "host-1"}}},
		&integrationRepoStub{integration: &models.Integration{ID: "int-1", UserID: "host-1"}},
		&providerStub{client: &calendarClientStub{}},
		&invalidatorStub{},
		now,
	)

	_, err := svc.CreateForGuest(context.Background(), validBooking(event.ID, now.Add(24*time.Hour)))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestCreateForGuestRejectsPastStart(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	event := googleEvent()
	svc := newMeetingServiceForTest(
		newMeetingRepoStub(),
		&eventRepoStub{event: event},
		&meetingUserRepoStub{users: map[string]*models.User{"host-1": {ID: "host-1"}}},
		&integrationRepoStub{},
		&providerStub{client: &calendarClientStub{}},
		&invalidatorStub{},
		now,
	)

	_, err := svc.CreateForGuest(context.Background(), validBooking(event.ID, now.Add(-time.Hour)))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrors.FromError(err).Code)
}

func TestCreateForGuestInPersonSkipsCalendar(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	event := googleEvent()
	event.LocationType = models.LocationInPerson
	repo := newMeetingRepoStub()
	client := &calendarClientStub{}
	svc := newMeetingServiceForTest(
		repo,
		&eventRepoStub{event: event},
		&meetingUserRepoStub{users: map[string]*models.User{"host-1": {ID: "host-1"}}},
		&integrationRepoStub{},
		&providerStub{client: client},
		&invalidatorStub{},
		now,
	)

	resp, err := svc.CreateForGuest(context.Background(), validBooking(event.ID, now.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, resp.MeetLink)
	assert.Nil(t, client.created)
	assert.Empty(t, repo.created.CalendarEventID)
}

func TestCancelDeletesCalendarEntry(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	repo := newMeetingRepoStub()
	repo.meetings["meeting-1"] = &models.Meeting{
		ID:              "meeting-1",
		UserID:          "host-1",
		Status:          models.MeetingScheduled,
		CalendarEventID: "gcal-1",
		GuestName:       "Ada",
		GuestEmail:      "ada@example.com",
		StartTime:       now.Add(24 * time.Hour),
	}
	client := &calendarClientStub{}
	invalidator := &invalidatorStub{}
	svc := newMeetingServiceForTest(
		repo,
		&eventRepoStub{},
		&meetingUserRepoStub{users: map[string]*models.User{"host-1": {ID: "host-1", Name: "Host"}}},
		&integrationRepoStub{integration: &models.Integration{ID: "int-1", UserID: "host-1"}},
		&providerStub{client: client},
		invalidator,
		now,
	)

	require.NoError(t, svc.Cancel(context.Background(), "host-1", "meeting-1"))
	assert.Equal(t, []string{"gcal-1"}, client.deleted)
	assert.Equal(t, []string{"meeting-1"}, repo.cancelled)
	assert.Equal(t, []string{"host-1"}, invalidator.userIDs)
}

func TestCancelFailsWhenCalendarDeleteFails(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	repo := newMeetingRepoStub()
	repo.meetings["meeting-1"] = &models.Meeting{
		ID:              "meeting-1",
		UserID:          "host-1",
		Status:          models.MeetingScheduled,
		CalendarEventID: "gcal-1",
	}
	client := &calendarClientStub{deleteErr: errors.New("api down")}
	svc := newMeetingServiceForTest(
		repo,
		&eventRepoStub{},
		&meetingUserRepoStub{users: map[string]*models.User{}},
		&integrationRepoStub{integration: &models.Integration{ID: "int-1", UserID: "host-1"}},
		&providerStub{client: client},
		&invalidatorStub{},
		now,
	)

	err := svc.Cancel(context.Background(), "host-1", "meeting-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.cancelled)
}

func TestCancelForeignMeetingForbidden(t *testing.T) {
	repo := newMeetingRepoStub()
	repo.meetings["meeting-1"] = &models.Meeting{ID: "meeting-1", UserID: "host-1", Status: models.MeetingScheduled}
	svc := newMeetingServiceForTest(repo, &eventRepoStub{}, &meetingUserRepoStub{}, &integrationRepoStub{}, &providerStub{client: &calendarClientStub{}}, &invalidatorStub{}, time.Now())

	err := svc.Cancel(context.Background(), "intruder", "meeting-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCancelAlreadyCancelledConflicts(t *testing.T) {
	repo := newMeetingRepoStub()
	repo.meetings["meeting-1"] = &models.Meeting{ID: "meeting-1", UserID: "host-1", Status: models.MeetingCancelled}
	svc := newMeetingServiceForTest(repo, &eventRepoStub{}, &meetingUserRepoStub{}, &integrationRepoStub{}, &providerStub{client: &calendarClientStub{}}, &invalidatorStub{}, time.Now())

	err := svc.Cancel(context.Background(), "host-1", "meeting-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestExportCSV(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	repo := newMeetingRepoStub()
	repo.meetings["meeting-1"] = &models.Meeting{
		ID:         "meeting-1",
		UserID:     "host-1",
		EventTitle: "Intro call",
		GuestName:  "Ada",
		GuestEmail: "ada@example.com",
		StartTime:  now.Add(time.Hour),
		EndTime:    now.Add(90 * time.Minute),
		Status:     models.MeetingScheduled,
	}
	svc := newMeetingServiceForTest(repo, &eventRepoStub{}, &meetingUserRepoStub{}, &integrationRepoStub{}, &providerStub{client: &calendarClientStub{}}, &invalidatorStub{}, now)

	data, contentType, err := svc.Export(context.Background(), "host-1", "UPCOMING", ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(data), "Intro call")
	assert.Contains(t, string(data), "ada@example.com")
}

func TestExportUnknownFormat(t *testing.T) {
	svc := newMeetingServiceForTest(newMeetingRepoStub(), &eventRepoStub{}, &meetingUserRepoStub{}, &integrationRepoStub{}, &providerStub{client: &calendarClientStub{}}, &invalidatorStub{}, time.Now())

	_, _, err := svc.Export(context.Background(), "host-1", "UPCOMING", ExportFormat("xml"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
