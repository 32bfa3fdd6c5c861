package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/calendario/calendario-api/internal/calendar"
	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/models"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
	"github.com/calendario/calendario-api/pkg/export"
)

type meetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	FindByID(ctx context.Context, id string) (*models.Meeting, error)
	ListByUser(ctx context.Context, userID string, filter models.MeetingFilter, now time.Time) ([]models.Meeting, error)
	Cancel(ctx context.Context, id string) error
}

type meetingUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type meetingIntegrationRepository interface {
	FindByUserAndType(ctx context.Context, userID string, appType models.IntegrationAppType) (*models.Integration, error)
	UpdateTokens(ctx context.Context, id, accessToken string, expiry *time.Time) error
}

type calendarProvider interface {
	ClientFor(integration *models.Integration, persist calendar.TokenPersistFunc) calendar.Client
}

type availabilityInvalidator interface {
	InvalidateForUser(ctx context.Context, userID string)
}

// ExportFormat selects the rendering of a meeting export.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// MeetingService books, lists, cancels, and exports meetings.
type MeetingService struct {
	repo            meetingRepository
	eventRepo       availabilityEventRepository
	userRepo        meetingUserRepository
	integrationRepo meetingIntegrationRepository
	provider        calendarProvider
	notifications   *NotificationService
	invalidator     availabilityInvalidator
	metrics         *MetricsService
	validator       *validator.Validate
	logger          *zap.Logger
	now             func() time.Time
}

// NewMeetingService constructs the service.
func NewMeetingService(
	repo meetingRepository,
	eventRepo availabilityEventRepository,
	userRepo meetingUserRepository,
	integrationRepo meetingIntegrationRepository,
	provider calendarProvider,
	notifications *NotificationService,
	invalidator availabilityInvalidator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *MeetingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MeetingService{
		repo:            repo,
		eventRepo:       eventRepo,
		userRepo:        userRepo,
		integrationRepo: integrationRepo,
		provider:        provider,
		notifications:   notifications,
		invalidator:     invalidator,
		metrics:         metrics,
		validator:       validate,
		logger:          logger,
		now:             time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *MeetingService) WithClock(now func() time.Time) *MeetingService {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateForGuest books a meeting on behalf of an unauthenticated guest. For
// conferencing events the entry is mirrored to the host's calendar and the
// returned join link stored with the meeting.
func (s *MeetingService) CreateForGuest(ctx context.Context, req dto.CreateMeetingRequest) (*dto.MeetingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	if req.StartTime.Before(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "cannot book a meeting in the past")
	}

	event, err := s.eventRepo.FindByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	// Private events are invisible to guests; report them as missing.
	if event.IsPrivate {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}

	host, err := s.userRepo.FindByID(ctx, event.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load host")
	}

	meeting := &models.Meeting{
		UserID:         event.UserID,
		EventID:        event.ID,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		AdditionalInfo: req.AdditionalInfo,
		PhoneNumber:    req.PhoneNumber,
		Location:       req.Location,
		StartTime:      req.StartTime.UTC(),
		EndTime:        req.EndTime.UTC(),
		Status:         models.MeetingScheduled,
	}

	if event.LocationType == models.LocationGoogleMeet {
		client, err := s.calendarClientFor(ctx, event.UserID)
		if err != nil {
			return nil, err
		}
		created, err := client.CreateEvent(ctx, calendar.EventDetails{
			Title:         fmt.Sprintf("%s - %s", event.Title, req.GuestName),
			Description:   derefOrEmpty(req.AdditionalInfo),
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			HostEmail:     host.Email,
			AttendeeEmail: req.GuestEmail,
		})
		if err != nil {
			s.logger.Error("calendar event creation failed", zap.String("event_id", event.ID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "failed to create calendar event")
		}
		meeting.MeetLink = created.JoinURL
		meeting.CalendarEventID = created.EventID
		meeting.CalendarAppType = string(models.IntegrationGoogleMeet)
	}

	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store meeting")
	}

	if s.metrics != nil {
		s.metrics.RecordBooking()
	}
	if s.notifications != nil {
		s.notifications.MeetingBooked(meeting, event, host)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateForUser(ctx, event.UserID)
	}

	resp := toMeetingResponse(*meeting)
	resp.EventTitle = event.Title
	return &resp, nil
}

// ListForUser returns the host's meetings narrowed by filter. An unknown or
// empty filter defaults to upcoming.
func (s *MeetingService) ListForUser(ctx context.Context, userID, filter string) ([]dto.MeetingResponse, error) {
	meetings, err := s.repo.ListByUser(ctx, userID, parseFilter(filter), s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meetings")
	}
	result := make([]dto.MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		result = append(result, toMeetingResponse(m))
	}
	return result, nil
}

// Cancel cancels a scheduled meeting owned by the user. When the booking has
// a mirrored calendar entry, removal of that entry must succeed first.
func (s *MeetingService) Cancel(ctx context.Context, userID, meetingID string) error {
	meeting, err := s.repo.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meeting")
	}
	if meeting.UserID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "meeting does not belong to user")
	}
	if meeting.Status == models.MeetingCancelled {
		return appErrors.Clone(appErrors.ErrConflict, "meeting is already cancelled")
	}

	if meeting.CalendarEventID != "" {
		client, err := s.calendarClientFor(ctx, meeting.UserID)
		if err != nil {
			return err
		}
		if err := client.DeleteEvent(ctx, meeting.CalendarEventID); err != nil {
			s.logger.Error("calendar event deletion failed", zap.String("meeting_id", meeting.ID), zap.Error(err))
			return appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, "failed to delete calendar event")
		}
	}

	if err := s.repo.Cancel(ctx, meeting.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel meeting")
	}

	if s.metrics != nil {
		s.metrics.RecordCancellation()
	}
	if s.notifications != nil {
		host, err := s.userRepo.FindByID(ctx, meeting.UserID)
		if err != nil {
			s.logger.Warn("failed to load host for cancellation email", zap.Error(err))
		} else {
			s.notifications.MeetingCancelled(meeting, host)
		}
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateForUser(ctx, meeting.UserID)
	}
	return nil
}

// Export renders the host's filtered meetings as CSV or PDF.
func (s *MeetingService) Export(ctx context.Context, userID, filter string, format ExportFormat) ([]byte, string, error) {
	meetings, err := s.repo.ListByUser(ctx, userID, parseFilter(filter), s.now())
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meetings")
	}

	table := export.Table{
		Title:   "Meetings",
		Columns: []string{"Event", "Guest", "Email", "Start", "End", "Status"},
		Rows:    make([][]string, 0, len(meetings)),
	}
	for _, m := range meetings {
		table.Rows = append(table.Rows, []string{
			m.EventTitle,
			m.GuestName,
			m.GuestEmail,
			m.StartTime.Format(time.RFC3339),
			m.EndTime.Format(time.RFC3339),
			string(m.Status),
		})
	}

	switch format {
	case ExportCSV:
		data, err := export.CSV(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	case ExportPDF:
		data, err := export.PDF(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *MeetingService) calendarClientFor(ctx context.Context, userID string) (calendar.Client, error) {
	integration, err := s.integrationRepo.FindByUserAndType(ctx, userID, models.IntegrationGoogleMeet)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrBadRequest, "host has not connected Google Calendar")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load integration")
	}

	persist := func(accessToken string, expiry time.Time) error {
		return s.integrationRepo.UpdateTokens(ctx, integration.ID, accessToken, &expiry)
	}
	return s.provider.ClientFor(integration, persist), nil
}

func parseFilter(filter string) models.MeetingFilter {
	switch models.MeetingFilter(strings.ToUpper(filter)) {
	case models.MeetingFilterPast:
		return models.MeetingFilterPast
	case models.MeetingFilterCancelled:
		return models.MeetingFilterCancelled
	default:
		return models.MeetingFilterUpcoming
	}
}

func toMeetingResponse(m models.Meeting) dto.MeetingResponse {
	return dto.MeetingResponse{
		ID:             m.ID,
		EventID:        m.EventID,
		EventTitle:     m.EventTitle,
		GuestName:      m.GuestName,
		GuestEmail:     m.GuestEmail,
		AdditionalInfo: m.AdditionalInfo,
		StartTime:      m.StartTime,
		EndTime:        m.EndTime,
		MeetLink:       m.MeetLink,
		Status:         string(m.Status),
	}
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
