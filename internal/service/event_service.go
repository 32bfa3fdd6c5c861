package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/models"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
)

type eventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	FindByUsernameAndSlug(ctx context.Context, username, slug string) (*models.Event, error)
	ListByUser(ctx context.Context, userID string) ([]models.Event, error)
	ListPublicByUsername(ctx context.Context, username string) ([]models.Event, error)
	TogglePrivacy(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, event *models.Event) error
	SlugExists(ctx context.Context, userID, slug string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type eventUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type eventIntegrationRepository interface {
	Exists(ctx context.Context, userID string, appType models.IntegrationAppType) (bool, error)
}

// EventService manages bookable event types.
type EventService struct {
	repo            eventRepository
	userRepo        eventUserRepository
	integrationRepo eventIntegrationRepository
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(repo eventRepository, userRepo eventUserRepository, integrationRepo eventIntegrationRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{repo: repo, userRepo: userRepo, integrationRepo: integrationRepo, validator: validate, logger: logger}
}

// Create adds a new event type for the owner. Conferencing locations require
// the matching calendar integration to be connected first.
func (s *EventService) Create(ctx context.Context, userID string, req dto.CreateEventRequest) (*dto.EventResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	locationType := models.EventLocationType(req.LocationType)
	if !locationType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported location type %q", req.LocationType))
	}

	if locationType == models.LocationGoogleMeet {
		connected, err := s.integrationRepo.Exists(ctx, userID, models.IntegrationGoogleMeet)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check integration")
		}
		if !connected {
			return nil, appErrors.Clone(appErrors.ErrBadRequest, "connect Google Calendar before using Google Meet events")
		}
	}

	eventSlug, err := s.uniqueSlug(ctx, userID, req.Title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate slug")
	}

	event := &models.Event{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		Slug:         eventSlug,
		Duration:     req.Duration,
		LocationType: locationType,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	resp := toEventResponse(*event)
	return &resp, nil
}

// ListForUser returns the owner's event types with booking counts.
func (s *EventService) ListForUser(ctx context.Context, userID string) ([]dto.EventResponse, error) {
	events, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	result := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		result = append(result, toEventResponse(e))
	}
	return result, nil
}

// Update edits an event type owned by the user. The slug is left untouched so
// shared booking links stay valid. Switching to a conferencing location
// requires the matching integration, same as Create.
func (s *EventService) Update(ctx context.Context, userID, eventID string, req dto.UpdateEventRequest) (*dto.EventResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	event, err := s.ownedEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	locationType := models.EventLocationType(req.LocationType)
	if !locationType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported location type %q", req.LocationType))
	}
	if locationType == models.LocationGoogleMeet && event.LocationType != models.LocationGoogleMeet {
		connected, err := s.integrationRepo.Exists(ctx, userID, models.IntegrationGoogleMeet)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check integration")
		}
		if !connected {
			return nil, appErrors.Clone(appErrors.ErrBadRequest, "connect Google Calendar before using Google Meet events")
		}
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Duration = req.Duration
	event.LocationType = locationType
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}

	resp := toEventResponse(*event)
	return &resp, nil
}

// TogglePrivacy flips an event between public and private.
func (s *EventService) TogglePrivacy(ctx context.Context, userID, eventID string) (bool, error) {
	event, err := s.ownedEvent(ctx, userID, eventID)
	if err != nil {
		return false, err
	}
	isPrivate, err := s.repo.TogglePrivacy(ctx, event.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle privacy")
	}
	return isPrivate, nil
}

// Delete removes an event type owned by the user.
func (s *EventService) Delete(ctx context.Context, userID, eventID string) error {
	event, err := s.ownedEvent(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, event.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}

// GetPublicByUsername returns a host's public booking page: profile plus
// non-private events.
func (s *EventService) GetPublicByUsername(ctx context.Context, username string) (*dto.PublicEventListResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	events, err := s.repo.ListPublicByUsername(ctx, username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	resp := &dto.PublicEventListResponse{
		User: dto.UserResponse{
			ID:       user.ID,
			Name:     user.Name,
			Username: user.Username,
			Email:    user.Email,
			ImageURL: user.ImageURL,
		},
		Events: make([]dto.EventResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, toEventResponse(e))
	}
	return resp, nil
}

// GetPublicEvent resolves one bookable event from a public link.
func (s *EventService) GetPublicEvent(ctx context.Context, username, eventSlug string) (*dto.EventResponse, error) {
	event, err := s.repo.FindByUsernameAndSlug(ctx, username, eventSlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.IsPrivate {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	resp := toEventResponse(*event)
	return &resp, nil
}

func (s *EventService) ownedEvent(ctx context.Context, userID, eventID string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "event does not belong to user")
	}
	return event, nil
}

func (s *EventService) uniqueSlug(ctx context.Context, userID, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "event"
	}
	candidate := base
	for attempt := 0; attempt < 5; attempt++ {
		exists, err := s.repo.SlugExists(ctx, userID, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:6])
	}
	return candidate, nil
}

func toEventResponse(e models.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Slug:         e.Slug,
		Duration:     e.Duration,
		LocationType: string(e.LocationType),
		IsPrivate:    e.IsPrivate,
		MeetingCount: e.MeetingCount,
	}
}
