package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/calendario/calendario-api/internal/availability"
	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/models"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
)

// occurrencesPerDay is how many upcoming dates are offered per weekday on the
// public booking page.
const occurrencesPerDay = 4

type availabilityRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Availability, error)
	Create(ctx context.Context, av *models.Availability) error
	ReplaceDays(ctx context.Context, availabilityID string, timeGap int, days []models.DayAvailability) error
	GetByEventID(ctx context.Context, eventID string) (*models.Availability, error)
}

type availabilityEventRepository interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type blockingMeetingRepository interface {
	ListBlocking(ctx context.Context, userID string, from, to time.Time) ([]models.Meeting, error)
}

// AvailabilityService computes owner templates and public booking slots.
type AvailabilityService struct {
	repo        availabilityRepository
	eventRepo   availabilityEventRepository
	meetingRepo blockingMeetingRepository
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cacheTTL    time.Duration
	loc         *time.Location
	now         func() time.Time
}

// NewAvailabilityService constructs the service. The timezone names the
// wall-clock used for slot computation; an empty or invalid value falls back
// to the server's local zone.
func NewAvailabilityService(
	repo availabilityRepository,
	eventRepo availabilityEventRepository,
	meetingRepo blockingMeetingRepository,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cacheTTL time.Duration,
	timezone string,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	loc := time.Local
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			loc = parsed
		} else {
			logger.Warn("invalid booking timezone, using local", zap.String("timezone", timezone), zap.Error(err))
		}
	}
	return &AvailabilityService{
		repo:        repo,
		eventRepo:   eventRepo,
		meetingRepo: meetingRepo,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cacheTTL:    cacheTTL,
		loc:         loc,
		now:         time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *AvailabilityService) WithClock(now func() time.Time) *AvailabilityService {
	if now != nil {
		s.now = now
	}
	return s
}

// GetUserAvailability returns the owner's weekly template, always seven days
// in Sunday-first order. A record with no stored day rows yields the closed
// default week; a user without a record at all is NotFound.
func (s *AvailabilityService) GetUserAvailability(ctx context.Context, userID string) (*dto.OwnerAvailabilityResponse, error) {
	av, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	byDay := dayIndex(av.Days)
	resp := &dto.OwnerAvailabilityResponse{
		TimeGap: av.TimeGap,
		Days:    make([]dto.DayAvailabilityItem, 0, len(models.Weekdays)),
	}
	for _, day := range models.Weekdays {
		item := dto.DayAvailabilityItem{Day: string(day), StartTime: "09:00", EndTime: "17:00"}
		if row, ok := byDay[day]; ok {
			item.StartTime = row.StartTime
			item.EndTime = row.EndTime
			item.IsAvailable = row.IsAvailable
		}
		resp.Days = append(resp.Days, item)
	}
	return resp, nil
}

// UpdateAvailability replaces the owner's weekly template and invalidates any
// cached public availability derived from it.
func (s *AvailabilityService) UpdateAvailability(ctx context.Context, userID string, req dto.UpdateAvailabilityRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	days := make([]models.DayAvailability, 0, len(req.Days))
	seen := make(map[models.Weekday]bool, len(req.Days))
	for _, item := range req.Days {
		day := models.Weekday(item.Day)
		if !day.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", item.Day))
		}
		if seen[day] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate weekday %q", item.Day))
		}
		seen[day] = true
		if _, err := availability.ParseTimeOfDay(item.StartTime); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid start time %q", item.StartTime))
		}
		if _, err := availability.ParseTimeOfDay(item.EndTime); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid end time %q", item.EndTime))
		}
		days = append(days, models.DayAvailability{
			Day:         day,
			StartTime:   item.StartTime,
			EndTime:     item.EndTime,
			IsAvailable: item.IsAvailable,
		})
	}

	av, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			created := &models.Availability{UserID: userID, TimeGap: req.TimeGap, Days: days}
			if err := s.repo.Create(ctx, created); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability")
			}
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	if err := s.repo.ReplaceDays(ctx, av.ID, req.TimeGap, days); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, fmt.Sprintf("availability:user:%s:*", userID)); err != nil {
			s.logger.Warn("failed to invalidate availability cache", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// GetPublicEventAvailability computes the guest view for one event: for each
// weekday, the next bookable dates falling on it and the open start times per
// date. The reference time is captured once so every weekday is computed
// against the same instant.
func (s *AvailabilityService) GetPublicEventAvailability(ctx context.Context, eventID string) ([]dto.PublicDayAvailability, error) {
	// Unknown or private events never error on the guest path; absence
	// simply means nothing is bookable.
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []dto.PublicDayAvailability{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.IsPrivate {
		return []dto.PublicDayAvailability{}, nil
	}

	cacheKey := fmt.Sprintf("availability:user:%s:event:%s", event.UserID, event.ID)
	var cached []dto.PublicDayAvailability
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	av, err := s.repo.GetByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []dto.PublicDayAvailability{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	started := time.Now()
	now := s.now().In(s.loc)

	// One lookup window covers the furthest occurrence any weekday can reach.
	horizon := availability.DateOf(now).AddDays(7 * (occurrencesPerDay + 1)).At(availability.TimeOfDay{}, s.loc)
	meetings, err := s.meetingRepo.ListBlocking(ctx, av.UserID, now.Add(-24*time.Hour), horizon)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booked meetings")
	}
	busy := make([]availability.Busy, 0, len(meetings))
	for _, m := range meetings {
		busy = append(busy, availability.Busy{Start: m.StartTime.In(s.loc), End: m.EndTime.In(s.loc)})
	}

	byDay := dayIndex(av.Days)
	result := make([]dto.PublicDayAvailability, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		// Weekdays with no template row are omitted entirely; a stored
		// closed day is reported as unavailable.
		row, ok := byDay[day]
		if !ok {
			continue
		}
		entry := dto.PublicDayAvailability{Day: string(day), Dates: []dto.DateSlots{}}
		if !row.IsAvailable {
			result = append(result, entry)
			continue
		}
		entry.IsAvailable = true

		windowStart, err := availability.ParseTimeOfDay(row.StartTime)
		if err != nil {
			s.logger.Warn("stored start time unparseable", zap.String("day", string(day)), zap.String("value", row.StartTime))
			result = append(result, entry)
			continue
		}
		windowEnd, err := availability.ParseTimeOfDay(row.EndTime)
		if err != nil {
			s.logger.Warn("stored end time unparseable", zap.String("day", string(day)), zap.String("value", row.EndTime))
			result = append(result, entry)
			continue
		}

		// Today only counts as an occurrence if it still has an open slot.
		probe := func(date availability.CalendarDate) bool {
			return len(availability.GenerateSlots(date, windowStart, windowEnd, event.Duration, av.TimeGap, busy, now)) > 0
		}

		dates := availability.NextOccurrences(day.TimeWeekday(), now, occurrencesPerDay, probe)
		for _, date := range dates {
			slots := availability.GenerateSlots(date, windowStart, windowEnd, event.Duration, av.TimeGap, busy, now)
			if len(slots) == 0 {
				continue
			}
			strs := make([]string, len(slots))
			for i, slot := range slots {
				strs[i] = slot.String()
			}
			entry.Dates = append(entry.Dates, dto.DateSlots{Date: date.String(), Slots: strs})
		}
		result = append(result, entry)
	}

	if s.metrics != nil {
		s.metrics.ObserveSlotComputation(time.Since(started))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache public availability", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return result, nil
}

// InvalidateForUser drops every cached availability payload for the user's
// events, typically after a booking or cancellation changes the busy set.
func (s *AvailabilityService) InvalidateForUser(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("availability:user:%s:*", userID)); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.String("user_id", userID), zap.Error(err))
	}
}

func dayIndex(days []models.DayAvailability) map[models.Weekday]models.DayAvailability {
	byDay := make(map[models.Weekday]models.DayAvailability, len(days))
	for _, d := range days {
		byDay[d.Day] = d
	}
	return byDay
}
