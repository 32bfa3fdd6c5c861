package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calendario/calendario-api/internal/models"
	"github.com/calendario/calendario-api/pkg/config"
	"github.com/calendario/calendario-api/pkg/email"
	"github.com/calendario/calendario-api/pkg/jobs"
)

const jobTypeEmail = "email"

type emailPayload struct {
	To      string
	Subject string
	Body    string
}

// NotificationService delivers booking and cancellation emails through a
// background worker pool, so HTTP requests never wait on SMTP.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService wires the email sender behind a job queue.
func NewNotificationService(sender email.Sender, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(emailPayload)
		if !ok {
			return fmt.Errorf("unexpected payload type for job %s", job.ID)
		}
		return sender.Send(payload.To, payload.Subject, payload.Body)
	}

	queue := jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})

	return &NotificationService{queue: queue, logger: logger}
}

// Start launches the worker pool.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// MeetingBooked notifies the guest and the host about a new booking.
func (s *NotificationService) MeetingBooked(meeting *models.Meeting, event *models.Event, host *models.User) {
	when := meeting.StartTime.Format(time.RFC1123)

	guestBody := fmt.Sprintf(
		"Hi %s,\n\nYour meeting %q with %s is confirmed for %s.",
		meeting.GuestName, event.Title, host.Name, when,
	)
	if meeting.MeetLink != "" {
		guestBody += fmt.Sprintf("\n\nJoin link: %s", meeting.MeetLink)
	}
	s.enqueue(meeting.GuestEmail, fmt.Sprintf("Confirmed: %s", event.Title), guestBody)

	hostBody := fmt.Sprintf(
		"Hi %s,\n\n%s (%s) booked %q for %s.",
		host.Name, meeting.GuestName, meeting.GuestEmail, event.Title, when,
	)
	s.enqueue(host.Email, fmt.Sprintf("New booking: %s", event.Title), hostBody)
}

// MeetingCancelled notifies the guest that the host cancelled.
func (s *NotificationService) MeetingCancelled(meeting *models.Meeting, host *models.User) {
	when := meeting.StartTime.Format(time.RFC1123)
	title := meeting.EventTitle
	if title == "" {
		title = "your meeting"
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour meeting %q with %s scheduled for %s has been cancelled.",
		meeting.GuestName, title, host.Name, when,
	)
	s.enqueue(meeting.GuestEmail, fmt.Sprintf("Cancelled: %s", title), body)
}

func (s *NotificationService) enqueue(to, subject, body string) {
	if s == nil || s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeEmail,
		Payload: emailPayload{To: to, Subject: subject, Body: body},
	})
	if err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("to", to), zap.Error(err))
	}
}
