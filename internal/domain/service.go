// Package domain defines the business logic for the activity signup service.
package domain

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/signup/internal/events"
	"example.com/signup/internal/observability"
)

// Roster captures the directory operations the service depends on.
type Roster interface {
	List() []Activity
	Get(name string) (Activity, error)
	Signup(name, email string) (Activity, error)
	Unregister(name, email string) (Activity, error)
}

// EventPublisher receives roster changes after they are applied.
type EventPublisher interface {
	Publish(ctx context.Context, event events.RosterChanged) error
}

// Service orchestrates roster workflows.
type Service struct {
	roster    Roster
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	sequences map[string]int64
}

// NewService constructs a Service.
func NewService(roster Roster, publisher EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		roster:    roster,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		sequences: make(map[string]int64),
	}
}

// ListActivities returns every activity in the directory.
func (s *Service) ListActivities(ctx context.Context) []Activity {
	return s.roster.List()
}

// GetActivity fetches by name.
func (s *Service) GetActivity(ctx context.Context, name string) (Activity, error) {
	return s.roster.Get(name)
}

// Signup adds email to the named activity.
func (s *Service) Signup(ctx context.Context, name, email string) (Activity, error) {
	activity, err := s.roster.Signup(name, email)
	if err != nil {
		observability.RecordRosterOperation(events.ActionSignup, outcome(err))
		return Activity{}, err
	}
	observability.RecordRosterOperation(events.ActionSignup, "ok")
	s.emit(ctx, events.ActionSignup, activity, email)
	return activity, nil
}

// Unregister removes email from the named activity.
func (s *Service) Unregister(ctx context.Context, name, email string) (Activity, error) {
	activity, err := s.roster.Unregister(name, email)
	if err != nil {
		observability.RecordRosterOperation(events.ActionUnregister, outcome(err))
		return Activity{}, err
	}
	observability.RecordRosterOperation(events.ActionUnregister, "ok")
	s.emit(ctx, events.ActionUnregister, activity, email)
	return activity, nil
}

// emit never fails the caller; the roster change has already been applied.
func (s *Service) emit(ctx context.Context, action string, activity Activity, email string) {
	s.recordSize(activity)

	if s.publisher == nil {
		return
	}
	event := events.RosterChanged{
		EventID:         uuid.NewString(),
		Activity:        activity.Name,
		Email:           email,
		Action:          action,
		Participants:    len(activity.Participants),
		MaxParticipants: activity.MaxParticipants,
		Sequence:        activity.Sequence,
		OccurredAt:      s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("roster event not published",
			zap.String("event_id", event.EventID),
			zap.String("activity", event.Activity),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// recordSize only moves the gauge forward; a change applied earlier but
// reported later is ignored.
func (s *Service) recordSize(activity Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if activity.Sequence <= s.sequences[activity.Name] {
		return
	}
	s.sequences[activity.Name] = activity.Sequence
	observability.SetRosterSize(activity.Name, len(activity.Participants))
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrActivityNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, ErrActivityFull):
		return "activity_full"
	default:
		return "error"
	}
}
