package consumer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"example.com/signup/internal/events"
)

// AuditHandler logs every roster change and keeps the latest reported roster
// size per activity. Events at or below the last seen sequence are stale.
type AuditHandler struct {
	logger *zap.Logger

	mu     sync.Mutex
	latest map[string]rosterState
}

type rosterState struct {
	size     int
	sequence int64
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{
		logger: logger,
		latest: make(map[string]rosterState),
	}
}

// Handle implements Handler.
func (h *AuditHandler) Handle(ctx context.Context, msg Message) error {
	event := msg.Event
	switch event.Action {
	case events.ActionSignup, events.ActionUnregister:
	default:
		return fmt.Errorf("unknown roster action %q", event.Action)
	}

	h.mu.Lock()
	if last, seen := h.latest[event.Activity]; seen && event.Sequence <= last.sequence {
		h.mu.Unlock()
		h.logger.Debug("stale roster event ignored",
			zap.String("event_id", event.EventID),
			zap.String("activity", event.Activity),
			zap.Int64("sequence", event.Sequence),
			zap.Int64("latest_sequence", last.sequence),
		)
		return nil
	}
	h.latest[event.Activity] = rosterState{size: event.Participants, sequence: event.Sequence}
	observedRosterSize.WithLabelValues(event.Activity).Set(float64(event.Participants))
	h.mu.Unlock()

	h.logger.Info("roster changed",
		zap.String("event_id", event.EventID),
		zap.String("activity", event.Activity),
		zap.String("action", event.Action),
		zap.String("email", event.Email),
		zap.Int("participants", event.Participants),
		zap.Int("max_participants", event.MaxParticipants),
		zap.Int64("sequence", event.Sequence),
		zap.Time("occurred_at", event.OccurredAt),
		zap.Int64("offset", msg.Offset),
	)
	return nil
}

// RosterSize returns the last roster size seen for activity.
func (h *AuditHandler) RosterSize(activity string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.latest[activity]
	return state.size, ok
}
