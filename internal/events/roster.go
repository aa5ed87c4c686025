// Package events defines the roster event payloads shared by the API and the consumer.
package events

import "time"

// EventTypeRosterChanged is carried in the event_type header of every roster message.
const EventTypeRosterChanged = "activity.roster_changed"

// Roster actions.
const (
	ActionSignup     = "signup"
	ActionUnregister = "unregister"
)

// RosterChanged is emitted after a participant is added to or removed from an activity.
// Sequence increases by one with every change applied to the activity, so the
// newest state wins even when events arrive out of order.
type RosterChanged struct {
	EventID         string    `json:"event_id"`
	Activity        string    `json:"activity"`
	Email           string    `json:"email"`
	Action          string    `json:"action"`
	Participants    int       `json:"participants"`
	MaxParticipants int       `json:"max_participants"`
	Sequence        int64     `json:"sequence"`
	OccurredAt      time.Time `json:"occurred_at"`
}
