package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadySignedUp is returned when the email is already on the roster.
	ErrAlreadySignedUp = errors.New("student is already signed up")
	// ErrNotRegistered is returned when removing an email that is not on the roster.
	ErrNotRegistered = errors.New("student is not registered for this activity")
	// ErrActivityFull is returned when capacity enforcement is on and the roster is at max_participants.
	ErrActivityFull = errors.New("activity is full")
	// ErrInvalidActivity marks malformed seed data.
	ErrInvalidActivity = errors.New("invalid activity")
)

// Activity is one extracurricular offering and its participant roster.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	// Participants is ordered by signup time.
	Participants []string
	// Sequence counts applied roster changes. Seeded activities start at 0.
	Sequence int64
}

// Validate checks the record is well formed enough to be stored in a Directory.
func (a Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidActivity)
	}
	if a.MaxParticipants <= 0 {
		return fmt.Errorf("%w: %s: max_participants must be > 0", ErrInvalidActivity, a.Name)
	}
	seen := make(map[string]struct{}, len(a.Participants))
	for _, email := range a.Participants {
		if strings.TrimSpace(email) == "" {
			return fmt.Errorf("%w: %s: empty participant email", ErrInvalidActivity, a.Name)
		}
		if _, dup := seen[email]; dup {
			return fmt.Errorf("%w: %s: duplicate participant %s", ErrInvalidActivity, a.Name, email)
		}
		seen[email] = struct{}{}
	}
	return nil
}

// HasParticipant reports whether email is on the roster.
func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// SpotsLeft returns remaining capacity, which is negative when the roster is over capacity.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// Clone returns a copy that does not share the participant slice.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = append(make([]string, 0, len(a.Participants)), a.Participants...)
	return out
}

func (a *Activity) addParticipant(email string, enforceCapacity bool) error {
	if a.HasParticipant(email) {
		return ErrAlreadySignedUp
	}
	if enforceCapacity && a.SpotsLeft() <= 0 {
		return ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	a.Sequence++
	return nil
}

func (a *Activity) removeParticipant(email string) error {
	idx := slices.Index(a.Participants, email)
	if idx < 0 {
		return ErrNotRegistered
	}
	a.Participants = slices.Delete(a.Participants, idx, idx+1)
	a.Sequence++
	return nil
}
