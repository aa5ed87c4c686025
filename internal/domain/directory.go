package domain

import (
	"fmt"
	"sync"
)

// DirectoryOption configures optional behaviour for a Directory.
type DirectoryOption func(*Directory)

// WithCapacityEnforcement rejects signups once an activity reaches max_participants.
func WithCapacityEnforcement(enabled bool) DirectoryOption {
	return func(d *Directory) {
		d.enforceCapacity = enabled
	}
}

// Directory is the in-memory collection of activities keyed by name.
// All roster mutations happen under mu so check-then-append and
// check-then-remove are atomic, and each one bumps the activity's Sequence.
type Directory struct {
	mu              sync.RWMutex
	order           []string
	activities      map[string]*Activity
	enforceCapacity bool
}

// NewDirectory validates the seed catalog and builds a Directory from it.
func NewDirectory(seed []Activity, opts ...DirectoryOption) (*Directory, error) {
	d := &Directory{
		order:      make([]string, 0, len(seed)),
		activities: make(map[string]*Activity, len(seed)),
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, activity := range seed {
		if err := activity.Validate(); err != nil {
			return nil, err
		}
		if _, exists := d.activities[activity.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate activity name %q", ErrInvalidActivity, activity.Name)
		}
		stored := activity.Clone()
		stored.Sequence = 0
		d.activities[activity.Name] = &stored
		d.order = append(d.order, activity.Name)
	}
	return d, nil
}

// List returns copies of every activity in seed order.
func (d *Directory) List() []Activity {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Activity, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.activities[name].Clone())
	}
	return out
}

// Get returns a copy of the named activity.
func (d *Directory) Get(name string) (Activity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	activity, ok := d.activities[name]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}
	return activity.Clone(), nil
}

// Signup appends email to the named roster and returns the updated activity.
func (d *Directory) Signup(name, email string) (Activity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	activity, ok := d.activities[name]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}
	if err := activity.addParticipant(email, d.enforceCapacity); err != nil {
		return Activity{}, err
	}
	return activity.Clone(), nil
}

// Unregister removes email from the named roster and returns the updated activity.
func (d *Directory) Unregister(name, email string) (Activity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	activity, ok := d.activities[name]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}
	if err := activity.removeParticipant(email); err != nil {
		return Activity{}, err
	}
	return activity.Clone(), nil
}
