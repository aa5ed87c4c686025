package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"example.com/signup/internal/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.RosterChanged
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.RosterChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

// stalledRoster holds the first Signup after the directory applied it, until
// release is closed.
type stalledRoster struct {
	*Directory
	once    sync.Once
	applied chan struct{}
	release chan struct{}
}

func (r *stalledRoster) Signup(name, email string) (Activity, error) {
	activity, err := r.Directory.Signup(name, email)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.applied)
		<-r.release
	}
	return activity, err
}

func rosterGauge(t *testing.T, activity string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "signup_service_roster_participants" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "activity" && lp.GetValue() == activity {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("no roster gauge for %q", activity)
	return 0
}

func TestServiceEmitsRosterEvents(t *testing.T) {
	dir := newTestDirectory(t)
	pub := &recordingPublisher{}
	svc := NewService(dir, pub, zaptest.NewLogger(t))
	fixed := time.Date(2025, time.September, 5, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Signup(context.Background(), "Chess Club", "a@x.edu")
	require.NoError(t, err)
	_, err = svc.Unregister(context.Background(), "Chess Club", "a@x.edu")
	require.NoError(t, err)

	require.Len(t, pub.events, 2)

	signup := pub.events[0]
	require.NotEmpty(t, signup.EventID)
	require.Equal(t, "Chess Club", signup.Activity)
	require.Equal(t, "a@x.edu", signup.Email)
	require.Equal(t, events.ActionSignup, signup.Action)
	require.Equal(t, 2, signup.Participants)
	require.Equal(t, 2, signup.MaxParticipants)
	require.Equal(t, int64(1), signup.Sequence)
	require.Equal(t, fixed, signup.OccurredAt)

	unregister := pub.events[1]
	require.Equal(t, events.ActionUnregister, unregister.Action)
	require.Equal(t, 1, unregister.Participants)
	require.Equal(t, int64(2), unregister.Sequence)
	require.NotEqual(t, signup.EventID, unregister.EventID)
}

func TestServiceKeepsNewestRosterSizeWhenEventsReorder(t *testing.T) {
	roster := &stalledRoster{
		Directory: newTestDirectory(t),
		applied:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	pub := &recordingPublisher{}
	svc := NewService(roster, pub, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Signup(context.Background(), "Chess Club", "a@x.edu")
		done <- err
	}()

	<-roster.applied
	_, err := svc.Signup(context.Background(), "Chess Club", "b@x.edu")
	require.NoError(t, err)
	close(roster.release)
	require.NoError(t, <-done)

	require.Len(t, pub.events, 2)
	require.Equal(t, "b@x.edu", pub.events[0].Email)
	require.Equal(t, int64(2), pub.events[0].Sequence)
	require.Equal(t, 3, pub.events[0].Participants)
	require.Equal(t, "a@x.edu", pub.events[1].Email)
	require.Equal(t, int64(1), pub.events[1].Sequence)

	got, err := roster.Get("Chess Club")
	require.NoError(t, err)
	require.Len(t, got.Participants, 3)
	require.Equal(t, float64(3), rosterGauge(t, "Chess Club"))
}

func TestServiceSkipsEventsOnFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(newTestDirectory(t), pub, nil)

	_, err := svc.Signup(context.Background(), "Chess Club", "michael@mergington.edu")
	require.ErrorIs(t, err, ErrAlreadySignedUp)
	_, err = svc.Unregister(context.Background(), "Nope", "a@x.edu")
	require.ErrorIs(t, err, ErrActivityNotFound)

	require.Empty(t, pub.events)
}

func TestServicePublishErrorDoesNotFailSignup(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("queue full")}
	svc := NewService(newTestDirectory(t), pub, zaptest.NewLogger(t))

	got, err := svc.Signup(context.Background(), "Art Club", "a@x.edu")
	require.NoError(t, err)
	require.Equal(t, []string{"a@x.edu"}, got.Participants)
}

func TestServiceWithoutPublisher(t *testing.T) {
	svc := NewService(newTestDirectory(t), nil, nil)

	_, err := svc.Signup(context.Background(), "Art Club", "a@x.edu")
	require.NoError(t, err)
	require.Len(t, svc.ListActivities(context.Background()), 2)
}

func TestOutcomeLabels(t *testing.T) {
	require.Equal(t, "not_found", outcome(ErrActivityNotFound))
	require.Equal(t, "already_signed_up", outcome(ErrAlreadySignedUp))
	require.Equal(t, "not_registered", outcome(ErrNotRegistered))
	require.Equal(t, "activity_full", outcome(ErrActivityFull))
	require.Equal(t, "error", outcome(errors.New("boom")))
}
