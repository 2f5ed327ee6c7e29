package sync

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nkarpov/telesync/internal/bus"
)

// Kind identifies one synchronization job type.
type Kind int

const (
	KindFavorites Kind = iota
	KindProfileName
	KindProfileMedia
	KindMembership
	KindPrivacy
)

func (k Kind) String() string {
	switch k {
	case KindFavorites:
		return "favorites"
	case KindProfileName:
		return "profile_name"
	case KindProfileMedia:
		return "profile_media"
	case KindMembership:
		return "membership"
	case KindPrivacy:
		return "privacy"
	default:
		return "unknown"
	}
}

// Status is a job's lifecycle state. Succeeded and Failed are terminal.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// validTransitions defines allowed status transitions.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusRunning},
	StatusRunning: {StatusSucceeded, StatusFailed},
}

// Job is the plain state record of one sync job: kind, status and a
// current/total progress pair. It carries no rendering concerns; observers
// watch it through bus events.
type Job struct {
	ID      string
	Kind    Kind
	Status  Status
	Current int
	Total   int
	Reason  string

	mu sync.Mutex
	b  *bus.Bus
}

// NewJob creates a pending job publishing to the given bus.
func NewJob(id string, kind Kind, b *bus.Bus) *Job {
	return &Job{ID: id, Kind: kind, Status: StatusPending, b: b}
}

// Snapshot is the immutable view of a job published on the bus.
type Snapshot struct {
	ID      string
	Kind    Kind
	Status  Status
	Current int
	Total   int
	Reason  string
}

// Snapshot returns a copy of the job's current state.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{
		ID:      j.ID,
		Kind:    j.Kind,
		Status:  j.Status,
		Current: j.Current,
		Total:   j.Total,
		Reason:  j.Reason,
	}
}

// SetTotal sets the progress denominator and publishes a progress event.
func (j *Job) SetTotal(n int) {
	j.mu.Lock()
	j.Total = n
	j.mu.Unlock()
	j.publish(bus.KindJobProgress)
}

// Step sets the progress numerator and publishes a progress event.
func (j *Job) Step(current int) {
	j.mu.Lock()
	j.Current = current
	j.mu.Unlock()
	j.publish(bus.KindJobProgress)
}

// Transition moves the job to a new status. Failed transitions record the
// captured error as the terminal reason.
func (j *Job) Transition(to Status, cause error) error {
	j.mu.Lock()
	allowed := validTransitions[j.Status]
	if !slices.Contains(allowed, to) {
		from := j.Status
		j.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	j.Status = to
	if to == StatusFailed && cause != nil {
		j.Reason = cause.Error()
	}
	if to == StatusSucceeded {
		j.Current = j.Total
	}
	j.mu.Unlock()
	j.publish(bus.KindJobStatus)
	return nil
}

func (j *Job) publish(kind string) {
	if j.b == nil {
		return
	}
	j.b.Publish(bus.Event{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   j.Snapshot(),
	})
}
