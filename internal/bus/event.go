package bus

import "time"

// Event kinds published by the sync pipeline. Subscribers filter by
// namespace prefix, e.g. "job." receives both progress and status events.
const (
	KindJobProgress = "job.progress"
	KindJobStatus   = "job.status"
	KindRunStarted  = "run.started"
	KindRunFinished = "run.finished"
	KindOptsChanged = "options.changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
