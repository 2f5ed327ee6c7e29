package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nkarpov/telesync/internal/bus"
	"github.com/nkarpov/telesync/internal/config"
	"github.com/nkarpov/telesync/internal/store"
	"github.com/nkarpov/telesync/internal/tg"
	"go.uber.org/zap"
)

// Engine is one runnable sync job body. Engines report failure by
// returning an error; they never terminate the run by panicking.
type Engine interface {
	Run(ctx context.Context) error
}

// Runner launches one job per enabled option flag and drives them to a
// terminal status. Jobs run concurrently and independently: a failed job
// records its reason and never aborts siblings, and nothing is retried.
type Runner struct {
	db      *store.DB
	factory tg.Factory
	b       *bus.Bus
	pacing  config.Pacing
	logger  *zap.Logger
}

// NewRunner creates a runner over the profile store and client factory.
func NewRunner(db *store.DB, factory tg.Factory, b *bus.Bus, pacing config.Pacing, logger *zap.Logger) *Runner {
	return &Runner{db: db, factory: factory, b: b, pacing: pacing, logger: logger}
}

// Summary is the outcome of one run, published as the run.finished payload.
type Summary struct {
	RunID string
	Jobs  []Snapshot
}

// Failed reports whether any job ended in StatusFailed.
func (s Summary) Failed() bool {
	for _, j := range s.Jobs {
		if j.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Run reads the account link and option flags, opens both client sessions
// and executes all enabled jobs to completion. Setup problems (no link, no
// enabled flags, unopenable sessions) return an error before any job
// starts; per-job failures land in the summary instead.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	opts, err := r.db.Options()
	if err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}
	if opts == nil || !opts.Enabled() {
		return nil, fmt.Errorf("no sync options enabled")
	}

	senderRef, err := r.db.SessionByRole(true)
	if err != nil {
		return nil, err
	}
	recipientRef, err := r.db.SessionByRole(false)
	if err != nil {
		return nil, err
	}
	senderName, err := r.db.UsernameByRole(true)
	if err != nil {
		return nil, err
	}
	recipientName, err := r.db.UsernameByRole(false)
	if err != nil {
		return nil, err
	}

	sender, err := r.factory.Open(ctx, senderRef)
	if err != nil {
		return nil, fmt.Errorf("open sender session: %w", err)
	}
	recipient, err := r.factory.Open(ctx, recipientRef)
	if err != nil {
		return nil, fmt.Errorf("open recipient session: %w", err)
	}
	defer func() {
		_ = sender.Close(context.WithoutCancel(ctx))
		_ = recipient.Close(context.WithoutCancel(ctx))
	}()

	var launches []launch
	addJob := func(kind Kind, build func(*Job) Engine) {
		job := NewJob(uuid.NewString(), kind, r.b)
		launches = append(launches, launch{job: job, engine: build(job)})
	}

	if opts.Favorites {
		addJob(KindFavorites, func(j *Job) Engine {
			return NewFavorites(sender, recipient, senderName, recipientName,
				NewPacer(r.pacing.Generic()), j, r.logger.Named("favorites"))
		})
	}
	if opts.ProfileName {
		addJob(KindProfileName, func(j *Job) Engine {
			return NewProfileName(sender, recipient, j, r.logger.Named("profile_name"))
		})
	}
	if opts.ProfileMedia {
		addJob(KindProfileMedia, func(j *Job) Engine {
			return NewProfileMedia(sender, recipient,
				NewPacer(r.pacing.Generic()), j, r.logger.Named("profile_media"))
		})
	}
	if opts.Channels {
		addJob(KindMembership, func(j *Job) Engine {
			return NewMembership(sender, recipient,
				NewPacer(r.pacing.Join()), NewPacer(r.pacing.Mutation()),
				j, r.logger.Named("membership"))
		})
	}
	if opts.Privacy {
		addJob(KindPrivacy, func(j *Job) Engine {
			return NewPrivacy(sender, recipient,
				NewPacer(r.pacing.Mutation()), j, r.logger.Named("privacy"))
		})
	}

	runID := uuid.NewString()
	r.publish(bus.KindRunStarted, Summary{RunID: runID, Jobs: snapshots(launches)})
	r.logger.Info("run started", zap.String("run_id", runID), zap.Int("jobs", len(launches)))

	var wg sync.WaitGroup
	for _, l := range launches {
		wg.Add(1)
		go func(l launch) {
			defer wg.Done()
			_ = l.job.Transition(StatusRunning, nil)
			if err := l.engine.Run(ctx); err != nil {
				r.logger.Error("job failed",
					zap.String("kind", l.job.Kind.String()),
					zap.Error(err),
				)
				_ = l.job.Transition(StatusFailed, err)
				return
			}
			_ = l.job.Transition(StatusSucceeded, nil)
		}(l)
	}
	wg.Wait()

	summary := Summary{RunID: runID, Jobs: snapshots(launches)}
	r.publish(bus.KindRunFinished, summary)
	if err := r.db.RecordRun(runRecords(summary)); err != nil {
		r.logger.Warn("record run history", zap.Error(err))
	}
	r.logger.Info("run finished",
		zap.String("run_id", runID),
		zap.Bool("failed", summary.Failed()),
	)
	return &summary, nil
}

func runRecords(s Summary) []store.RunJob {
	out := make([]store.RunJob, len(s.Jobs))
	for i, j := range s.Jobs {
		out[i] = store.RunJob{
			RunID:   s.RunID,
			Kind:    j.Kind.String(),
			Status:  j.Status.String(),
			Reason:  j.Reason,
			Current: j.Current,
			Total:   j.Total,
		}
	}
	return out
}

func (r *Runner) publish(kind string, payload Summary) {
	if r.b == nil {
		return
	}
	r.b.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

// launch pairs a job record with its engine for one run.
type launch struct {
	job    *Job
	engine Engine
}

func snapshots(launches []launch) []Snapshot {
	out := make([]Snapshot, len(launches))
	for i, l := range launches {
		out[i] = l.job.Snapshot()
	}
	return out
}
