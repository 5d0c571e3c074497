// Package schedule runs the periodic sync job on robfig/cron. The first
// activation happens after a configurable delay, later ones at a constant
// interval. Overlapping activations are skipped rather than queued.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/common/logging"
)

// Job is the unit of scheduled work. Its context is cancelled when the
// trigger stops.
type Job func(ctx context.Context) error

// Status is a snapshot of the trigger for health reporting.
type Status struct {
	Running  bool       `json:"running"`
	Runs     int        `json:"runs"`
	Failures int        `json:"failures"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	LastErr  string     `json:"last_error,omitempty"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}

type Trigger struct {
	config *Config
	job    Job
	logger logging.Logger

	mu       sync.RWMutex
	cron     *cron.Cron
	entry    cron.EntryID
	cancel   context.CancelFunc
	runs     int
	failures int
	lastRun  *time.Time
	lastErr  string
}

func NewTrigger(config *Config, job Job) (*Trigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.ConfigError("schedule job is required")
	}
	return &Trigger{
		config: config,
		job:    job,
		logger: logging.Component("schedule").WithFields(logging.String("job", config.Name)),
	}, nil
}

// delayedSchedule fires once after first and then every interval.
type delayedSchedule struct {
	first time.Duration
	every cron.ConstantDelaySchedule
	fired bool
}

func (s *delayedSchedule) Next(t time.Time) time.Time {
	if !s.fired {
		s.fired = true
		return t.Add(s.first)
	}
	return s.every.Next(t)
}

// Start schedules the job. It returns immediately; call Stop to end it.
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron != nil {
		return errors.ValidationError("schedule already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	adapter := cronLogger{logger: t.logger}
	c := cron.New(
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)

	schedule := &delayedSchedule{first: t.config.FirstRun, every: cron.Every(t.config.Interval)}
	t.entry = c.Schedule(schedule, cron.FuncJob(func() { t.execute(runCtx) }))
	t.cron = c
	t.cancel = cancel
	c.Start()

	t.logger.Info("Schedule started",
		logging.Duration("interval", t.config.Interval),
		logging.Duration("first_run", t.config.FirstRun),
	)
	return nil
}

func (t *Trigger) execute(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	err := t.job(ctx)

	t.mu.Lock()
	t.runs++
	t.lastRun = &started
	if err != nil {
		t.failures++
		t.lastErr = err.Error()
	} else {
		t.lastErr = ""
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Error("Scheduled job failed", err, logging.Duration("duration", time.Since(started)))
		return
	}
	t.logger.Debug("Scheduled job finished", logging.Duration("duration", time.Since(started)))
}

// Stop cancels the running job's context and waits for it to return.
func (t *Trigger) Stop() {
	t.mu.Lock()
	c, cancel := t.cron, t.cancel
	t.cron, t.cancel = nil, nil
	t.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	t.logger.Info("Schedule stopped")
}

func (t *Trigger) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cron != nil
}

func (t *Trigger) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st := Status{
		Running:  t.cron != nil,
		Runs:     t.runs,
		Failures: t.failures,
		LastRun:  t.lastRun,
		LastErr:  t.lastErr,
	}
	if t.cron != nil {
		if next := t.cron.Entry(t.entry).Next; !next.IsZero() {
			st.NextRun = &next
		}
	}
	return st
}

// Health reports an error when the trigger is stopped or overdue.
func (t *Trigger) Health() error {
	if !t.IsRunning() {
		return errors.InternalError("schedule is not running", nil)
	}
	st := t.Status()
	if st.NextRun != nil && time.Since(*st.NextRun) > 2*t.config.Interval {
		return errors.InternalError("schedule missed its activation", nil)
	}
	return nil
}

// cronLogger forwards cron's key/value logging to the structured logger.
type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, err, fields(keysAndValues)...)
}

func fields(keysAndValues []interface{}) []logging.Field {
	out := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		out = append(out, logging.Any(key, keysAndValues[i+1]))
	}
	return out
}
