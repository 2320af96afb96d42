package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/nexusai/dispatch-api/internal/domain"
	"github.com/nexusai/dispatch-api/internal/store"
)

// ErrTaskNotPending is returned by RunTask when the task has already left
// the pending state, either before the call or because another dispatcher
// won the lock race first.
var ErrTaskNotPending = errors.New("task is not pending")

// Config holds the dispatcher's tuning knobs.
type Config struct {
	// PollInterval is the delay between cycles of the continuous loop,
	// measured from the end of one full batch to the start of the next.
	PollInterval time.Duration

	// BatchSize bounds how many pending tasks one cycle fetches.
	BatchSize int

	// StuckAge is how long a task may sit in processing before the loop
	// reports it. Zero disables reporting.
	StuckAge time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    5,
		StuckAge:     30 * time.Minute,
	}
}

// Dispatcher discovers eligible pending tasks and feeds them through the
// lock protocol into the Processor. The same instance backs the continuous
// loop (Run), the externally scheduled batch trigger (RunBatch), and the
// manual single-task trigger (RunTask); only the eligibility policy differs.
type Dispatcher struct {
	tasks     store.TaskStore
	profiles  store.ProfileStore
	processor *Processor
	config    Config
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	tasks store.TaskStore,
	profiles store.ProfileStore,
	processor *Processor,
	config Config,
	logger *slog.Logger,
) *Dispatcher {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}

	return &Dispatcher{
		tasks:     tasks,
		profiles:  profiles,
		processor: processor,
		config:    config,
		logger:    logger,
	}
}

// Run drives the continuous polling loop until ctx is cancelled. Iterations
// of one instance never overlap; overlap across instances is expected and
// tolerated by the lock protocol.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("dispatcher started",
		"poll_interval", d.config.PollInterval,
		"batch_size", d.config.BatchSize)

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		d.runCycle(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// runCycle runs one batch, retrying with exponential backoff while the
// store is unreachable. Any other failure ends the cycle; the next tick
// retries naturally.
func (d *Dispatcher) runCycle(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = d.config.PollInterval

	operation := func() error {
		_, err := d.RunBatch(ctx)
		if err == nil {
			return nil
		}
		if store.IsUnavailableError(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		d.logger.Error("dispatch cycle failed", "error", err)
	}

	d.reportStuck(ctx)
}

// RunBatch fetches one batch of pending auto-run tasks and dispatches each
// eligible one in created_at order. This is the scheduled trigger's whole
// body. The returned outcomes cover only tasks this call actually processed.
func (d *Dispatcher) RunBatch(ctx context.Context) ([]Outcome, error) {
	tasks, err := d.tasks.ListPendingAuto(ctx, d.config.BatchSize)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(tasks))
	for _, task := range tasks {
		outcome, processed := d.dispatchAuto(ctx, task)
		if processed {
			outcomes = append(outcomes, outcome)
		}
	}

	return outcomes, nil
}

// dispatchAuto applies the automatic eligibility policy to one task and, if
// admitted, locks and processes it. The second return value reports whether
// the task was processed; policy skips and lost lock races return false and
// are never recorded as failures.
func (d *Dispatcher) dispatchAuto(ctx context.Context, task *domain.Task) (Outcome, bool) {
	log := d.logger.With("task_id", task.ID, "user_id", task.UserID)

	enabled, err := d.profiles.AutoRunEnabled(ctx, task.UserID)
	if err != nil {
		log.Debug("profile unavailable, skipping task", "error", err)
		return Outcome{}, false
	}
	if !enabled {
		log.Debug("auto-run disabled for user, skipping task")
		return Outcome{}, false
	}

	locked, err := d.tasks.TryLock(ctx, task.ID)
	if err != nil {
		log.Warn("lock attempt failed", "error", err)
		return Outcome{}, false
	}
	if !locked {
		// Another dispatcher won the race. Expected, not an error.
		log.Debug("task already claimed")
		return Outcome{}, false
	}

	task.Status = domain.TaskStatusProcessing
	return d.processor.Process(ctx, task), true
}

// RunTask is the manual trigger: it bypasses the run-mode and profile-flag
// policy but still requires the task to be pending and still goes through
// the lock, so it cannot double-process a task a poller just claimed.
func (d *Dispatcher) RunTask(ctx context.Context, id uuid.UUID) (Outcome, error) {
	task, err := d.tasks.GetByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}

	if task.Status != domain.TaskStatusPending {
		return Outcome{}, ErrTaskNotPending
	}

	locked, err := d.tasks.TryLock(ctx, task.ID)
	if err != nil {
		return Outcome{}, err
	}
	if !locked {
		return Outcome{}, ErrTaskNotPending
	}

	task.Status = domain.TaskStatusProcessing
	return d.processor.Process(ctx, task), nil
}

// reportStuck surfaces tasks wedged in processing (e.g., a dispatcher
// crashed after winning the lock). They are reported, never reset: without
// a lease token a requeue could break the at-most-once admission guarantee.
func (d *Dispatcher) reportStuck(ctx context.Context) {
	if d.config.StuckAge <= 0 {
		return
	}

	stuck, err := d.tasks.ListStuck(ctx, d.config.StuckAge)
	if err != nil {
		d.logger.Debug("stuck task check failed", "error", err)
		return
	}
	if len(stuck) == 0 {
		return
	}

	ids := make([]string, len(stuck))
	for i, task := range stuck {
		ids[i] = task.ID.String()
	}

	d.logger.Warn("tasks stuck in processing",
		"count", len(stuck),
		"older_than", d.config.StuckAge,
		"task_ids", ids)
}
