package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"scribe/internal/api"
	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/progress"
	"scribe/internal/store"
)

// JobRunner executes one job to a terminal state.
type JobRunner interface {
	Run(ctx context.Context, jobID string) error
}

// Daemon coordinates job execution and enforces single-instance operation.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	runner JobRunner
	hub    *progress.Hub
	jobs   *api.JobService

	lockPath string
	lock     *flock.Flock

	sem     chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	api     *apiServer
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, runner JobRunner, hub *progress.Hub, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || runner == nil || hub == nil {
		return nil, errors.New("daemon requires config, store, runner, and hub")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	concurrency := cfg.Pipeline.MaxConcurrentJobs
	if concurrency <= 0 {
		concurrency = 1
	}
	lockPath := filepath.Join(cfg.Paths.WorkDir, "scribed.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		runner:   runner,
		hub:      hub,
		jobs:     api.NewJobService(st),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		sem:      make(chan struct{}, concurrency),
	}, nil
}

// Start acquires the daemon lock, starts the API server, and resumes any jobs
// left pending by a previous run.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scribe daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	server, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.releaseStartup()
		return err
	}
	d.api = server
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.releaseStartup()
			return err
		}
	}

	if err := d.resumePending(d.ctx); err != nil {
		d.logger.Warn("resume pending jobs", logging.Error(err))
	}

	d.running.Store(true)
	d.logger.Info("scribe daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) releaseStartup() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
	_ = d.lock.Unlock()
}

// Stop shuts down the API server, waits for in-flight jobs, and releases the
// daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("scribe daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Submit creates a job and schedules it for execution.
func (d *Daemon) Submit(ctx context.Context, sessionID, mediaURL string) (api.JobView, error) {
	view, err := d.jobs.Submit(ctx, sessionID, mediaURL)
	if err != nil {
		return api.JobView{}, err
	}
	d.dispatch(view.ID)
	return view, nil
}

// Jobs exposes the read-side job service for transport layers.
func (d *Daemon) Jobs() *api.JobService {
	return d.jobs
}

// Hub exposes the progress hub for event streaming.
func (d *Daemon) Hub() *progress.Hub {
	return d.hub
}

func (d *Daemon) dispatch(jobID string) {
	ctx := d.ctx
	if ctx == nil {
		d.logger.Warn("dispatch without running daemon", logging.String(logging.FieldJobID, jobID))
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		select {
		case d.sem <- struct{}{}:
			defer func() { <-d.sem }()
		case <-ctx.Done():
			return
		}
		if err := d.runner.Run(ctx, jobID); err != nil {
			d.logger.Error("job run failed", logging.String(logging.FieldJobID, jobID), logging.Error(err))
		}
	}()
}

// resumePending re-dispatches jobs that never reached a terminal state.
func (d *Daemon) resumePending(ctx context.Context) error {
	pending, err := d.store.ListJobs(ctx, store.StatusPending, store.StatusRunning)
	if err != nil {
		return err
	}
	for _, job := range pending {
		d.logger.Info("resuming job", logging.String(logging.FieldJobID, job.ID), logging.String("status", string(job.Status)))
		d.dispatch(job.ID)
	}
	return nil
}
