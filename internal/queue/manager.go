package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nexusatelier/atelier-backend/internal/data/repos"
	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

// Executor runs one attempt of a job end to end. A returned
// domain.ErrJobNotRunnable means the job left the runnable states and
// must be dropped without retry; any other error counts as a failed
// attempt.
type Executor interface {
	Type() domain.JobType
	Execute(ctx context.Context, job *domain.Job) error
}

// Observer receives queue lifecycle signals. Implementations must be
// safe for concurrent use.
type Observer interface {
	JobEnqueued(jobType domain.JobType)
	JobCompleted(jobType domain.JobType, duration time.Duration)
	JobRetried(jobType domain.JobType)
	JobFailed(jobType domain.JobType)
	QueueDepth(jobType domain.JobType, waiting, active int)
}

type Config struct {
	Concurrency    map[domain.JobType]int
	MaxAttempts    int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	PollInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Concurrency: map[domain.JobType]int{
			domain.JobTypeVideo:    10,
			domain.JobTypeImage:    50,
			domain.JobTypeAudio:    20,
			domain.JobTypeWorkflow: 5,
		},
		MaxAttempts:    3,
		BackoffInitial: 2 * time.Second,
		BackoffMax:     30 * time.Second,
		PollInterval:   100 * time.Millisecond,
	}
}

// Stats is a point-in-time snapshot of one type's queue.
type Stats struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// pool tracks all queue state for one job type behind a single mutex.
type pool struct {
	mu        sync.Mutex
	waiting   *waitingQueue
	active    map[uuid.UUID]struct{}
	completed int
	failed    int
}

func newPool() *pool {
	return &pool{
		waiting: newWaitingQueue(),
		active:  make(map[uuid.UUID]struct{}),
	}
}

// Manager owns the per-type priority queues and worker pools. Jobs are
// admitted with Enqueue and executed by the workers started in Start.
type Manager struct {
	cfg       Config
	jobs      repos.JobRepo
	executors map[domain.JobType]Executor
	pools     map[domain.JobType]*pool
	observer  Observer
	log       *logger.Logger

	mu      sync.Mutex
	closed  bool
	idle    *sync.Cond
	pending int
}

func NewManager(cfg Config, jobs repos.JobRepo, executors []Executor, observer Observer, baseLog *logger.Logger) (*Manager, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = 2 * time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	m := &Manager{
		cfg:       cfg,
		jobs:      jobs,
		executors: make(map[domain.JobType]Executor, len(executors)),
		pools:     make(map[domain.JobType]*pool, len(executors)),
		observer:  observer,
		log:       baseLog.With("component", "queue_manager"),
	}
	m.idle = sync.NewCond(&m.mu)

	for _, ex := range executors {
		jt := ex.Type()
		if _, dup := m.executors[jt]; dup {
			return nil, fmt.Errorf("duplicate executor for type %q", jt)
		}
		if cfg.Concurrency[jt] <= 0 {
			return nil, fmt.Errorf("no concurrency limit configured for type %q", jt)
		}
		m.executors[jt] = ex
		m.pools[jt] = newPool()
	}
	return m, nil
}

// Enqueue admits a job for execution. Admitting a job that is already
// waiting or running is a no-op, so callers may enqueue blindly after
// create or retry.
func (m *Manager) Enqueue(jobID uuid.UUID, jobType domain.JobType, priority int) error {
	p, ok := m.pools[jobType]
	if !ok {
		return fmt.Errorf("no queue for job type %q", jobType)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.New("queue manager is shutting down")
	}
	m.mu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, running := p.active[jobID]; running {
		return nil
	}
	if p.waiting.push(jobID, priority) == nil {
		return nil
	}
	m.trackPending(1)
	if m.observer != nil {
		m.observer.JobEnqueued(jobType)
		m.observer.QueueDepth(jobType, p.waiting.len(), len(p.active))
	}
	return nil
}

// Start launches the worker pools and blocks until ctx is cancelled
// and all in-flight work has returned.
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for jt, ex := range m.executors {
		jt, ex := jt, ex
		p := m.pools[jt]
		for i := 0; i < m.cfg.Concurrency[jt]; i++ {
			g.Go(func() error {
				m.worker(ctx, jt, ex, p)
				return nil
			})
		}
	}
	m.log.Info("queue workers started", "types", len(m.executors))
	return g.Wait()
}

func (m *Manager) worker(ctx context.Context, jt domain.JobType, ex Executor, p *pool) {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		t := p.waiting.popReady(time.Now())
		if t == nil {
			p.mu.Unlock()
			continue
		}
		p.active[t.jobID] = struct{}{}
		m.reportDepth(jt, p)
		p.mu.Unlock()

		m.runTask(ctx, jt, ex, p, t)
	}
}

func (m *Manager) runTask(ctx context.Context, jt domain.JobType, ex Executor, p *pool, t *task) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("panic in job execution", "job_id", t.jobID, "type", jt, "panic", r)
			m.settleFailure(ctx, jt, p, t, fmt.Errorf("panic: %v", r))
		}
	}()

	job, err := m.jobs.GetByID(ctx, nil, t.jobID)
	if err != nil || job == nil {
		m.log.Warn("dropping job that cannot be loaded", "job_id", t.jobID, "error", err)
		m.finish(jt, p, t, false)
		return
	}
	if job.Status.Terminal() && t.attempts == 0 {
		// Cancelled or otherwise finished before a worker got to it.
		m.finish(jt, p, t, false)
		return
	}

	started := time.Now()
	err = ex.Execute(ctx, job)
	switch {
	case err == nil:
		if m.observer != nil {
			m.observer.JobCompleted(jt, time.Since(started))
		}
		p.mu.Lock()
		p.completed++
		p.mu.Unlock()
		m.finish(jt, p, t, true)
	case errors.Is(err, domain.ErrJobNotRunnable):
		m.log.Info("job left runnable state, dropping", "job_id", t.jobID, "type", jt)
		m.finish(jt, p, t, false)
	default:
		m.settleFailure(ctx, jt, p, t, err)
	}
}

// settleFailure decides between a backoff retry and a final failure.
func (m *Manager) settleFailure(ctx context.Context, jt domain.JobType, p *pool, t *task, cause error) {
	t.attempts++
	if t.attempts < m.cfg.MaxAttempts {
		delay := m.backoff(t.attempts)
		t.notBefore = time.Now().Add(delay)
		m.log.Warn("job attempt failed, scheduling retry",
			"job_id", t.jobID, "type", jt, "attempt", t.attempts, "retry_in", delay, "error", cause)
		if m.observer != nil {
			m.observer.JobRetried(jt)
		}
		p.mu.Lock()
		delete(p.active, t.jobID)
		p.waiting.requeue(t)
		m.reportDepth(jt, p)
		p.mu.Unlock()
		return
	}

	m.log.Error("job failed after final attempt", "job_id", t.jobID, "type", jt, "attempts", t.attempts, "error", cause)
	if m.observer != nil {
		m.observer.JobFailed(jt)
	}
	p.mu.Lock()
	p.failed++
	p.mu.Unlock()
	m.finish(jt, p, t, false)
}

func (m *Manager) backoff(attempt int) time.Duration {
	d := m.cfg.BackoffInitial
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= m.cfg.BackoffMax {
			return m.cfg.BackoffMax
		}
	}
	if d > m.cfg.BackoffMax {
		d = m.cfg.BackoffMax
	}
	return d
}

func (m *Manager) finish(jt domain.JobType, p *pool, t *task, _ bool) {
	p.mu.Lock()
	delete(p.active, t.jobID)
	m.reportDepth(jt, p)
	p.mu.Unlock()
	m.trackPending(-1)
}

func (m *Manager) reportDepth(jt domain.JobType, p *pool) {
	if m.observer != nil {
		m.observer.QueueDepth(jt, p.waiting.len(), len(p.active))
	}
}

func (m *Manager) trackPending(delta int) {
	m.mu.Lock()
	m.pending += delta
	if m.pending == 0 {
		m.idle.Broadcast()
	}
	m.mu.Unlock()
}

// Stats reports one type's queue counters.
func (m *Manager) Stats(jobType domain.JobType) (Stats, error) {
	p, ok := m.pools[jobType]
	if !ok {
		return Stats{}, fmt.Errorf("no queue for job type %q", jobType)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Waiting:   p.waiting.len(),
		Active:    len(p.active),
		Completed: p.completed,
		Failed:    p.failed,
	}, nil
}

// StatsAll reports counters for every configured type.
func (m *Manager) StatsAll() map[domain.JobType]Stats {
	out := make(map[domain.JobType]Stats, len(m.pools))
	for jt := range m.pools {
		s, _ := m.Stats(jt)
		out[jt] = s
	}
	return out
}

// Close stops admitting jobs and waits for the queues to drain, up to
// ctx's deadline. Workers themselves stop when their Start context is
// cancelled.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.mu.Lock()
		for m.pending > 0 {
			m.idle.Wait()
		}
		m.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue drain interrupted: %w", ctx.Err())
	}
}
