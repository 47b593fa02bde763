package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pip3-kill-me/ebay-scraper/internal/database"
	"github.com/pip3-kill-me/ebay-scraper/internal/events"
	"github.com/pip3-kill-me/ebay-scraper/internal/models"
	"github.com/pip3-kill-me/ebay-scraper/internal/queue"
	"github.com/pip3-kill-me/ebay-scraper/internal/scraper"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var ErrTermRequired = errors.New("search term is required")

// Job tracks one analysis request from submission to completion.
type Job struct {
	ID           uuid.UUID                `json:"id"`
	SearchTerm   string                   `json:"search_term"`
	Bounds       models.Bounds            `json:"bounds"`
	Status       Status                   `json:"status"`
	State        string                   `json:"state,omitempty"`
	ListingCount int                      `json:"listing_count"`
	ValidCount   int                      `json:"valid_count"`
	Error        string                   `json:"error,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	StartedAt    *time.Time               `json:"started_at,omitempty"`
	FinishedAt   *time.Time               `json:"finished_at,omitempty"`
	listings     []models.AnalyzedListing
}

// Runner runs one full analysis. *scraper.Controller satisfies it.
type Runner interface {
	Run(ctx context.Context, term string, bounds models.Bounds) (*scraper.Result, error)
}

type Options struct {
	DB        *database.DB
	Publisher *events.Publisher
	Logger    *slog.Logger
}

// Manager owns the job table and the worker loop. Analyses run one at
// a time so that a single client cannot hammer the marketplace with
// parallel crawls.
type Manager struct {
	runner    Runner
	queue     *queue.InMemoryQueue
	db        *database.DB
	publisher *events.Publisher
	logger    *slog.Logger

	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

func NewManager(runner Runner, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		runner:    runner,
		queue:     queue.NewInMemoryQueue(),
		db:        opts.DB,
		publisher: opts.Publisher,
		logger:    logger,
		jobs:      make(map[uuid.UUID]*Job),
	}
}

// CreateJob validates the request and enqueues it for the worker.
func (m *Manager) CreateJob(term string, bounds models.Bounds) (*Job, error) {
	if term == "" {
		return nil, ErrTermRequired
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	job := &Job{
		ID:         uuid.New(),
		SearchTerm: term,
		Bounds:     bounds,
		Status:     StatusQueued,
		CreatedAt:  time.Now().UTC(),
	}

	task := &queue.Task{
		ID:         job.ID.String(),
		SearchTerm: term,
		Bounds:     bounds,
		CreatedAt:  job.CreatedAt,
	}
	if err := m.queue.Push(task); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return job.snapshot(), nil
}

// Start runs the worker loop until the context is cancelled.
func (m *Manager) Start(ctx context.Context) {
	for {
		task, err := m.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				m.logger.Info("job worker stopping")
			} else if !errors.Is(err, queue.ErrQueueClosed) {
				m.logger.Error("failed to pop job", "error", err)
			}
			return
		}
		m.process(ctx, task)
	}
}

// Close stops accepting new jobs and wakes up the worker.
func (m *Manager) Close() error {
	return m.queue.Close()
}

func (m *Manager) process(ctx context.Context, task *queue.Task) {
	id, err := uuid.Parse(task.ID)
	if err != nil {
		m.logger.Error("invalid job id on queue", "id", task.ID)
		return
	}

	now := time.Now().UTC()
	m.update(id, func(job *Job) {
		job.Status = StatusRunning
		job.StartedAt = &now
	})

	if m.db != nil {
		run := &database.AnalysisRun{
			ID:            id,
			SearchTerm:    task.SearchTerm,
			MinPricePerTB: task.Bounds.MinPricePerTB,
			MaxPricePerTB: task.Bounds.MaxPricePerTB,
			DesiredCount:  task.Bounds.DesiredCount,
			State:         scraper.StateSearching.String(),
			StartedAt:     now,
		}
		if err := m.db.InsertRun(ctx, run); err != nil {
			m.logger.Error("failed to persist run", "job_id", id, "error", err)
		}
	}

	m.logger.Info("starting analysis",
		"job_id", id,
		"search_term", task.SearchTerm)

	result, runErr := m.runner.Run(ctx, task.SearchTerm, task.Bounds)

	finished := time.Now().UTC()
	if runErr != nil {
		m.logger.Error("analysis failed", "job_id", id, "error", runErr)
		m.update(id, func(job *Job) {
			job.Status = StatusFailed
			job.Error = runErr.Error()
			job.FinishedAt = &finished
			if result != nil {
				job.State = result.State.String()
			}
		})
		m.persistOutcome(ctx, id, result)
		return
	}

	ranked := scraper.Rank(result.Listings, task.Bounds)

	status := StatusCompleted
	if result.State == scraper.StateStoppedFailure {
		status = StatusFailed
	}
	m.update(id, func(job *Job) {
		job.Status = status
		job.State = result.State.String()
		job.ListingCount = len(result.Listings)
		job.ValidCount = result.ValidCount
		job.FinishedAt = &finished
		job.listings = ranked
	})
	m.persistOutcome(ctx, id, result)

	if m.publisher != nil && len(ranked) > 0 {
		published := m.publisher.PublishDeals(ctx, id.String(), task.SearchTerm, ranked)
		m.logger.Info("published deal events", "job_id", id, "count", published)
	}

	m.logger.Info("analysis finished",
		"job_id", id,
		"state", result.State.String(),
		"listings", len(result.Listings),
		"valid", result.ValidCount)
}

func (m *Manager) persistOutcome(ctx context.Context, id uuid.UUID, result *scraper.Result) {
	if m.db == nil || result == nil {
		return
	}
	if err := m.db.FinishRun(ctx, id, result.State.String(), len(result.Listings), result.ValidCount); err != nil {
		m.logger.Error("failed to finish run", "job_id", id, "error", err)
	}
	if err := m.db.InsertListings(ctx, id, result.Listings); err != nil {
		m.logger.Error("failed to persist listings", "job_id", id, "error", err)
	}
}

func (m *Manager) update(id uuid.UUID, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		fn(job)
	}
}

// GetJob returns a copy of the job, or false when it does not exist.
func (m *Manager) GetJob(id uuid.UUID) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	return job.snapshot(), true
}

// ListJobs returns all jobs, newest first.
func (m *Manager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, job.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Stats summarizes the in-memory job table.
type Stats struct {
	TotalJobs    int            `json:"total_jobs"`
	QueueDepth   int            `json:"queue_depth"`
	JobsByStatus map[string]int `json:"jobs_by_status"`
}

func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{
		TotalJobs:    len(m.jobs),
		QueueDepth:   m.queue.Size(),
		JobsByStatus: make(map[string]int),
	}
	for _, job := range m.jobs {
		stats.JobsByStatus[string(job.Status)]++
	}
	return stats
}

// JobListings returns the ranked results of a completed job.
func (m *Manager) JobListings(id uuid.UUID) ([]models.AnalyzedListing, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	out := make([]models.AnalyzedListing, len(job.listings))
	copy(out, job.listings)
	return out, true
}

func (j *Job) snapshot() *Job {
	cp := *j
	cp.listings = nil
	return &cp
}
