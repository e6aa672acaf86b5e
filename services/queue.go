package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"greendex/models"
)

// ErrQueueFull is returned when the sync queue cannot accept another job.
var ErrQueueFull = errors.New("sync queue full")

type syncJob struct {
	id        string
	projectID uint
}

// Queue dispatches project syncs to a fixed pool of workers. A project
// already waiting in the queue is not enqueued a second time.
type Queue struct {
	db     *gorm.DB
	syncer *Syncer
	logger *zap.Logger

	jobs      chan syncJob
	workers   int
	batchSize int
	maxAge    time.Duration
	now       func() time.Time

	mu      sync.Mutex
	pending map[uint]string

	wg sync.WaitGroup
}

// NewQueue builds a queue; Start must be called before enqueuing.
func NewQueue(db *gorm.DB, syncer *Syncer, logger *zap.Logger,
	workers, size, batchSize int, maxAge time.Duration, now func() time.Time) *Queue {

	if now == nil {
		now = time.Now
	}
	return &Queue{
		db:        db,
		syncer:    syncer,
		logger:    logger,
		jobs:      make(chan syncJob, size),
		workers:   workers,
		batchSize: batchSize,
		maxAge:    maxAge,
		now:       now,
		pending:   map[uint]string{},
	}
}

// Start launches the worker pool.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// Stop drains the queue and waits for in-flight syncs to finish.
func (q *Queue) Stop() {
	close(q.jobs)
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.mu.Lock()
		delete(q.pending, job.projectID)
		q.mu.Unlock()
		syncQueueDepth.Dec()

		if err := q.syncer.Sync(job.projectID); err != nil {
			q.logger.Error("sync failed",
				zap.String("job_id", job.id),
				zap.Uint("project_id", job.projectID),
				zap.Error(err))
		}
	}
}

// Enqueue schedules a sync for one project and returns the job id. If the
// project is already waiting, the existing job id is returned instead.
func (q *Queue) Enqueue(projectID uint) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if id, waiting := q.pending[projectID]; waiting {
		return id, nil
	}

	job := syncJob{id: uuid.NewString(), projectID: projectID}
	select {
	case q.jobs <- job:
		q.pending[projectID] = job.id
		syncQueueDepth.Inc()
		return job.id, nil
	default:
		return "", ErrQueueFull
	}
}

// Depth reports how many jobs are waiting.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// EnqueueLeastRecentlySynced schedules the stalest projects, never-synced
// ones first, up to the batch size. It returns how many were enqueued.
func (q *Queue) EnqueueLeastRecentlySynced(reviewedOnly bool) (int, error) {
	cutoff := q.now().Add(-q.maxAge)
	query := q.db.Model(&models.Project{}).
		Where("last_synced_at IS NULL OR last_synced_at < ?", cutoff).
		Order("last_synced_at ASC NULLS FIRST").
		Limit(q.batchSize)
	if reviewedOnly {
		query = query.Where("reviewed = ?", true)
	}

	var projects []models.Project
	if err := query.Select("id").Find(&projects).Error; err != nil {
		return 0, err
	}

	enqueued := 0
	for _, p := range projects {
		if _, err := q.Enqueue(p.ID); err != nil {
			if errors.Is(err, ErrQueueFull) {
				break
			}
			return enqueued, err
		}
		enqueued++
	}
	q.logger.Info("scheduled stale projects", zap.Int("enqueued", enqueued))
	return enqueued, nil
}
