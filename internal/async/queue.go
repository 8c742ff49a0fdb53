// Package async decouples extraction from persistence: the pipeline emits a
// store job and returns; workers push the result into donated_meds in the
// background. A storage failure is logged and dropped, never surfaced to the
// donor who just uploaded a label.
package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/medishare/medlabel/internal/entity"
	"github.com/medishare/medlabel/internal/repository"
)

// Job asks the workers to write an extraction result onto an existing
// donated_meds row.
type Job struct {
	MedicineID  int64
	Record      entity.Record
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// StoreQueue is the production Queue: a bounded channel drained by a fixed
// worker pool that patches donated_meds rows.
type StoreQueue struct {
	repo    repository.MedicineRepository
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*StoreQueue)

func WithWorkers(n int) Option {
	return func(q *StoreQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *StoreQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithStoreTimeout(d time.Duration) Option {
	return func(q *StoreQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewStoreQueue(repo repository.MedicineRepository, logger *slog.Logger, opts ...Option) *StoreQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &StoreQueue{
		repo:    repo,
		logger:  logger,
		workers: 4,
		timeout: 30 * time.Second,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *StoreQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("store worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.store(ctx, job)
					cancel()

					if err != nil {
						q.logger.Error("storing extraction failed",
							"worker_id", workerID, "medicine_id", job.MedicineID, "error", err)
					} else {
						q.logger.Info("stored extraction",
							"worker_id", workerID, "medicine_id", job.MedicineID)
					}
				}

				q.logger.Info("store worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// store verifies the row still exists, then applies the patch. Only fields
// the extraction actually produced are written.
func (q *StoreQueue) store(ctx context.Context, job Job) error {
	exists, err := q.repo.Exists(ctx, job.MedicineID)
	if err != nil {
		return err
	}
	if !exists {
		q.logger.Warn("medicine row gone before store", "medicine_id", job.MedicineID)
		return nil
	}
	return q.repo.UpdateExtraction(ctx, job.MedicineID, patchFromRecord(job.Record))
}

func patchFromRecord(rec entity.Record) repository.MedicinePatch {
	var p repository.MedicinePatch
	if rec.MedicineName != "" {
		p.MedicineName = &rec.MedicineName
	}
	if rec.Quantity > 0 {
		p.Quantity = &rec.Quantity
	}
	if rec.ExpiryDate != "" {
		p.ExpiryDate = &rec.ExpiryDate
	}
	if rec.Ingredients != "" {
		p.Ingredients = &rec.Ingredients
	}
	if rec.RawText != "" {
		p.RawText = &rec.RawText
	}
	return p
}

// enqueueWait bounds how long a caller waits on a full queue before the job
// is dropped. Persistence is best-effort; extraction must not back up behind
// a stalled store.
const enqueueWait = 100 * time.Millisecond

func (q *StoreQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "medicine_id", job.MedicineID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued extraction for store", "medicine_id", job.MedicineID)
		return nil
	default:
	}

	t := time.NewTimer(enqueueWait)
	defer t.Stop()
	select {
	case q.ch <- job:
		q.logger.Info("queued extraction for store", "medicine_id", job.MedicineID)
	case <-ctx.Done():
		q.logger.Warn("queue full, store job dropped", "medicine_id", job.MedicineID, "error", ctx.Err())
	case <-t.C:
		q.logger.Warn("queue full, store job dropped", "medicine_id", job.MedicineID)
	}
	return nil
}

func (q *StoreQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
