package queue

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/vaibh/video-chat/internal/ingest"
	"github.com/vaibh/video-chat/internal/storage"
	"github.com/vaibh/video-chat/internal/types"
)

// WorkerPool runs video ingestions from a buffered queue.
type WorkerPool struct {
	jobQueue     chan *Job
	workerCount  int
	orchestrator *ingest.Orchestrator
	files        *storage.VideoFiles
}

// NewWorkerPool creates a pool of workerCount ingestion workers.
func NewWorkerPool(workerCount int, orchestrator *ingest.Orchestrator, files *storage.VideoFiles) *WorkerPool {
	return &WorkerPool{
		jobQueue:     make(chan *Job, 100), // Buffer of 100 jobs
		workerCount:  workerCount,
		orchestrator: orchestrator,
		files:        files,
	}
}

// Start launches all workers.
func (wp *WorkerPool) Start() {
	log.Printf("Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// EnqueueJob adds a job to the queue.
func (wp *WorkerPool) EnqueueJob(job *Job) {
	job.Status = types.StatusPending
	wp.jobQueue <- job
	log.Printf("Job %s enqueued (%s)", job.VideoID, job.OriginalFilename)
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	log.Printf("Worker %d started", id)

	for job := range wp.jobQueue {
		// Panic recovery
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
						id, job.VideoID, r, string(debug.Stack()))
					job.Status = types.StatusFailed
					job.Error = fmt.Errorf("worker panic: %v", r)
					wp.rollback(job.VideoID)
				}
			}()

			wp.processJob(id, job)
		}()
	}
}

// processJob runs one ingestion and rolls back the stored upload if the
// orchestrator says so.
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	log.Printf("Worker %d: Processing job %s", workerID, job.VideoID)

	result := wp.orchestrator.Process(context.Background(), job.FilePath, job.VideoID, job.OriginalFilename)

	if !result.Success {
		log.Printf("Worker %d: Job %s failed: %v", workerID, job.VideoID, result.Err)
		job.Status = types.StatusFailed
		job.Error = result.Err
		if result.RollbackUpload {
			wp.rollback(job.VideoID)
		}
		return
	}

	job.Status = types.StatusCompleted
	log.Printf("Worker %d: Job %s completed", workerID, job.VideoID)
}

func (wp *WorkerPool) rollback(videoID string) {
	if err := wp.files.DeleteAll(videoID); err != nil {
		log.Printf("Failed to roll back upload for %s: %v", videoID, err)
	}
}
