package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"efipay-proxy/queue"
	"efipay-proxy/services/webhook"
)

// JobSource is the part of queue.Queue the worker drives.
type JobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	CompleteJob(ctx context.Context, job *queue.Job) error
	FailJob(ctx context.Context, job *queue.Job, err error) error
}

// Worker drains queued webhook notifications into the durable sink
type Worker struct {
	queue    JobSource
	sink     webhook.Sink
	shutdown chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	pollTimeout time.Duration
}

func NewWorker(q JobSource, sink webhook.Sink) *Worker {
	return &Worker{
		queue:       q,
		sink:        sink,
		shutdown:    make(chan struct{}),
		pollTimeout: 5 * time.Second,
	}
}

// Start begins processing jobs
func (w *Worker) Start(concurrency int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true

	if concurrency < 1 {
		concurrency = 1
	}
	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(i)
	}

	log.Printf("Started %d worker goroutines", concurrency)
}

// Stop signals the goroutines and waits for in-flight jobs to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	log.Println("Stopping worker...")
	close(w.shutdown)
	w.wg.Wait()
}

func (w *Worker) processJobs(workerID int) {
	defer w.wg.Done()
	log.Printf("Worker %d starting", workerID)

	for {
		select {
		case <-w.shutdown:
			log.Printf("Worker %d shutting down", workerID)
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.pollTimeout+10*time.Second)
		job, err := w.queue.Dequeue(ctx, w.pollTimeout)
		cancel()

		if err != nil {
			log.Printf("Worker %d: Error dequeuing job: %v", workerID, err)
			w.pause(time.Second)
			continue
		}

		if job == nil {
			continue
		}

		log.Printf("Worker %d processing job %s of type %s", workerID, job.ID, job.Type)
		w.handle(workerID, job)
	}
}

func (w *Worker) handle(workerID int, job *queue.Job) {
	jobErr := w.processJob(job)
	if jobErr != nil {
		log.Printf("Worker %d: Error processing job %s: %v", workerID, job.ID, jobErr)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.queue.FailJob(ctx, job, jobErr); err != nil {
			log.Printf("Worker %d: Error marking job %s as failed: %v", workerID, job.ID, err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.queue.CompleteJob(ctx, job); err != nil {
		log.Printf("Worker %d: Error marking job %s as complete: %v", workerID, job.ID, err)
	}
}

func (w *Worker) processJob(job *queue.Job) error {
	switch job.Type {
	case queue.JobTypePersistNotification:
		return w.persistNotification(job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (w *Worker) persistNotification(job *queue.Job) error {
	if job.Notification == nil || job.Notification.ID == "" {
		return fmt.Errorf("invalid notification in job data")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := w.sink.SaveNotification(ctx, job.Notification)
	if err != nil {
		return err
	}

	log.Printf("Notification %s (txid %s) persisted to %s with status %d",
		job.Notification.ID, job.Notification.TxID, result.Backend, result.Status)
	return nil
}

// pause sleeps unless the worker is stopping
func (w *Worker) pause(d time.Duration) {
	select {
	case <-w.shutdown:
	case <-time.After(d):
	}
}
