package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"efipay-proxy/models"
)

type JobType string

const (
	JobTypePersistNotification JobType = "persist_notification"
)

const DefaultQueueName = "efipay:webhook"

var ErrJobNotFound = errors.New("job not found in failed queue")

type Job struct {
	ID           string               `json:"id"`
	Type         JobType              `json:"type"`
	Notification *models.Notification `json:"notification"`
	CreatedAt    time.Time            `json:"created_at"`
	LastError    string               `json:"last_error,omitempty"`
	FailedAt     *time.Time           `json:"failed_at,omitempty"`

	// payload exato lido do Redis, usado no LREM
	raw string
}

type Queue struct {
	client     *redis.Client
	queueName  string
	processing string
	failed     string
}

// NewQueueWithClient shares an existing connection, e.g. with the token cache.
// The caller owns the client and closes it.
func NewQueueWithClient(client *redis.Client, queueName string) *Queue {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	return &Queue{
		client:     client,
		queueName:  queueName,
		processing: queueName + ":processing",
		failed:     queueName + ":failed",
	}
}

func (q *Queue) Enqueue(ctx context.Context, jobType JobType, n *models.Notification) (*Job, error) {
	job := &Job{
		ID:           uuid.NewString(),
		Type:         jobType,
		Notification: n,
		CreatedAt:    time.Now(),
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %v", err)
	}

	if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
		return nil, fmt.Errorf("failed to push job to queue: %v", err)
	}

	log.Printf("Enqueued job %s of type %s", job.ID, job.Type)
	return job, nil
}

// SaveNotification lets the queue stand in for a sink: the webhook is
// acknowledged once the record is enqueued and a worker persists it later.
func (q *Queue) SaveNotification(ctx context.Context, n *models.Notification) (*models.SinkResult, error) {
	job, err := q.Enqueue(ctx, JobTypePersistNotification, n)
	if err != nil {
		return nil, &models.UpstreamError{Stage: "persist", Err: err}
	}

	response, _ := json.Marshal(map[string]string{"job_id": job.ID})
	return &models.SinkResult{
		Backend:  "queue",
		Status:   http.StatusAccepted,
		Response: response,
	}, nil
}

// Dequeue blocks up to timeout. It returns nil, nil when the queue is empty.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job from queue: %v", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected BLPOP result format")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %v", err)
	}
	job.raw = result[1]

	if err := q.client.RPush(ctx, q.processing, result[1]).Err(); err != nil {
		log.Printf("Warning: Failed to move job %s to processing queue: %v", job.ID, err)
	}

	return &job, nil
}

func (q *Queue) CompleteJob(ctx context.Context, job *Job) error {
	if err := q.client.LRem(ctx, q.processing, 1, job.raw).Err(); err != nil {
		return fmt.Errorf("failed to remove job from processing queue: %v", err)
	}

	log.Printf("Completed job %s of type %s", job.ID, job.Type)
	return nil
}

// FailJob parks the job on the failed list. There is no automatic retry;
// RetryJob requeues it by hand.
func (q *Queue) FailJob(ctx context.Context, job *Job, jobErr error) error {
	if err := q.client.LRem(ctx, q.processing, 1, job.raw).Err(); err != nil {
		log.Printf("Warning: Failed to remove job %s from processing queue: %v", job.ID, err)
	}

	now := time.Now()
	job.LastError = jobErr.Error()
	job.FailedAt = &now

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %v", err)
	}

	if err := q.client.RPush(ctx, q.failed, jobJSON).Err(); err != nil {
		return fmt.Errorf("failed to push job to failed queue: %v", err)
	}

	log.Printf("Job %s of type %s moved to failed queue: %v", job.ID, job.Type, jobErr)
	return nil
}

func (q *Queue) FailedJobs(ctx context.Context) ([]*Job, error) {
	entries, err := q.client.LRange(ctx, q.failed, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list failed jobs: %v", err)
	}

	jobs := make([]*Job, 0, len(entries))
	for _, entry := range entries {
		var job Job
		if err := json.Unmarshal([]byte(entry), &job); err != nil {
			log.Printf("Warning: Failed to unmarshal job: %v", err)
			continue
		}
		job.raw = entry
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

func (q *Queue) RetryJob(ctx context.Context, jobID string) error {
	jobs, err := q.FailedJobs(ctx)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if job.ID != jobID {
			continue
		}

		if err := q.client.LRem(ctx, q.failed, 1, job.raw).Err(); err != nil {
			return fmt.Errorf("failed to remove job from failed queue: %v", err)
		}

		job.LastError = ""
		job.FailedAt = nil
		updatedJobJSON, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %v", err)
		}

		if err := q.client.RPush(ctx, q.queueName, updatedJobJSON).Err(); err != nil {
			return fmt.Errorf("failed to push job to main queue: %v", err)
		}

		log.Printf("Manually requeued job %s of type %s", job.ID, job.Type)
		return nil
	}

	return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
}

// Stats returns the length of the pending, processing and failed lists.
func (q *Queue) Stats(ctx context.Context) (map[string]int64, error) {
	pipe := q.client.Pipeline()
	pending := pipe.LLen(ctx, q.queueName)
	processing := pipe.LLen(ctx, q.processing)
	failed := pipe.LLen(ctx, q.failed)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read queue stats: %v", err)
	}

	return map[string]int64{
		"pending":    pending.Val(),
		"processing": processing.Val(),
		"failed":     failed.Val(),
	}, nil
}
