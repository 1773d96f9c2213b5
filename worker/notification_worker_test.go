package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"efipay-proxy/models"
	"efipay-proxy/queue"
)

type fakeQueue struct {
	mu        sync.Mutex
	pending   []*queue.Job
	completed []string
	failed    map[string]error
}

func newFakeQueue(jobs ...*queue.Job) *fakeQueue {
	return &fakeQueue{pending: jobs, failed: map[string]error{}}
}

func (f *fakeQueue) Dequeue(_ context.Context, _ time.Duration) (*queue.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		time.Sleep(5 * time.Millisecond)
		return nil, nil
	}
	job := f.pending[0]
	f.pending = f.pending[1:]
	return job, nil
}

func (f *fakeQueue) CompleteJob(_ context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, job.ID)
	return nil
}

func (f *fakeQueue) FailJob(_ context.Context, job *queue.Job, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[job.ID] = err
	return nil
}

func (f *fakeQueue) done() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.completed) + len(f.failed)
}

type recordingSink struct {
	mu    sync.Mutex
	saved []string
	fail  map[string]bool
}

func (s *recordingSink) SaveNotification(_ context.Context, n *models.Notification) (*models.SinkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[n.ID] {
		return nil, errors.New("insert failed")
	}
	s.saved = append(s.saved, n.ID)
	return &models.SinkResult{Backend: "test", Status: 201}, nil
}

func notificationJob(id string) *queue.Job {
	return &queue.Job{
		ID:           "job-" + id,
		Type:         queue.JobTypePersistNotification,
		Notification: &models.Notification{ID: id, TxID: "tx-" + id},
	}
}

func TestWorker_DrainsQueueIntoSink(t *testing.T) {
	q := newFakeQueue(
		notificationJob("a"),
		notificationJob("b"),
		notificationJob("c"),
		&queue.Job{ID: "job-bad", Type: "unknown"},
		&queue.Job{ID: "job-empty", Type: queue.JobTypePersistNotification},
	)
	sink := &recordingSink{fail: map[string]bool{"c": true}}

	w := NewWorker(q, sink)
	w.pollTimeout = 10 * time.Millisecond
	w.Start(2)

	require.Eventually(t, func() bool { return q.done() == 5 }, 2*time.Second, 10*time.Millisecond)
	w.Stop()

	require.ElementsMatch(t, []string{"a", "b"}, sink.saved)
	require.ElementsMatch(t, []string{"job-a", "job-b"}, q.completed)
	require.Len(t, q.failed, 3)
	require.Contains(t, q.failed, "job-c")
	require.Contains(t, q.failed, "job-bad")
	require.Contains(t, q.failed, "job-empty")
}

func TestWorker_StopIsIdempotent(t *testing.T) {
	w := NewWorker(newFakeQueue(), &recordingSink{})
	w.pollTimeout = 10 * time.Millisecond

	w.Stop()
	w.Start(1)
	w.Stop()
	w.Stop()
}
