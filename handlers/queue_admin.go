package handlers

import (
    "context"
    "errors"
    "fmt"
    "log"
    "net/http"

    "github.com/gorilla/mux"

    "efipay-proxy/queue"
    "efipay-proxy/utils"
)

// JobAdmin inspects and requeues webhook persistence jobs.
type JobAdmin interface {
    Stats(ctx context.Context) (map[string]int64, error)
    FailedJobs(ctx context.Context) ([]*queue.Job, error)
    RetryJob(ctx context.Context, jobID string) error
}

type QueueAdminHandler struct {
    jobs           JobAdmin
    internalSecret string
}

// NewQueueAdminHandler expõe a fila de webhooks para operação manual
func NewQueueAdminHandler(jobs JobAdmin, internalSecret string) (*QueueAdminHandler, error) {
    if jobs == nil {
        return nil, fmt.Errorf("job queue is required")
    }
    if internalSecret == "" {
        return nil, fmt.Errorf("internal secret is required")
    }
    return &QueueAdminHandler{
        jobs:           jobs,
        internalSecret: internalSecret,
    }, nil
}

func (h *QueueAdminHandler) RequireInternalSecret(next http.HandlerFunc) http.HandlerFunc {
    return requireInternalSecret(h.internalSecret, next)
}

func (h *QueueAdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
    stats, err := h.jobs.Stats(r.Context())
    if err != nil {
        log.Printf("Error reading queue stats: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Error reading queue stats")
        return
    }
    utils.SendSuccessResponse(w, stats)
}

func (h *QueueAdminHandler) FailedJobs(w http.ResponseWriter, r *http.Request) {
    jobs, err := h.jobs.FailedJobs(r.Context())
    if err != nil {
        log.Printf("Error listing failed jobs: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Error listing failed jobs")
        return
    }
    utils.SendSuccessResponse(w, jobs)
}

func (h *QueueAdminHandler) RetryJob(w http.ResponseWriter, r *http.Request) {
    jobID := mux.Vars(r)["id"]

    if err := h.jobs.RetryJob(r.Context(), jobID); err != nil {
        if errors.Is(err, queue.ErrJobNotFound) {
            utils.SendErrorResponse(w, http.StatusNotFound, "Job not found")
            return
        }
        log.Printf("Error retrying job %s: %v", jobID, err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Error retrying job")
        return
    }

    log.Printf("Job %s requeued by operator", jobID)
    utils.SendSuccessResponse(w, map[string]string{"job_id": jobID, "status": "requeued"})
}

// QueueHealthCheck reports the queue as failing when Redis cannot answer LLEN.
func QueueHealthCheck(jobs JobAdmin) HealthCheck {
    return func(ctx context.Context) error {
        _, err := jobs.Stats(ctx)
        return err
    }
}
