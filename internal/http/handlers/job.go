package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nexusatelier/atelier-backend/internal/data/repos"
	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/http/middleware"
	"github.com/nexusatelier/atelier-backend/internal/http/response"
	"github.com/nexusatelier/atelier-backend/internal/platform/apierr"
	"github.com/nexusatelier/atelier-backend/internal/queue"
)

type JobHandler struct {
	jobs  repos.JobRepo
	queue *queue.Manager
}

func NewJobHandler(jobs repos.JobRepo, q *queue.Manager) *JobHandler {
	return &JobHandler{jobs: jobs, queue: q}
}

// loadOwned fetches the job and hides other users' jobs behind 404.
func (h *JobHandler) loadOwned(c *gin.Context) (*domain.Job, bool) {
	notFound := apierr.New(http.StatusNotFound, domain.ErrCodeJobNotFound, errors.New("job not found"))
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, notFound)
		return nil, false
	}
	job, err := h.jobs.GetByID(c.Request.Context(), nil, jobID)
	if err != nil || job == nil || job.UserID != middleware.UserID(c) {
		response.RespondAPIError(c, notFound)
		return nil, false
	}
	return job, true
}

// GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, ok := h.loadOwned(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /api/v1/jobs/:id/result
func (h *JobHandler) GetResult(c *gin.Context) {
	job, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if job.Status != domain.JobStatusCompleted {
		response.RespondError(c, http.StatusBadRequest, domain.ErrCodeJobNotCompleted,
			errors.New("job has not completed"))
		return
	}
	result, err := job.DecodedResult()
	if err != nil || result == nil {
		response.RespondError(c, http.StatusInternalServerError, domain.ErrCodeInternal,
			errors.New("job result is unreadable"))
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}

// POST /api/v1/jobs/:id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	job, ok := h.loadOwned(c)
	if !ok {
		return
	}
	cancelled, err := h.jobs.Cancel(c.Request.Context(), nil, job.ID)
	if err != nil {
		if errors.Is(err, repos.ErrNotCancellable) {
			response.RespondAPIError(c, apierr.New(http.StatusConflict, "JOB_NOT_CANCELLABLE", err))
			return
		}
		response.RespondError(c, http.StatusInternalServerError, domain.ErrCodeInternal, err)
		return
	}
	response.RespondOK(c, gin.H{"job": cancelled})
}

// GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var status *domain.JobStatus
	if s := c.Query("status"); s != "" {
		js := domain.JobStatus(s)
		status = &js
	}
	jobs, err := h.jobs.ListByUser(c.Request.Context(), nil, middleware.UserID(c), status, 50, 0)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, domain.ErrCodeInternal, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}

// GET /api/v1/jobs/stats
func (h *JobHandler) JobStats(c *gin.Context) {
	var jobType *domain.JobType
	if t := c.Query("type"); t != "" {
		jt := domain.JobType(t)
		if !jt.Valid() {
			response.RespondError(c, http.StatusBadRequest, "INVALID_JOB_TYPE", errors.New("unknown job type"))
			return
		}
		jobType = &jt
	}
	stats, err := h.jobs.QueueStats(c.Request.Context(), nil, jobType, 24*time.Hour)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, domain.ErrCodeInternal, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}

// GET /api/v1/queue/stats
func (h *JobHandler) QueueStats(c *gin.Context) {
	if t := c.Query("type"); t != "" {
		jt := domain.JobType(t)
		stats, err := h.queue.Stats(jt)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "INVALID_JOB_TYPE", err)
			return
		}
		response.RespondOK(c, gin.H{"stats": map[domain.JobType]queue.Stats{jt: stats}})
		return
	}
	response.RespondOK(c, gin.H{"stats": h.queue.StatsAll()})
}
