package services

import (
	"github.com/google/uuid"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
	"github.com/nexusatelier/atelier-backend/internal/sse"
)

// JobNotifier is the side channel for live job lifecycle updates.
// Pipelines and the queue manager must tolerate a nil notifier.
type JobNotifier interface {
	JobQueued(userID uuid.UUID, job *domain.Job)
	JobStarted(userID uuid.UUID, job *domain.Job)
	JobCompleted(userID uuid.UUID, job *domain.Job, result *domain.JobResult)
	JobFailed(userID uuid.UUID, job *domain.Job, jobErr *domain.JobError)
}

type sseJobNotifier struct {
	hub *sse.Hub
	log *logger.Logger
}

func NewSSEJobNotifier(hub *sse.Hub, baseLog *logger.Logger) JobNotifier {
	return &sseJobNotifier{
		hub: hub,
		log: baseLog.With("service", "JobNotifier"),
	}
}

func (n *sseJobNotifier) publish(userID uuid.UUID, jobID uuid.UUID, event sse.Event, data any) {
	if n.hub == nil {
		return
	}
	n.hub.Publish(sse.UserChannel(userID), event, data)
	n.hub.Publish(sse.JobChannel(jobID), event, data)
}

func (n *sseJobNotifier) JobQueued(userID uuid.UUID, job *domain.Job) {
	n.publish(userID, job.ID, sse.EventJobQueued, job)
}

func (n *sseJobNotifier) JobStarted(userID uuid.UUID, job *domain.Job) {
	n.publish(userID, job.ID, sse.EventJobStarted, map[string]any{
		"job_id": job.ID,
		"status": domain.JobStatusProcessing,
	})
}

func (n *sseJobNotifier) JobCompleted(userID uuid.UUID, job *domain.Job, result *domain.JobResult) {
	n.publish(userID, job.ID, sse.EventJobCompleted, map[string]any{
		"job_id": job.ID,
		"status": domain.JobStatusCompleted,
		"result": result,
	})
}

func (n *sseJobNotifier) JobFailed(userID uuid.UUID, job *domain.Job, jobErr *domain.JobError) {
	n.publish(userID, job.ID, sse.EventJobFailed, map[string]any{
		"job_id": job.ID,
		"status": domain.JobStatusFailed,
		"error":  jobErr,
	})
}
