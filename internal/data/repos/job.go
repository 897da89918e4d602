package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

// ErrNotCancellable is returned by Cancel when the job has already
// reached a terminal status.
var ErrNotCancellable = errors.New("job is not cancellable")

// QueueStats is the repository-side status breakdown over a time window,
// distinct from the in-memory queue snapshot.
type QueueStats struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

/*
JobRepo owns a Job's durable state. Every status-defining write is
guarded by the current status so that:
  - processing is entered only from queued, or from failed when the
    queue re-dispatches a retry (which clears the previous error);
  - completed/failed are entered only from processing, so a terminal
    write can never overwrite a later terminal write;
  - cancelled is entered only from queued or processing.

Guarded methods report whether the transition landed instead of
returning an error, so callers can treat a lost race as a signal rather
than a failure.
*/
type JobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, userID uuid.UUID, jobType domain.JobType, params domain.JobParams, projectID *uuid.UUID, priority int) (*domain.Job, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Job, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status *domain.JobStatus, limit, offset int) ([]*domain.Job, error)
	MarkProcessing(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	SetResult(ctx context.Context, tx *gorm.DB, id uuid.UUID, result *domain.JobResult) (bool, error)
	SetError(ctx context.Context, tx *gorm.DB, id uuid.UUID, jobErr *domain.JobError) (bool, error)
	Cancel(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Job, error)
	QueueStats(ctx context.Context, tx *gorm.DB, jobType *domain.JobType, window time.Duration) (QueueStats, error)
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{
		db:  db,
		log: baseLog.With("repo", "JobRepo"),
	}
}

func (r *jobRepo) Create(ctx context.Context, tx *gorm.DB, userID uuid.UUID, jobType domain.JobType, params domain.JobParams, projectID *uuid.UUID, priority int) (*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if !jobType.Valid() {
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}
	raw, err := domain.EncodeParams(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	if priority <= 0 {
		priority = domain.DefaultPriority
	}
	now := time.Now()
	job := &domain.Job{
		ID:          uuid.New(),
		UserID:      userID,
		ProjectID:   projectID,
		Type:        jobType,
		Status:      domain.JobStatusQueued,
		Priority:    priority,
		Params:      raw,
		CreditsUsed: domain.EstimateCredits(jobType, params),
		CreatedAt:   now,
	}
	if err := transaction.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func (r *jobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var job domain.Job
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, nil
	}
	return &job, nil
}

func (r *jobRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, status *domain.JobStatus, limit, offset int) ([]*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var out []*domain.Job
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) MarkProcessing(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	res := transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status IN ?", id, []domain.JobStatus{domain.JobStatusQueued, domain.JobStatusFailed}).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusProcessing,
			"started_at":   gorm.Expr("COALESCE(started_at, ?)", now),
			"error":        nil,
			"completed_at": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *jobRepo) SetResult(ctx context.Context, tx *gorm.DB, id uuid.UUID, result *domain.JobResult) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	raw, err := marshalJSON(result)
	if err != nil {
		return false, fmt.Errorf("encode result: %w", err)
	}
	res := transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, domain.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusCompleted,
			"result":       raw,
			"model_used":   result.ModelUsed,
			"completed_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Warn("Terminal success write rejected", "job_id", id)
		return false, nil
	}
	return true, nil
}

func (r *jobRepo) SetError(ctx context.Context, tx *gorm.DB, id uuid.UUID, jobErr *domain.JobError) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	raw, err := marshalJSON(jobErr)
	if err != nil {
		return false, fmt.Errorf("encode error: %w", err)
	}
	res := transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, domain.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusFailed,
			"error":        raw,
			"completed_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Warn("Terminal failure write rejected", "job_id", id)
		return false, nil
	}
	return true, nil
}

func (r *jobRepo) Cancel(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status IN ?", id, []domain.JobStatus{domain.JobStatusQueued, domain.JobStatusProcessing}).
		Update("status", domain.JobStatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotCancellable
	}
	return r.GetByID(ctx, transaction, id)
}

func (r *jobRepo) QueueStats(ctx context.Context, tx *gorm.DB, jobType *domain.JobType, window time.Duration) (QueueStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	q := transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("created_at > ?", time.Now().Add(-window))
	if jobType != nil {
		q = q.Where("type = ?", *jobType)
	}
	var rows []struct {
		Status domain.JobStatus
		Count  int
	}
	if err := q.Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return QueueStats{}, err
	}
	var stats QueueStats
	for _, row := range rows {
		switch row.Status {
		case domain.JobStatusQueued:
			stats.Queued = row.Count
		case domain.JobStatusProcessing:
			stats.Processing = row.Count
		case domain.JobStatusCompleted:
			stats.Completed = row.Count
		case domain.JobStatusFailed:
			stats.Failed = row.Count
		}
	}
	return stats, nil
}

func marshalJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
