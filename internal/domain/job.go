package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobType string

const (
	JobTypeVideo    JobType = "video"
	JobTypeImage    JobType = "image"
	JobTypeAudio    JobType = "audio"
	JobTypeWorkflow JobType = "workflow"
)

// JobTypes lists every schedulable type, in queue-wiring order.
var JobTypes = []JobType{JobTypeVideo, JobTypeImage, JobTypeAudio, JobTypeWorkflow}

func (t JobType) Valid() bool {
	switch t {
	case JobTypeVideo, JobTypeImage, JobTypeAudio, JobTypeWorkflow:
		return true
	}
	return false
}

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed out of s,
// except the failed->processing re-entry performed by the retry path.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// DefaultPriority is assigned when a submission does not specify one.
// Lower values are dispatched first.
const DefaultPriority = 5

// ErrJobNotRunnable signals that a job's durable state no longer admits
// execution: it was cancelled, or a terminal write already landed. The
// queue drops such attempts without retrying.
var ErrJobNotRunnable = errors.New("job is no longer runnable")

type Job struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectID   *uuid.UUID     `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Type        JobType        `gorm:"column:type;not null;index" json:"type"`
	Status      JobStatus      `gorm:"column:status;not null;index" json:"status"`
	Priority    int            `gorm:"column:priority;not null;default:5" json:"priority"`
	Params      datatypes.JSON `gorm:"column:params;type:jsonb" json:"params"`
	Result      datatypes.JSON `gorm:"column:result;type:jsonb" json:"result,omitempty"`
	Error       datatypes.JSON `gorm:"column:error;type:jsonb" json:"error,omitempty"`
	ModelUsed   string         `gorm:"column:model_used" json:"model_used,omitempty"`
	CreditsUsed int            `gorm:"column:credits_used;not null" json:"credits_used"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	StartedAt   *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Job) TableName() string { return "job" }

// DecodedParams re-parses the stored params column into its typed variant.
func (j *Job) DecodedParams() (JobParams, error) {
	return DecodeParams(j.Params)
}

// DecodedResult returns the persisted result, or nil while non-terminal.
func (j *Job) DecodedResult() (*JobResult, error) {
	if len(j.Result) == 0 {
		return nil, nil
	}
	var r JobResult
	if err := json.Unmarshal(j.Result, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DecodedError returns the persisted error, or nil while non-failed.
func (j *Job) DecodedError() (*JobError, error) {
	if len(j.Error) == 0 {
		return nil, nil
	}
	var e JobError
	if err := json.Unmarshal(j.Error, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// JobResult is the durable payload of a completed job. AssetID points at
// the Asset row created by the same attempt.
type JobResult struct {
	AssetID      uuid.UUID      `json:"asset_id"`
	URL          string         `json:"url"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
	Metadata     map[string]any `json:"metadata"`
	QualityScore float64        `json:"quality_score,omitempty"`
	ModelUsed    string         `json:"model_used"`
}

// JobError is the durable payload of a failed job. Never mutated after
// it has been persisted.
type JobError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Retryable  bool           `json:"retryable"`
	Suggestion string         `json:"suggestion,omitempty"`
}

const (
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeJobNotFound      = "JOB_NOT_FOUND"
	ErrCodeJobNotCompleted  = "JOB_NOT_COMPLETED"
	ErrCodeAssetNotFound    = "ASSET_NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)
