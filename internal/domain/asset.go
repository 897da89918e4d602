package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AssetType string

const (
	AssetTypeVideo    AssetType = "video"
	AssetTypeImage    AssetType = "image"
	AssetTypeAudio    AssetType = "audio"
	AssetTypeWorkflow AssetType = "workflow"
)

// Asset is the durable artifact of a successfully completed job. Exactly
// one asset is created per successful generation attempt.
type Asset struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectID       *uuid.UUID     `gorm:"type:uuid;index" json:"project_id,omitempty"`
	JobID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"job_id"`
	Type            AssetType      `gorm:"column:type;not null;index" json:"type"`
	URL             string         `gorm:"column:url;not null" json:"url"`
	ThumbnailURL    string         `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	Metadata        datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	FileSize        *int64         `gorm:"column:file_size" json:"file_size,omitempty"`
	DurationSeconds *float64       `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	Resolution      string         `gorm:"column:resolution" json:"resolution,omitempty"`
	Format          string         `gorm:"column:format" json:"format,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Asset) TableName() string { return "asset" }
