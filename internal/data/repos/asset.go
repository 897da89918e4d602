package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

type AssetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, asset *domain.Asset) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Asset, error)
	GetByJob(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.Asset, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, assetType *domain.AssetType, limit, offset int) ([]*domain.Asset, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{
		db:  db,
		log: baseLog.With("repo", "AssetRepo"),
	}
}

func (r *assetRepo) Create(ctx context.Context, tx *gorm.DB, asset *domain.Asset) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(asset).Error
}

func (r *assetRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Asset, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var asset domain.Asset
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&asset).Error
	if err != nil {
		return nil, err
	}
	if asset.ID == uuid.Nil {
		return nil, nil
	}
	return &asset, nil
}

func (r *assetRepo) GetByJob(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.Asset, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if jobID == uuid.Nil {
		return nil, nil
	}
	var asset domain.Asset
	err := transaction.WithContext(ctx).
		Where("job_id = ?", jobID).
		Limit(1).
		Find(&asset).Error
	if err != nil {
		return nil, err
	}
	if asset.ID == uuid.Nil {
		return nil, nil
	}
	return &asset, nil
}

func (r *assetRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, assetType *domain.AssetType, limit, offset int) ([]*domain.Asset, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if assetType != nil {
		q = q.Where("type = ?", *assetType)
	}
	var out []*domain.Asset
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&domain.Asset{}).Error
}
