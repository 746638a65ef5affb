package repository

import (
	"context"

	"gorm.io/gorm"

	"voiceguide-backend/internal/model"
)

type TrialRequestRepository interface {
	Create(ctx context.Context, req *model.TrialRequest) error
	FindByID(ctx context.Context, id uint) (*model.TrialRequest, error)
	List(ctx context.Context, status model.TrialRequestStatus) ([]*model.TrialRequest, error)
	Count(ctx context.Context, status model.TrialRequestStatus) (int64, error)
	Resolve(ctx context.Context, tx *gorm.DB, id uint, status model.TrialRequestStatus, message *string) error
}

type trialRequestRepoImpl struct {
	db *gorm.DB
}

func NewTrialRequestRepository(db *gorm.DB) TrialRequestRepository {
	return &trialRequestRepoImpl{db: db}
}

func (r *trialRequestRepoImpl) Create(ctx context.Context, req *model.TrialRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *trialRequestRepoImpl) FindByID(ctx context.Context, id uint) (*model.TrialRequest, error) {
	var req model.TrialRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *trialRequestRepoImpl) List(ctx context.Context, status model.TrialRequestStatus) ([]*model.TrialRequest, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var reqs []*model.TrialRequest
	if err := q.Order("created_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *trialRequestRepoImpl) Count(ctx context.Context, status model.TrialRequestStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TrialRequest{}).
		Where("status = ?", status).
		Count(&count).Error

	return count, err
}

// Resolve moves a PENDING request to status, replacing the message when one is
// given. gorm.ErrRecordNotFound means the request was no longer pending.
func (r *trialRequestRepoImpl) Resolve(ctx context.Context, tx *gorm.DB, id uint, status model.TrialRequestStatus, message *string) error {
	updates := map[string]interface{}{"status": status}
	if message != nil {
		updates["message"] = *message
	}

	result := tx.WithContext(ctx).Model(&model.TrialRequest{}).
		Where("id = ? AND status = ?", id, model.TrialRequestPending).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
