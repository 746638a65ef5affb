package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"voiceguide-backend/internal/model"
)

type PartnerRequestRepository interface {
	Create(ctx context.Context, req *model.PartnerRequest) error
	FindByID(ctx context.Context, id uint) (*model.PartnerRequest, error)
	FindByEmail(ctx context.Context, email string) (*model.PartnerRequest, error)
	List(ctx context.Context, status model.PartnerRequestStatus) ([]*model.PartnerRequest, error)
	Resolve(ctx context.Context, tx *gorm.DB, id uint, status model.PartnerRequestStatus, tier model.PartnerTier) error
}

type partnerRequestRepoImpl struct {
	db *gorm.DB
}

func NewPartnerRequestRepository(db *gorm.DB) PartnerRequestRepository {
	return &partnerRequestRepoImpl{db: db}
}

func (r *partnerRequestRepoImpl) Create(ctx context.Context, req *model.PartnerRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *partnerRequestRepoImpl) FindByID(ctx context.Context, id uint) (*model.PartnerRequest, error) {
	var req model.PartnerRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *partnerRequestRepoImpl) FindByEmail(ctx context.Context, email string) (*model.PartnerRequest, error) {
	var req model.PartnerRequest
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests newest first; an empty status lists all of them.
func (r *partnerRequestRepoImpl) List(ctx context.Context, status model.PartnerRequestStatus) ([]*model.PartnerRequest, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var reqs []*model.PartnerRequest
	if err := q.Order("created_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// Resolve moves a PENDING request to status, recording the final tier when one
// is given. gorm.ErrRecordNotFound means the request was no longer pending.
func (r *partnerRequestRepoImpl) Resolve(ctx context.Context, tx *gorm.DB, id uint, status model.PartnerRequestStatus, tier model.PartnerTier) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if tier != "" {
		updates["partner_tier"] = tier
	}
	result := tx.WithContext(ctx).Model(&model.PartnerRequest{}).
		Where("id = ? AND status = ?", id, model.PartnerRequestPending).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
