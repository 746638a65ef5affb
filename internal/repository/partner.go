package repository

import (
	"context"

	"gorm.io/gorm"

	"voiceguide-backend/internal/model"
)

type PartnerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, partner *model.Partner) error
	FindByID(ctx context.Context, id uint) (*model.Partner, error)
	FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.Partner, error)
	FindActiveByReferralCode(ctx context.Context, code string) (*model.Partner, error)
	FindActiveByLogin(ctx context.Context, email, referralCode string) (*model.Partner, error)
	ReferralCodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error)
	List(ctx context.Context) ([]*model.Partner, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
}

type partnerRepoImpl struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepoImpl{db: db}
}

func (r *partnerRepoImpl) Create(ctx context.Context, tx *gorm.DB, partner *model.Partner) error {
	return tx.WithContext(ctx).Create(partner).Error
}

func (r *partnerRepoImpl) FindByID(ctx context.Context, id uint) (*model.Partner, error) {
	var partner model.Partner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepoImpl) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.Partner, error) {
	var partner model.Partner
	if err := tx.WithContext(ctx).Where("email = ?", email).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepoImpl) FindActiveByReferralCode(ctx context.Context, code string) (*model.Partner, error) {
	var partner model.Partner
	err := r.db.WithContext(ctx).
		Where("referral_code = ? AND is_active = ?", code, true).
		First(&partner).Error

	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepoImpl) FindActiveByLogin(ctx context.Context, email, referralCode string) (*model.Partner, error) {
	var partner model.Partner
	err := r.db.WithContext(ctx).
		Where("email = ? AND referral_code = ? AND is_active = ?", email, referralCode, true).
		First(&partner).Error

	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepoImpl) ReferralCodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Partner{}).
		Where("referral_code = ?", code).
		Count(&count).Error

	return count > 0, err
}

func (r *partnerRepoImpl) List(ctx context.Context) ([]*model.Partner, error) {
	var partners []*model.Partner
	if err := r.db.WithContext(ctx).Order("id").Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *partnerRepoImpl) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Partner{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
