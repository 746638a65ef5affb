package repository

import (
	"context"

	"gorm.io/gorm"

	"voiceguide-backend/internal/model"
)

type LicenseFilter struct {
	OrderID *uint
	Email   string
}

type LicenseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, license *model.License) error
	CreateMany(ctx context.Context, tx *gorm.DB, licenses []*model.License) error
	FindByOrderID(ctx context.Context, orderID uint) ([]*model.License, error)
	CountByOrderID(ctx context.Context, tx *gorm.DB, orderID uint) (int64, error)
	List(ctx context.Context, filter LicenseFilter) ([]*model.License, error)
	CountByPartner(ctx context.Context, partnerID uint) (int64, error)
}

type licenseRepoImpl struct {
	db *gorm.DB
}

func NewLicenseRepository(db *gorm.DB) LicenseRepository {
	return &licenseRepoImpl{db: db}
}

func (r *licenseRepoImpl) Create(ctx context.Context, tx *gorm.DB, license *model.License) error {
	return tx.WithContext(ctx).Create(license).Error
}

func (r *licenseRepoImpl) CreateMany(ctx context.Context, tx *gorm.DB, licenses []*model.License) error {
	if len(licenses) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&licenses).Error
}

func (r *licenseRepoImpl) FindByOrderID(ctx context.Context, orderID uint) ([]*model.License, error) {
	var licenses []*model.License
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&licenses).Error

	if err != nil {
		return nil, err
	}

	return licenses, nil
}

func (r *licenseRepoImpl) CountByOrderID(ctx context.Context, tx *gorm.DB, orderID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.License{}).
		Where("order_id = ?", orderID).
		Count(&count).Error

	return count, err
}

func (r *licenseRepoImpl) List(ctx context.Context, filter LicenseFilter) ([]*model.License, error) {
	q := r.db.WithContext(ctx)
	if filter.OrderID != nil {
		q = q.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Email != "" {
		q = q.Where("issued_to_email = ?", filter.Email)
	}

	var licenses []*model.License
	if err := q.Order("created_at DESC, id DESC").Find(&licenses).Error; err != nil {
		return nil, err
	}
	return licenses, nil
}

// CountByPartner counts licenses issued for orders attributed to the partner.
func (r *licenseRepoImpl) CountByPartner(ctx context.Context, partnerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.License{}).
		Joins("JOIN orders ON orders.id = licenses.order_id").
		Where("orders.partner_id = ?", partnerID).
		Count(&count).Error

	return count, err
}
