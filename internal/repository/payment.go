package repository

import (
	"context"

	"gorm.io/gorm"

	"voiceguide-backend/internal/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.PartnerPayment) error
	ListByPartner(ctx context.Context, partnerID uint) ([]*model.PartnerPayment, error)
	ListAll(ctx context.Context) ([]*model.PartnerPayment, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{db: db}
}

func (r *paymentRepoImpl) Create(ctx context.Context, payment *model.PartnerPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) ListByPartner(ctx context.Context, partnerID uint) ([]*model.PartnerPayment, error) {
	var payments []*model.PartnerPayment
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC, id DESC").
		Find(&payments).Error

	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepoImpl) ListAll(ctx context.Context) ([]*model.PartnerPayment, error) {
	var payments []*model.PartnerPayment
	if err := r.db.WithContext(ctx).Order("id").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
