package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"voiceguide-backend/internal/model"
)

type PayoutRepository interface {
	Create(ctx context.Context, payout *model.PartnerPayout) error
	CreateIfAbsent(ctx context.Context, payout *model.PartnerPayout) (bool, error)
	FindByID(ctx context.Context, id uint) (*model.PartnerPayout, error)
	FindByOrderID(ctx context.Context, orderID uint) (*model.PartnerPayout, error)
	ListByPartner(ctx context.Context, partnerID uint) ([]*model.PartnerPayout, error)
	ListAll(ctx context.Context) ([]*model.PartnerPayout, error)
	MarkPaid(ctx context.Context, id uint, paidAt time.Time) error
}

type payoutRepoImpl struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepoImpl{db: db}
}

func (r *payoutRepoImpl) Create(ctx context.Context, payout *model.PartnerPayout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

// CreateIfAbsent inserts the payout unless the order already has one.
func (r *payoutRepoImpl) CreateIfAbsent(ctx context.Context, payout *model.PartnerPayout) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(payout)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *payoutRepoImpl) FindByID(ctx context.Context, id uint) (*model.PartnerPayout, error) {
	var payout model.PartnerPayout
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&payout).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepoImpl) FindByOrderID(ctx context.Context, orderID uint) (*model.PartnerPayout, error) {
	var payout model.PartnerPayout
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&payout).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepoImpl) ListByPartner(ctx context.Context, partnerID uint) ([]*model.PartnerPayout, error) {
	var payouts []*model.PartnerPayout
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC, id DESC").
		Find(&payouts).Error

	if err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *payoutRepoImpl) ListAll(ctx context.Context) ([]*model.PartnerPayout, error) {
	var payouts []*model.PartnerPayout
	if err := r.db.WithContext(ctx).Order("id").Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

// MarkPaid flags the payout as paid; an already paid payout keeps its paid_at.
func (r *payoutRepoImpl) MarkPaid(ctx context.Context, id uint, paidAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.PartnerPayout{}).
		Where("id = ? AND paid = ?", id, false).
		Updates(map[string]interface{}{
			"paid":    true,
			"paid_at": paidAt,
		}).Error
}
