package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"voiceguide-backend/internal/model"
)

// PaymentConfirmation carries the gateway references stored when an order is paid.
type PaymentConfirmation struct {
	Method                model.PaymentMethod
	PaidAt                time.Time
	StripeSessionID       string
	StripePaymentIntentID string
}

// OrderFilter narrows order listings. Zero values are ignored; To is exclusive.
type OrderFilter struct {
	From      *time.Time
	To        *time.Time
	PartnerID *uint
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateBillingDetails(ctx context.Context, tx *gorm.DB, details *model.OrderBillingDetails) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*model.Order, error)
	FindByStripePaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error)
	FindByPaypalOrderID(ctx context.Context, paypalOrderID string) (*model.Order, error)
	AttachGateway(ctx context.Context, id uint, fields map[string]interface{}) error
	MarkPaid(ctx context.Context, tx *gorm.DB, id uint, confirmation PaymentConfirmation) (bool, error)
	MarkFailed(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	List(ctx context.Context, filter OrderFilter) ([]*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Omit("Package", "BillingDetails").Create(order).Error
}

func (r *orderRepoImpl) CreateBillingDetails(ctx context.Context, tx *gorm.DB, details *model.OrderBillingDetails) error {
	return tx.WithContext(ctx).Create(details).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *orderRepoImpl) FindByStripeSessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	return r.findOne(ctx, "stripe_session_id = ?", sessionID)
}

func (r *orderRepoImpl) FindByStripePaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	return r.findOne(ctx, "stripe_payment_intent_id = ?", paymentIntentID)
}

func (r *orderRepoImpl) FindByPaypalOrderID(ctx context.Context, paypalOrderID string) (*model.Order, error) {
	return r.findOne(ctx, "paypal_order_id = ?", paypalOrderID)
}

func (r *orderRepoImpl) findOne(ctx context.Context, query string, args ...interface{}) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Package").
		Preload("BillingDetails").
		Where(query, args...).
		Order("id DESC").
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// AttachGateway stores the payment method and provider references chosen at checkout.
func (r *orderRepoImpl) AttachGateway(ctx context.Context, id uint, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&model.Order{}).
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

// MarkPaid moves a PENDING or FAILED order to PAID. It reports false when the
// row was in neither state, so concurrent confirmations transition the order once.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, id uint, c PaymentConfirmation) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": model.PaymentStatusPaid,
		"payment_method": c.Method,
		"paid_at":        c.PaidAt,
		"updated_at":     time.Now(),
	}
	if c.StripeSessionID != "" {
		updates["stripe_session_id"] = c.StripeSessionID
	}
	if c.StripePaymentIntentID != "" {
		updates["stripe_payment_intent_id"] = c.StripePaymentIntentID
	}

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where(`
			id = ?
			AND payment_status IN ?
		`,
			id,
			[]model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusFailed},
		).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", id, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusFailed,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) List(ctx context.Context, filter OrderFilter) ([]*model.Order, error) {
	q := r.db.WithContext(ctx).Preload("Package").Preload("BillingDetails")
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	if filter.PartnerID != nil {
		q = q.Where("partner_id = ?", *filter.PartnerID)
	}

	var orders []*model.Order
	if err := q.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
