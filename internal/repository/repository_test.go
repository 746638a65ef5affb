package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/testutil"
)

func newPendingOrder(t *testing.T, db *gorm.DB, partnerID *uint) *model.Order {
	t.Helper()
	order := &model.Order{
		BuyerEmail:     "buyer@example.com",
		OrderType:      model.OrderTypeSingle,
		Quantity:       1,
		SubtotalAmount: decimal.RequireFromString("14.99"),
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.RequireFromString("14.99"),
		PaymentMethod:  model.PaymentMethodOther,
		PaymentStatus:  model.PaymentStatusPending,
		PartnerID:      partnerID,
	}
	require.NoError(t, NewOrderRepository(db).Create(context.Background(), db, order))
	return order
}

func TestPackageSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewPackageRepository(db)

	require.NoError(t, repo.Seed(ctx, pricing.Catalog()))
	require.NoError(t, repo.Seed(ctx, pricing.Catalog()))

	pkgs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, pkgs, len(pricing.Catalog()))

	pkg, err := repo.FindActiveByCode(ctx, "PACKAGE_TO_10")
	require.NoError(t, err)
	assert.Equal(t, 10, pkg.NumLicenses)
	assert.True(t, decimal.NewFromInt(119).Equal(pkg.Price))

	_, err = repo.FindActiveByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderMarkPaidTransitionsOnce(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewOrderRepository(db)
	order := newPendingOrder(t, db, nil)

	conf := PaymentConfirmation{
		Method:          model.PaymentMethodStripe,
		PaidAt:          time.Now(),
		StripeSessionID: "cs_1",
	}
	ok, err := repo.MarkPaid(ctx, db, order.ID, conf)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkPaid(ctx, db, order.ID, conf)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByStripeSessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
	assert.Equal(t, model.PaymentMethodStripe, got.PaymentMethod)
	assert.NotNil(t, got.PaidAt)
	assert.True(t, decimal.RequireFromString("14.99").Equal(got.TotalAmount))

	ok, err = repo.MarkFailed(ctx, db, order.ID)
	require.NoError(t, err)
	assert.False(t, ok, "a paid order never goes back to failed")
}

func TestOrderMarkPaidAfterFailure(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewOrderRepository(db)
	order := newPendingOrder(t, db, nil)

	ok, err := repo.MarkFailed(ctx, db, order.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MarkPaid(ctx, db, order.ID, PaymentConfirmation{Method: model.PaymentMethodStripe, PaidAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)

	require.NoError(t, db.Model(&model.Order{}).Where("id = ?", order.ID).
		Update("payment_status", model.PaymentStatusRefunded).Error)
	ok, err = repo.MarkPaid(ctx, db, order.ID, PaymentConfirmation{Method: model.PaymentMethodStripe, PaidAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, ok, "refunded orders stay refunded")
}

func TestOrderListFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewOrderRepository(db)

	pid := uint(3)
	newPendingOrder(t, db, nil)
	newPendingOrder(t, db, &pid)

	all, err := repo.List(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := repo.List(ctx, OrderFilter{PartnerID: &pid})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, pid, *mine[0].PartnerID)

	future := time.Now().Add(time.Hour)
	none, err := repo.List(ctx, OrderFilter{From: &future})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPayoutCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewPayoutRepository(db)

	p := &model.PartnerPayout{PartnerID: 1, OrderID: 9, Amount: decimal.RequireFromString("1.42")}
	created, err := repo.CreateIfAbsent(ctx, p)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, &model.PartnerPayout{PartnerID: 1, OrderID: 9, Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, repo.MarkPaid(ctx, p.ID, time.Now()))
	got, err := repo.FindByOrderID(ctx, 9)
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.NotNil(t, got.PaidAt)
	assert.True(t, decimal.RequireFromString("1.42").Equal(got.Amount))
}

func TestWebhookEventRecordOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewWebhookEventRepository(testutil.NewDB(t))

	first, err := repo.Record(ctx, &model.WebhookEvent{Provider: "stripe", EventID: "evt_1", EventType: "checkout.session.completed"})
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.Record(ctx, &model.WebhookEvent{Provider: "stripe", EventID: "evt_1", EventType: "checkout.session.completed"})
	require.NoError(t, err)
	assert.False(t, again)

	exists, err := repo.Exists(ctx, "stripe", "evt_1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLicensePartnerCountAndOrderLookup(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewLicenseRepository(db)

	pid := uint(4)
	order := newPendingOrder(t, db, &pid)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	require.NoError(t, repo.CreateMany(ctx, db, []*model.License{
		{Code: "VG-LIC-00000001", LicenseType: model.LicenseTypeSingle, MaxGuests: 25, DurationHours: 4, IsActive: true, OrderID: &order.ID},
		{Code: "VG-LIC-00000002", LicenseType: model.LicenseTypeSingle, MaxGuests: 10, DurationHours: 24, IsActive: true, ExpiresAt: &past},
		{Code: "VG-LIC-00000003", LicenseType: model.LicenseTypeSingle, MaxGuests: 10, DurationHours: 24, IsActive: true, ExpiresAt: &future},
	}))

	count, err := repo.CountByPartner(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	byOrder, err := repo.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	assert.Equal(t, "VG-LIC-00000001", byOrder[0].Code)

	// activation state belongs to AirLink: a passed expiry is stored as issued
	all, err := repo.List(ctx, LicenseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, l := range all {
		assert.True(t, l.IsActive, l.Code)
		assert.False(t, l.IsExpired, l.Code)
	}
}

func TestPartnerRequestResolveOnlyFromPending(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewPartnerRequestRepository(db)

	req := &model.PartnerRequest{Name: "Ada", Email: "ada@example.com", PartnerTier: model.PartnerTierBase, Status: model.PartnerRequestPending}
	require.NoError(t, repo.Create(ctx, req))

	require.NoError(t, repo.Resolve(ctx, db, req.ID, model.PartnerRequestApproved, model.PartnerTierPro))
	err := repo.Resolve(ctx, db, req.ID, model.PartnerRequestRejected, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PartnerRequestApproved, got.Status)
	assert.Equal(t, model.PartnerTierPro, got.PartnerTier)
}
