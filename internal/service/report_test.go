package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"voiceguide-backend/internal/model"
)

// datedOrder stores an order and moves its created_at to at.
func (e *env) datedOrder(t *testing.T, code string, status model.PaymentStatus, at time.Time, cost string) *model.Order {
	t.Helper()
	o := e.order(t, code, status, nil)
	updates := map[string]interface{}{"created_at": at}
	if cost != "" {
		updates["estimated_agora_cost"] = decimal.RequireFromString(cost)
	}
	require.NoError(t, e.db.Model(&model.Order{}).Where("id = ?", o.ID).Updates(updates).Error)
	return o
}

func TestReportOrdersDateRange(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := NewReportService(e.orders)

	e.datedOrder(t, "SINGLE_25", model.PaymentStatusPaid, time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC), "")
	inRange := e.datedOrder(t, "PACKAGE_TO_10", model.PaymentStatusPaid, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), "61.80")
	lastDay := e.datedOrder(t, "SINGLE_10", model.PaymentStatusPending, time.Date(2026, 2, 28, 22, 0, 0, 0, time.UTC), "")
	e.datedOrder(t, "SINGLE_10", model.PaymentStatusPaid, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "")

	report, err := svc.Orders(ctx, "2026-02-01", "2026-02-28")
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalCount)
	assert.Equal(t, lastDay.ID, report.Items[0].ID, "newest first")
	assert.Equal(t, inRange.ID, report.Items[1].ID)
	assert.Equal(t, "2026-02-01", *report.FromDate)

	// 119 + 7.99
	assert.True(t, dec("126.99").Equal(report.TotalAmount))
	assert.True(t, dec("61.80").Equal(report.TotalEstimatedAgoraCost))
	assert.True(t, dec("57.20").Equal(report.TotalMargin))
	assert.True(t, report.Items[1].Margin.Valid)
	assert.False(t, report.Items[0].Margin.Valid)

	all, err := svc.Orders(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 4, all.TotalCount)
	assert.Nil(t, all.FromDate)

	_, err = svc.Orders(ctx, "01/02/2026", "")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.Orders(ctx, "", "2026-13-01")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestReportOrderDetail(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := NewReportService(e.orders)
	o := e.order(t, "SINGLE_25", model.PaymentStatusPaid, nil)
	country := "IT"
	require.NoError(t, e.orders.CreateBillingDetails(ctx, e.db, &model.OrderBillingDetails{OrderID: o.ID, RequestInvoice: true, Country: &country}))

	item, err := svc.Order(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, item.ID)
	require.NotNil(t, item.BillingDetails)
	assert.Equal(t, "IT", *item.BillingDetails.(*model.OrderBillingDetails).Country)

	_, err = svc.Order(ctx, 4242)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Ordine con id=4242 non trovato.", err.Error())
}

func TestReportStats(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := NewReportService(e.orders)

	empty, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalOrders)
	assert.Len(t, empty.OrdersByType, len(model.OrderTypes))
	assert.Len(t, empty.OrdersByStatus, len(model.PaymentStatuses))
	assert.Zero(t, empty.OrdersByType["MUSEUM"])

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	e.datedOrder(t, "PACKAGE_TO_10", model.PaymentStatusPaid, now, "61.80")
	e.datedOrder(t, "SINGLE_25", model.PaymentStatusPending, now, "")
	e.datedOrder(t, "SINGLE_10", model.PaymentStatusPaid, now, "")

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, int64(2), stats.OrdersByType["SINGLE"])
	assert.Equal(t, int64(1), stats.OrdersByType["PACKAGE_TO"])
	assert.Equal(t, int64(2), stats.OrdersByStatus["PAID"])
	assert.Equal(t, int64(0), stats.OrdersByStatus["REFUNDED"])
	// 119 + 14.99 + 7.99
	assert.True(t, dec("141.98").Equal(stats.TotalAmount))
	assert.True(t, dec("80.18").Equal(stats.TotalMargin))
}

func TestReportExportOrders(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := NewReportService(e.orders)
	at := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	o := e.datedOrder(t, "PACKAGE_TO_10", model.PaymentStatusPaid, at, "61.80")

	buf, err := svc.ExportOrders(ctx, "2026-02-01", "2026-02-28")
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Referral code", rows[0][len(rows[0])-1])
	assert.Equal(t, "buyer@example.com", rows[1][2])
	assert.Equal(t, "PACKAGE_TO", rows[1][4])
	assert.Equal(t, "2026-02-10T10:00:00Z", rows[1][1])
	assert.Equal(t, "119", rows[1][7])
	assert.Equal(t, "PAID", rows[1][11])
	assert.NotEmpty(t, o.ID)

	_, err = svc.ExportOrders(ctx, "bad", "")
	assert.ErrorIs(t, err, ErrInvalid)
}
