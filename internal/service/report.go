package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/repository"
)

const (
	dateLayout  = "2006-01-02"
	exportSheet = "Orders"
)

var exportHeader = []interface{}{
	"ID", "Created at", "Buyer email", "Buyer WhatsApp", "Order type", "Package ID",
	"Quantity", "Total amount", "Estimated Agora cost", "Margin", "Payment method",
	"Payment status", "Partner ID", "Referral code",
}

// ReportService builds the admin order reports. Margin is total minus the
// stored estimated Agora cost. Single-license orders store the cost of every
// unit bought, so their margins are lower than legacy rows that carried the
// cost of one license only.
type ReportService interface {
	Orders(ctx context.Context, fromDate, toDate string) (*dto.OrdersReport, error)
	Order(ctx context.Context, id uint) (*dto.OrderReportItem, error)
	Stats(ctx context.Context) (*dto.StatsOverview, error)
	ExportOrders(ctx context.Context, fromDate, toDate string) (*bytes.Buffer, error)
}

type reportServiceImpl struct {
	orderRepo repository.OrderRepository
}

func NewReportService(orderRepo repository.OrderRepository) ReportService {
	return &reportServiceImpl{orderRepo: orderRepo}
}

func (s *reportServiceImpl) Orders(ctx context.Context, fromDate, toDate string) (*dto.OrdersReport, error) {
	filter, err := dateFilter(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	report := &dto.OrdersReport{
		Items:                   make([]dto.OrderReportItem, 0, len(orders)),
		TotalAmount:             decimal.Zero,
		TotalEstimatedAgoraCost: decimal.Zero,
		TotalMargin:             decimal.Zero,
	}
	if fromDate != "" {
		report.FromDate = &fromDate
	}
	if toDate != "" {
		report.ToDate = &toDate
	}

	for _, o := range orders {
		item := reportItem(o)
		report.TotalAmount = report.TotalAmount.Add(o.TotalAmount)
		if o.EstimatedAgoraCost.Valid {
			report.TotalEstimatedAgoraCost = report.TotalEstimatedAgoraCost.Add(o.EstimatedAgoraCost.Decimal)
			report.TotalMargin = report.TotalMargin.Add(item.Margin.Decimal)
		}
		report.Items = append(report.Items, item)
	}
	report.TotalCount = len(report.Items)
	return report, nil
}

func (s *reportServiceImpl) Order(ctx context.Context, id uint) (*dto.OrderReportItem, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Ordine con id=%d non trovato.", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	item := reportItem(order)
	if order.BillingDetails != nil {
		item.BillingDetails = order.BillingDetails
	}
	return &item, nil
}

func (s *reportServiceImpl) Stats(ctx context.Context) (*dto.StatsOverview, error) {
	orders, err := s.orderRepo.List(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	stats := &dto.StatsOverview{
		TotalOrders:             len(orders),
		TotalAmount:             decimal.Zero,
		TotalEstimatedAgoraCost: decimal.Zero,
		OrdersByType:            make(map[string]int64, len(model.OrderTypes)),
		OrdersByStatus:          make(map[string]int64, len(model.PaymentStatuses)),
	}
	for _, t := range model.OrderTypes {
		stats.OrdersByType[string(t)] = 0
	}
	for _, st := range model.PaymentStatuses {
		stats.OrdersByStatus[string(st)] = 0
	}

	for _, o := range orders {
		stats.TotalAmount = stats.TotalAmount.Add(o.TotalAmount)
		if o.EstimatedAgoraCost.Valid {
			stats.TotalEstimatedAgoraCost = stats.TotalEstimatedAgoraCost.Add(o.EstimatedAgoraCost.Decimal)
		}
		stats.OrdersByType[string(o.OrderType)]++
		stats.OrdersByStatus[string(o.PaymentStatus)]++
	}
	stats.TotalMargin = stats.TotalAmount.Sub(stats.TotalEstimatedAgoraCost)
	return stats, nil
}

// ExportOrders renders the orders report as an xlsx workbook, one row per order.
func (s *reportServiceImpl) ExportOrders(ctx context.Context, fromDate, toDate string) (*bytes.Buffer, error) {
	report, err := s.Orders(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, it := range report.Items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			it.ID,
			it.CreatedAt.UTC().Format(time.RFC3339),
			it.BuyerEmail,
			deref(it.BuyerWhatsapp),
			it.OrderType,
			optionalUint(it.PackageID),
			it.Quantity,
			it.TotalAmount.InexactFloat64(),
			optionalDecimal(it.EstimatedAgoraCost),
			optionalDecimal(it.Margin),
			it.PaymentMethod,
			it.PaymentStatus,
			optionalUint(it.PartnerID),
			deref(it.ReferralCode),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", it.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func reportItem(o *model.Order) dto.OrderReportItem {
	item := dto.OrderReportItem{
		ID:                 o.ID,
		CreatedAt:          o.CreatedAt,
		BuyerEmail:         o.BuyerEmail,
		BuyerWhatsapp:      o.BuyerWhatsapp,
		OrderType:          string(o.OrderType),
		PackageID:          o.PackageID,
		Quantity:           o.Quantity,
		TotalAmount:        o.TotalAmount,
		EstimatedAgoraCost: o.EstimatedAgoraCost,
		PaymentMethod:      string(o.PaymentMethod),
		PaymentStatus:      string(o.PaymentStatus),
		PartnerID:          o.PartnerID,
		ReferralCode:       o.ReferralCode,
	}
	if o.EstimatedAgoraCost.Valid {
		item.Margin = decimal.NewNullDecimal(o.TotalAmount.Sub(o.EstimatedAgoraCost.Decimal))
	}
	return item
}

// dateFilter turns inclusive YYYY-MM-DD bounds into a created_at range.
func dateFilter(fromDate, toDate string) (repository.OrderFilter, error) {
	var filter repository.OrderFilter
	if fromDate != "" {
		from, err := time.Parse(dateLayout, fromDate)
		if err != nil {
			return filter, invalid("Invalid from_date, expected YYYY-MM-DD.")
		}
		filter.From = &from
	}
	if toDate != "" {
		to, err := time.Parse(dateLayout, toDate)
		if err != nil {
			return filter, invalid("Invalid to_date, expected YYYY-MM-DD.")
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	return filter, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalUint(v *uint) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optionalDecimal(v decimal.NullDecimal) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Decimal.InexactFloat64()
}
