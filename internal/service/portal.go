package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/repository"
)

var productLabels = map[model.OrderType]string{
	model.OrderTypeSingle:        "Licenza singola VoiceGuide AirLink",
	model.OrderTypePackageTO:     "Pacchetto Tour Operator",
	model.OrderTypePackageSchool: "Pacchetto Scuole",
	model.OrderTypeMuseum:        "Partnership Musei",
}

// PortalService serves the partner dashboard for an authenticated partner.
type PortalService interface {
	Profile(partner *model.Partner) *dto.PartnerProfile
	Summary(ctx context.Context, partner *model.Partner) (*dto.PartnerSummary, error)
	Orders(ctx context.Context, partner *model.Partner) ([]dto.PartnerOrderRow, error)
	LegacyOrders(ctx context.Context, partner *model.Partner) ([]dto.LegacyPartnerOrder, error)
	LegacyPayouts(ctx context.Context, partner *model.Partner) ([]dto.LegacyPartnerPayout, error)
	LegacySummary(ctx context.Context, partner *model.Partner) (*dto.LegacyPartnerSummary, error)
}

type portalServiceImpl struct {
	orderRepo   repository.OrderRepository
	licenseRepo repository.LicenseRepository
	payoutRepo  repository.PayoutRepository
	paymentRepo repository.PaymentRepository
}

func NewPortalService(
	orderRepo repository.OrderRepository,
	licenseRepo repository.LicenseRepository,
	payoutRepo repository.PayoutRepository,
	paymentRepo repository.PaymentRepository,
) PortalService {
	return &portalServiceImpl{
		orderRepo:   orderRepo,
		licenseRepo: licenseRepo,
		payoutRepo:  payoutRepo,
		paymentRepo: paymentRepo,
	}
}

func (s *portalServiceImpl) Profile(p *model.Partner) *dto.PartnerProfile {
	return &dto.PartnerProfile{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		ReferralCode:  p.ReferralCode,
		PartnerType:   string(p.PartnerType),
		CommissionPct: p.CommissionPct,
		PartnerLevel:  partnerLevel(p),
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
}

func (s *portalServiceImpl) Summary(ctx context.Context, p *model.Partner) (*dto.PartnerSummary, error) {
	payouts, err := s.payoutRepo.ListByPartner(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	payments, err := s.paymentRepo.ListByPartner(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	orders, err := s.orderRepo.List(ctx, repository.OrderFilter{PartnerID: &p.ID})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	licenses, err := s.licenseRepo.CountByPartner(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("count licenses: %w", err)
	}

	generated := sumPayouts(payouts, false)
	paid := sumPayments(payments)
	balance := generated.Sub(paid)

	return &dto.PartnerSummary{
		TotalGenerated:    generated,
		TotalPaid:         paid,
		BalanceDue:        balance,
		TotalCommission:   generated,
		PendingCommission: balance,
		TotalOrders:       len(orders),
		TotalLicensesSold: licenses,
		PartnerType:       string(p.PartnerType),
		CommissionPct:     p.CommissionPct,
		PartnerLevel:      partnerLevel(p),
	}, nil
}

func (s *portalServiceImpl) Orders(ctx context.Context, p *model.Partner) ([]dto.PartnerOrderRow, error) {
	orders, err := s.orderRepo.List(ctx, repository.OrderFilter{PartnerID: &p.ID})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	payouts, err := s.payoutRepo.ListByPartner(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	byOrder := make(map[uint]*model.PartnerPayout, len(payouts))
	for _, po := range payouts {
		byOrder[po.OrderID] = po
	}

	rows := make([]dto.PartnerOrderRow, 0, len(orders))
	for _, o := range orders {
		row := dto.PartnerOrderRow{
			ID:               o.ID,
			CreatedAt:        o.CreatedAt,
			ProductName:      productLabel(o.OrderType),
			LicenseType:      string(o.OrderType),
			GrossAmount:      o.TotalAmount,
			CommissionAmount: decimal.Zero,
		}
		po := byOrder[o.ID]
		if po != nil {
			row.CommissionAmount = po.Amount
		}
		row.Status = orderStatusLabel(o.PaymentStatus, po != nil && po.Paid)
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *portalServiceImpl) LegacyOrders(ctx context.Context, p *model.Partner) ([]dto.LegacyPartnerOrder, error) {
	orders, err := s.orderRepo.List(ctx, repository.OrderFilter{PartnerID: &p.ID})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	items := make([]dto.LegacyPartnerOrder, len(orders))
	for i, o := range orders {
		items[i] = dto.LegacyPartnerOrder{
			OrderID:       o.ID,
			TotalAmount:   o.TotalAmount,
			PaymentStatus: string(o.PaymentStatus),
			CreatedAt:     o.CreatedAt,
		}
	}
	return items, nil
}

func (s *portalServiceImpl) LegacyPayouts(ctx context.Context, p *model.Partner) ([]dto.LegacyPartnerPayout, error) {
	payouts, err := s.payoutRepo.ListByPartner(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	items := make([]dto.LegacyPartnerPayout, len(payouts))
	for i, po := range payouts {
		items[i] = dto.LegacyPartnerPayout{
			OrderID:   po.OrderID,
			Amount:    po.Amount,
			Paid:      po.Paid,
			CreatedAt: po.CreatedAt,
		}
	}
	return items, nil
}

// LegacySummary counts "paid" from payouts flagged paid, not from the payment ledger.
func (s *portalServiceImpl) LegacySummary(ctx context.Context, p *model.Partner) (*dto.LegacyPartnerSummary, error) {
	payouts, err := s.payoutRepo.ListByPartner(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	orders, err := s.orderRepo.List(ctx, repository.OrderFilter{PartnerID: &p.ID})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	total := sumPayouts(payouts, false)
	paid := sumPayouts(payouts, true)
	return &dto.LegacyPartnerSummary{
		TotalOrders:     len(orders),
		TotalCommission: total,
		TotalPaid:       paid,
		TotalUnpaid:     total.Sub(paid),
	}, nil
}

func partnerLevel(p *model.Partner) string {
	tier := p.PartnerType
	if tier == "" {
		tier = model.PartnerTierBase
	}
	return fmt.Sprintf("%s (%s%%)", tier, p.CommissionPct.StringFixed(0))
}

func productLabel(t model.OrderType) string {
	if label, ok := productLabels[t]; ok {
		return label
	}
	return "Ordine VoiceGuide AirLink"
}

func orderStatusLabel(status model.PaymentStatus, payoutPaid bool) string {
	switch status {
	case model.PaymentStatusPaid:
		if payoutPaid {
			return "paid"
		}
		return "pending_payout"
	case model.PaymentStatusPending:
		return "payment_pending"
	case model.PaymentStatusFailed:
		return "payment_failed"
	case model.PaymentStatusRefunded:
		return "refunded"
	}
	return "unknown"
}

func sumPayouts(payouts []*model.PartnerPayout, onlyPaid bool) decimal.Decimal {
	total := decimal.Zero
	for _, po := range payouts {
		if onlyPaid && !po.Paid {
			continue
		}
		total = total.Add(po.Amount)
	}
	return total
}

func sumPayments(payments []*model.PartnerPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
