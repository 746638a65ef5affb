package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
)

// LedgerService keeps the two partner ledgers: commissions earned per order
// (payouts) and money actually transferred (payments).
type LedgerService interface {
	Balances(ctx context.Context) ([]dto.PartnerBalance, error)
	PartnerPayouts(ctx context.Context, partnerID uint) ([]dto.PayoutRow, error)
	CreatePayout(ctx context.Context, req *dto.PayoutCreate) (*model.PartnerPayout, error)
	MarkPayoutPaid(ctx context.Context, payoutID uint) (*model.PartnerPayout, error)

	PaymentTotals(ctx context.Context) ([]dto.PartnerPaymentsTotal, error)
	PartnerPayments(ctx context.Context, partnerID uint) ([]*model.PartnerPayment, error)
	CreatePayment(ctx context.Context, req *dto.PaymentCreate) (*model.PartnerPayment, error)
}

type ledgerServiceImpl struct {
	partnerRepo repository.PartnerRepository
	orderRepo   repository.OrderRepository
	payoutRepo  repository.PayoutRepository
	paymentRepo repository.PaymentRepository
	now         func() time.Time
}

func NewLedgerService(
	partnerRepo repository.PartnerRepository,
	orderRepo repository.OrderRepository,
	payoutRepo repository.PayoutRepository,
	paymentRepo repository.PaymentRepository,
) LedgerService {
	return &ledgerServiceImpl{
		partnerRepo: partnerRepo,
		orderRepo:   orderRepo,
		payoutRepo:  payoutRepo,
		paymentRepo: paymentRepo,
		now:         time.Now,
	}
}

func (s *ledgerServiceImpl) Balances(ctx context.Context) ([]dto.PartnerBalance, error) {
	partners, err := s.partnerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	payouts, err := s.payoutRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	payments, err := s.paymentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	generated := map[uint][]*model.PartnerPayout{}
	for _, po := range payouts {
		generated[po.PartnerID] = append(generated[po.PartnerID], po)
	}
	paid := map[uint][]*model.PartnerPayment{}
	for _, p := range payments {
		paid[p.PartnerID] = append(paid[p.PartnerID], p)
	}

	out := make([]dto.PartnerBalance, 0, len(partners))
	for _, p := range partners {
		g := sumPayouts(generated[p.ID], false)
		t := sumPayments(paid[p.ID])
		out = append(out, dto.PartnerBalance{
			PartnerID:      p.ID,
			PartnerName:    p.Name,
			ReferralCode:   p.ReferralCode,
			TotalGenerated: g,
			TotalPaid:      t,
			BalanceDue:     g.Sub(t),
		})
	}
	return out, nil
}

func (s *ledgerServiceImpl) PartnerPayouts(ctx context.Context, partnerID uint) ([]dto.PayoutRow, error) {
	if _, err := findPartner(ctx, s.partnerRepo, partnerID); err != nil {
		return nil, err
	}
	payouts, err := s.payoutRepo.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	rows := make([]dto.PayoutRow, len(payouts))
	for i, po := range payouts {
		rows[i] = dto.PayoutRow{
			ID:        po.ID,
			Amount:    po.Amount,
			Paid:      po.Paid,
			PaidAt:    po.PaidAt,
			CreatedAt: po.CreatedAt,
			OrderID:   po.OrderID,
			Note:      po.Note,
		}
	}
	return rows, nil
}

func (s *ledgerServiceImpl) CreatePayout(ctx context.Context, in *dto.PayoutCreate) (*model.PartnerPayout, error) {
	partner, err := findPartner(ctx, s.partnerRepo, in.PartnerID)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, in.OrderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Ordine non trovato.")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order.PartnerID == nil || *order.PartnerID != partner.ID {
		return nil, invalid("L'ordine specificato non appartiene a questo partner.")
	}

	payout := &model.PartnerPayout{
		PartnerID: partner.ID,
		OrderID:   order.ID,
		Amount:    pricing.Commission(order.TotalAmount, partner.CommissionPct),
		Note:      trimmedPtr(in.Note),
	}
	created, err := s.payoutRepo.CreateIfAbsent(ctx, payout)
	if err != nil {
		return nil, fmt.Errorf("store payout in db: %w", err)
	}
	if !created {
		return nil, conflict("Payout già presente per questo ordine.")
	}

	slog.Info("payout created", "payout_id", payout.ID, "partner_id", partner.ID, "order_id", order.ID)
	return payout, nil
}

func (s *ledgerServiceImpl) MarkPayoutPaid(ctx context.Context, payoutID uint) (*model.PartnerPayout, error) {
	if _, err := s.findPayout(ctx, payoutID); err != nil {
		return nil, err
	}
	if err := s.payoutRepo.MarkPaid(ctx, payoutID, s.now()); err != nil {
		return nil, fmt.Errorf("mark payout paid: %w", err)
	}
	return s.findPayout(ctx, payoutID)
}

func (s *ledgerServiceImpl) findPayout(ctx context.Context, id uint) (*model.PartnerPayout, error) {
	payout, err := s.payoutRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Payout non trovato.")
	}
	if err != nil {
		return nil, fmt.Errorf("find payout: %w", err)
	}
	return payout, nil
}

func (s *ledgerServiceImpl) PaymentTotals(ctx context.Context) ([]dto.PartnerPaymentsTotal, error) {
	partners, err := s.partnerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	payments, err := s.paymentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	byPartner := map[uint][]*model.PartnerPayment{}
	for _, p := range payments {
		byPartner[p.PartnerID] = append(byPartner[p.PartnerID], p)
	}

	out := make([]dto.PartnerPaymentsTotal, 0, len(partners))
	for _, p := range partners {
		out = append(out, dto.PartnerPaymentsTotal{
			PartnerID:     p.ID,
			PartnerName:   p.Name,
			ReferralCode:  p.ReferralCode,
			TotalPaid:     sumPayments(byPartner[p.ID]),
			PaymentsCount: len(byPartner[p.ID]),
		})
	}
	return out, nil
}

func (s *ledgerServiceImpl) PartnerPayments(ctx context.Context, partnerID uint) ([]*model.PartnerPayment, error) {
	if _, err := findPartner(ctx, s.partnerRepo, partnerID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByPartner(ctx, partnerID)
}

func (s *ledgerServiceImpl) CreatePayment(ctx context.Context, in *dto.PaymentCreate) (*model.PartnerPayment, error) {
	amount := pricing.Money2(in.Amount)
	if !amount.IsPositive() {
		return nil, invalid("Importo non valido.")
	}
	if _, err := findPartner(ctx, s.partnerRepo, in.PartnerID); err != nil {
		return nil, err
	}

	payment := &model.PartnerPayment{
		PartnerID: in.PartnerID,
		Amount:    amount,
		Note:      trimmedPtr(in.Note),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("store payment in db: %w", err)
	}

	slog.Info("partner payment recorded", "payment_id", payment.ID, "partner_id", in.PartnerID, "amount", amount.String())
	return payment, nil
}
