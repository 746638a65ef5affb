package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"voiceguide-backend/internal/client"
	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/notification"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
)

const (
	FulfillmentDone    = "fulfilled"
	FulfillmentAlready = "already_fulfilled"
)

type FulfillOptions struct {
	// SkipEmail suppresses the payment-confirmed email; direct purchases send a receipt instead.
	SkipEmail bool
}

type FulfillmentService interface {
	Fulfill(ctx context.Context, orderID uint, opts FulfillOptions) (*dto.FulfillmentResult, error)
}

type fulfillmentServiceImpl struct {
	db          *gorm.DB
	issuer      *licenseIssuer
	orderRepo   repository.OrderRepository
	licenseRepo repository.LicenseRepository
	partnerRepo repository.PartnerRepository
	payoutRepo  repository.PayoutRepository
	notifier    Notifier
}

func NewFulfillmentService(
	db *gorm.DB,
	licenseAPI client.LicenseAPI,
	orderRepo repository.OrderRepository,
	licenseRepo repository.LicenseRepository,
	partnerRepo repository.PartnerRepository,
	payoutRepo repository.PayoutRepository,
	notifier Notifier,
) FulfillmentService {
	return &fulfillmentServiceImpl{
		db:          db,
		issuer:      newLicenseIssuer(licenseAPI),
		orderRepo:   orderRepo,
		licenseRepo: licenseRepo,
		partnerRepo: partnerRepo,
		payoutRepo:  payoutRepo,
		notifier:    notifier,
	}
}

var errAlreadyFulfilled = errors.New("order already fulfilled")

// Fulfill issues the licenses of a paid order. It is idempotent: an order that
// already has licenses gets its confirmation re-sent and nothing new is created.
func (s *fulfillmentServiceImpl) Fulfill(ctx context.Context, orderID uint, opts FulfillOptions) (*dto.FulfillmentResult, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Order not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order.PaymentStatus != model.PaymentStatusPaid {
		return nil, invalid("order is not PAID")
	}

	existing, err := s.licenseRepo.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("find order licenses: %w", err)
	}
	if len(existing) > 0 {
		return s.alreadyFulfilled(ctx, order, existing, opts), nil
	}

	pkg := order.Package
	if pkg == nil {
		return nil, invalid("order %d has no package", order.ID)
	}
	units := order.Quantity
	if units < 1 {
		units = 1
	}

	licenses := make([]*model.License, 0, units)
	for i := 0; i < units; i++ {
		code, err := s.issuer.Issue(ctx, pkg.MaxGuests)
		if err != nil {
			slog.Error("airlink sync failed", "order_id", order.ID, "issued", i, "err", err)
			return nil, err
		}
		licenses = append(licenses, &model.License{
			Code:          code,
			LicenseType:   model.LicenseType(pkg.PackageType),
			MaxGuests:     pkg.MaxGuests,
			DurationHours: 4,
			IsActive:      true,
			IssuedToEmail: &order.BuyerEmail,
			OrderID:       &order.ID,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.licenseRepo.CountByOrderID(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyFulfilled
		}
		if err := s.licenseRepo.CreateMany(ctx, tx, licenses); err != nil {
			return fmt.Errorf("store licenses: %w", err)
		}
		return nil
	})
	if errors.Is(err, errAlreadyFulfilled) {
		// a concurrent delivery won the race; the codes issued here stay unused on AirLink
		existing, err := s.licenseRepo.FindByOrderID(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("find order licenses: %w", err)
		}
		return s.alreadyFulfilled(ctx, order, existing, opts), nil
	}
	if err != nil {
		return nil, err
	}

	slog.Info("order fulfilled", "order_id", order.ID, "licenses", len(licenses))

	s.recordCommission(ctx, order)

	codes := licenseCodes(licenses)
	if !opts.SkipEmail {
		s.sendConfirmation(ctx, order, codes)
	}

	return &dto.FulfillmentResult{OK: true, Status: FulfillmentDone, Licenses: codes}, nil
}

func (s *fulfillmentServiceImpl) alreadyFulfilled(ctx context.Context, order *model.Order, existing []*model.License, opts FulfillOptions) *dto.FulfillmentResult {
	codes := licenseCodes(existing)
	if !opts.SkipEmail {
		s.sendConfirmation(ctx, order, codes)
	}
	return &dto.FulfillmentResult{OK: true, Status: FulfillmentAlready, Licenses: codes}
}

// recordCommission books the partner payout for the order, at most once.
func (s *fulfillmentServiceImpl) recordCommission(ctx context.Context, order *model.Order) {
	if order.PartnerID == nil {
		return
	}
	partner, err := s.partnerRepo.FindByID(ctx, *order.PartnerID)
	if err != nil {
		slog.Error("load partner for payout", "order_id", order.ID, "partner_id", *order.PartnerID, "err", err)
		return
	}

	created, err := s.payoutRepo.CreateIfAbsent(ctx, &model.PartnerPayout{
		PartnerID: partner.ID,
		OrderID:   order.ID,
		Amount:    pricing.Commission(order.TotalAmount, partner.CommissionPct),
	})
	if err != nil {
		slog.Error("create partner payout", "order_id", order.ID, "partner_id", partner.ID, "err", err)
		return
	}
	if created {
		slog.Info("partner payout recorded", "order_id", order.ID, "partner_id", partner.ID)
	}
}

func (s *fulfillmentServiceImpl) sendConfirmation(ctx context.Context, order *model.Order, codes []string) {
	msg := notification.PaymentConfirmed{
		To:      order.BuyerEmail,
		OrderID: order.ID,
		Count:   len(codes),
	}
	if order.Package != nil {
		msg.Product = order.Package.Code
	}
	if len(codes) > 0 {
		msg.LicenseCode = codes[0]
	}
	if err := s.notifier.PaymentConfirmed(ctx, msg); err != nil {
		slog.Error("send payment confirmed email", "order_id", order.ID, "err", err)
	}
}

func licenseCodes(licenses []*model.License) []string {
	codes := make([]string, len(licenses))
	for i, l := range licenses {
		codes[i] = l.Code
	}
	return codes
}
