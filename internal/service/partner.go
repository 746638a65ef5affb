package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
)

const (
	msgPartnerNotFound = "Partner non trovato."
	msgBadPartnerType  = "partner_type deve essere BASE, PRO o ELITE."
)

// PartnerService is the admin side of partner management.
type PartnerService interface {
	Create(ctx context.Context, req *dto.PartnerCreate) (*model.Partner, error)
	List(ctx context.Context) ([]*model.Partner, error)
	Get(ctx context.Context, id uint) (*model.Partner, error)
	Update(ctx context.Context, id uint, req *dto.PartnerUpdate) (*model.Partner, error)
}

type partnerServiceImpl struct {
	db          *gorm.DB
	partnerRepo repository.PartnerRepository
}

func NewPartnerService(db *gorm.DB, partnerRepo repository.PartnerRepository) PartnerService {
	return &partnerServiceImpl{db: db, partnerRepo: partnerRepo}
}

func (s *partnerServiceImpl) Create(ctx context.Context, in *dto.PartnerCreate) (*model.Partner, error) {
	email := normalizeEmail(in.Email)
	code := strings.TrimSpace(in.ReferralCode)

	_, err := s.partnerRepo.FindByEmail(ctx, s.db, email)
	if err == nil {
		return nil, invalid("Email già registrata come partner.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find partner by email: %w", err)
	}

	exists, err := s.partnerRepo.ReferralCodeExists(ctx, s.db, code)
	if err != nil {
		return nil, fmt.Errorf("check referral code: %w", err)
	}
	if exists {
		return nil, invalid("Referral code già in uso.")
	}

	tier := model.PartnerTierBase
	if strings.TrimSpace(in.PartnerType) != "" {
		t, ok := model.ParsePartnerTier(in.PartnerType)
		if !ok {
			return nil, invalid(msgBadPartnerType)
		}
		tier = t
	}

	commission := pricing.TierCommission[tier]
	if in.CommissionPct != nil {
		commission = *in.CommissionPct
	}
	if err := checkCommission(commission); err != nil {
		return nil, err
	}

	partner := &model.Partner{
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		PartnerType:   tier,
		CommissionPct: commission,
		ReferralCode:  code,
		Notes:         trimmedPtr(in.Notes),
		IsActive:      in.IsActive == nil || *in.IsActive,
	}
	if err := s.partnerRepo.Create(ctx, s.db, partner); err != nil {
		return nil, fmt.Errorf("store partner in db: %w", err)
	}

	slog.Info("partner created", "partner_id", partner.ID, "tier", tier)
	return partner, nil
}

func (s *partnerServiceImpl) List(ctx context.Context) ([]*model.Partner, error) {
	return s.partnerRepo.List(ctx)
}

func (s *partnerServiceImpl) Get(ctx context.Context, id uint) (*model.Partner, error) {
	return findPartner(ctx, s.partnerRepo, id)
}

func (s *partnerServiceImpl) Update(ctx context.Context, id uint, in *dto.PartnerUpdate) (*model.Partner, error) {
	if _, err := findPartner(ctx, s.partnerRepo, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.PartnerType != nil {
		tier, ok := model.ParsePartnerTier(*in.PartnerType)
		if !ok {
			return nil, invalid(msgBadPartnerType)
		}
		fields["partner_type"] = tier
	}
	if in.CommissionPct != nil {
		if err := checkCommission(*in.CommissionPct); err != nil {
			return nil, err
		}
		fields["commission_pct"] = *in.CommissionPct
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if in.Notes != nil {
		fields["notes"] = trimmedPtr(in.Notes)
	}

	if len(fields) > 0 {
		if err := s.partnerRepo.Update(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("update partner: %w", err)
		}
		slog.Info("partner updated", "partner_id", id)
	}
	return findPartner(ctx, s.partnerRepo, id)
}

func findPartner(ctx context.Context, repo repository.PartnerRepository, id uint) (*model.Partner, error) {
	partner, err := repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(msgPartnerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find partner: %w", err)
	}
	return partner, nil
}

func checkCommission(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return invalid("commission_pct must be between 0 and 100.")
	}
	return nil
}
