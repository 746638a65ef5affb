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
	"voiceguide-backend/internal/notification"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
)

// maxReferralAttempts bounds the search for an unused referral code.
const maxReferralAttempts = 20

// ApproveOptions are the admin overrides applied when a partner request is approved.
type ApproveOptions struct {
	Tier          string
	CommissionPct *decimal.Decimal
}

type PartnerRequestService interface {
	Create(ctx context.Context, req *dto.PartnerRequestCreate) (*model.PartnerRequest, error)
	List(ctx context.Context, status string) ([]*model.PartnerRequest, error)
	Approve(ctx context.Context, id uint, opts ApproveOptions) (*model.PartnerRequest, error)
	Reject(ctx context.Context, id uint) (*model.PartnerRequest, error)
}

type partnerRequestServiceImpl struct {
	db          *gorm.DB
	requestRepo repository.PartnerRequestRepository
	partnerRepo repository.PartnerRepository
	notifier    Notifier
	newCode     func() string
}

func NewPartnerRequestService(
	db *gorm.DB,
	requestRepo repository.PartnerRequestRepository,
	partnerRepo repository.PartnerRepository,
	notifier Notifier,
) PartnerRequestService {
	return &partnerRequestServiceImpl{
		db:          db,
		requestRepo: requestRepo,
		partnerRepo: partnerRepo,
		notifier:    notifier,
		newCode:     NewReferralCode,
	}
}

func (s *partnerRequestServiceImpl) Create(ctx context.Context, in *dto.PartnerRequestCreate) (*model.PartnerRequest, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.requestRepo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.Status == model.PartnerRequestPending:
		return nil, invalid("A request for this email is already pending.")
	case err == nil:
		return nil, conflict("A request for this email already exists.")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find partner request: %w", err)
	}

	tier, ok := model.ParsePartnerTier(in.PartnerTier)
	if !ok {
		tier = model.PartnerTierBase
	}

	req := &model.PartnerRequest{
		Name:        strings.TrimSpace(in.Name),
		Email:       email,
		PartnerTier: tier,
		Notes:       trimmedPtr(in.Notes),
		Status:      model.PartnerRequestPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("store partner request in db: %w", err)
	}

	slog.Info("partner request created", "request_id", req.ID, "tier", tier)
	return req, nil
}

func (s *partnerRequestServiceImpl) List(ctx context.Context, status string) ([]*model.PartnerRequest, error) {
	return s.requestRepo.List(ctx, model.PartnerRequestStatus(strings.ToUpper(strings.TrimSpace(status))))
}

func (s *partnerRequestServiceImpl) Approve(ctx context.Context, id uint, opts ApproveOptions) (*model.PartnerRequest, error) {
	req, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	tier := req.PartnerTier
	if opts.Tier != "" {
		if tier, _ = model.ParsePartnerTier(opts.Tier); tier == "" {
			tier = model.PartnerTierBase
		}
	}
	if _, ok := pricing.TierCommission[tier]; !ok {
		tier = model.PartnerTierBase
	}

	commission := pricing.TierCommission[tier]
	if opts.CommissionPct != nil {
		commission = *opts.CommissionPct
	}
	if err := checkCommission(commission); err != nil {
		return nil, err
	}

	var partner *model.Partner
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.partnerRepo.FindByEmail(ctx, tx, req.Email)
		if err == nil {
			return conflict("A partner with this email already exists.")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		code, err := s.uniqueReferralCode(ctx, tx)
		if err != nil {
			return err
		}

		partner = &model.Partner{
			Name:          req.Name,
			Email:         req.Email,
			PartnerType:   tier,
			CommissionPct: commission,
			ReferralCode:  code,
			IsActive:      true,
		}
		if err := s.partnerRepo.Create(ctx, tx, partner); err != nil {
			return fmt.Errorf("store partner in db: %w", err)
		}

		if err := s.requestRepo.Resolve(ctx, tx, req.ID, model.PartnerRequestApproved, tier); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("Request is not PENDING.")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("partner request approved", "request_id", req.ID, "partner_id", partner.ID, "tier", tier)

	if err := s.notifier.PartnerApproved(ctx, notification.PartnerApproved{
		To:            req.Email,
		Name:          req.Name,
		ReferralCode:  partner.ReferralCode,
		Tier:          string(tier),
		CommissionPct: commission.String(),
	}); err != nil {
		slog.Warn("send partner approved email", "request_id", req.ID, "err", err)
	}

	req.Status = model.PartnerRequestApproved
	req.PartnerTier = tier
	return req, nil
}

func (s *partnerRequestServiceImpl) Reject(ctx context.Context, id uint) (*model.PartnerRequest, error) {
	req, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.requestRepo.Resolve(ctx, tx, req.ID, model.PartnerRequestRejected, "")
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("Request is not PENDING.")
	}
	if err != nil {
		return nil, err
	}

	slog.Info("partner request rejected", "request_id", req.ID)

	if err := s.notifier.PartnerRejected(ctx, req.Email, req.Name); err != nil {
		slog.Warn("send partner rejected email", "request_id", req.ID, "err", err)
	}

	req.Status = model.PartnerRequestRejected
	return req, nil
}

func (s *partnerRequestServiceImpl) pending(ctx context.Context, id uint) (*model.PartnerRequest, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Request not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("find partner request: %w", err)
	}
	if req.Status != model.PartnerRequestPending {
		return nil, invalid("Request is not PENDING.")
	}
	return req, nil
}

func (s *partnerRequestServiceImpl) uniqueReferralCode(ctx context.Context, tx *gorm.DB) (string, error) {
	for i := 0; i < maxReferralAttempts; i++ {
		code := s.newCode()
		exists, err := s.partnerRepo.ReferralCodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", newError(ErrInternal, "Could not generate a unique referral code.")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
