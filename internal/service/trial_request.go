package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"voiceguide-backend/internal/client"
	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
	"voiceguide-backend/internal/notification"
	"voiceguide-backend/internal/repository"
)

const (
	defaultTrialGuests = 10
	defaultTrialHours  = 24
	rejectReasonPrefix = "[ADMIN REJECT REASON] "
)

type TrialRequestService interface {
	Create(ctx context.Context, req *dto.TrialRequestCreate) (*model.TrialRequest, error)
	List(ctx context.Context, status string) ([]*model.TrialRequest, error)
	Count(ctx context.Context, status string) (*dto.CountResponse, error)
	Reject(ctx context.Context, id uint, reason *string) (*model.TrialRequest, error)
	Issue(ctx context.Context, id uint, adminEmail string, req *dto.TrialIssueRequest) (*dto.TrialIssueResponse, error)
}

type trialRequestServiceImpl struct {
	db          *gorm.DB
	issuer      *licenseIssuer
	requestRepo repository.TrialRequestRepository
	licenseRepo repository.LicenseRepository
	notifier    Notifier
	now         func() time.Time
}

func NewTrialRequestService(
	db *gorm.DB,
	licenseAPI client.LicenseAPI,
	requestRepo repository.TrialRequestRepository,
	licenseRepo repository.LicenseRepository,
	notifier Notifier,
) TrialRequestService {
	return &trialRequestServiceImpl{
		db:          db,
		issuer:      newLicenseIssuer(licenseAPI),
		requestRepo: requestRepo,
		licenseRepo: licenseRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (s *trialRequestServiceImpl) Create(ctx context.Context, in *dto.TrialRequestCreate) (*model.TrialRequest, error) {
	lang := strings.ToLower(strings.TrimSpace(in.Language))
	if lang != "en" {
		lang = "it"
	}

	req := &model.TrialRequest{
		Name:     trimmedPtr(in.Name),
		Email:    normalizeEmail(in.Email),
		Language: lang,
		Message:  trimmedPtr(in.Message),
		Status:   model.TrialRequestPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("store trial request in db: %w", err)
	}

	slog.Info("trial request created", "request_id", req.ID)
	return req, nil
}

func (s *trialRequestServiceImpl) List(ctx context.Context, status string) ([]*model.TrialRequest, error) {
	return s.requestRepo.List(ctx, model.TrialRequestStatus(strings.ToUpper(strings.TrimSpace(status))))
}

func (s *trialRequestServiceImpl) Count(ctx context.Context, status string) (*dto.CountResponse, error) {
	st := model.TrialRequestStatus(strings.ToUpper(strings.TrimSpace(status)))
	switch st {
	case "":
		st = model.TrialRequestPending
	case model.TrialRequestPending, model.TrialRequestIssued, model.TrialRequestRejected:
	default:
		return nil, invalid("Invalid status %q.", status)
	}

	count, err := s.requestRepo.Count(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("count trial requests: %w", err)
	}
	return &dto.CountResponse{Status: string(st), Count: count}, nil
}

func (s *trialRequestServiceImpl) Reject(ctx context.Context, id uint, reason *string) (*model.TrialRequest, error) {
	req, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	var message *string
	if r := trimmedPtr(reason); r != nil {
		text := rejectReasonPrefix + *r
		if req.Message != nil && *req.Message != "" {
			text = *req.Message + "\n\n" + text
		}
		message = &text
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.requestRepo.Resolve(ctx, tx, req.ID, model.TrialRequestRejected, message)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("Cannot reject request in status %s", req.Status)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("trial request rejected", "request_id", req.ID)

	req.Status = model.TrialRequestRejected
	if message != nil {
		req.Message = message
	}
	return req, nil
}

func (s *trialRequestServiceImpl) Issue(ctx context.Context, id uint, adminEmail string, in *dto.TrialIssueRequest) (*dto.TrialIssueResponse, error) {
	req, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	licenseType := model.LicenseTypeSingle
	if in.LicenseType != "" {
		lt, ok := model.ParseLicenseType(in.LicenseType)
		if !ok {
			return nil, invalid("Invalid license_type.")
		}
		licenseType = lt
	}
	maxGuests := in.MaxGuests
	if maxGuests == 0 {
		maxGuests = defaultTrialGuests
	}
	hours := in.DurationHours
	if hours == 0 {
		hours = defaultTrialHours
	}

	code, err := s.issuer.Issue(ctx, maxGuests)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().UTC().Add(time.Duration(hours) * time.Hour).Truncate(time.Second)
	if adminEmail == "" {
		adminEmail = "admin"
	}
	license := &model.License{
		Code:          code,
		LicenseType:   licenseType,
		MaxGuests:     maxGuests,
		DurationHours: hours,
		ExpiresAt:     &expiresAt,
		IsActive:      true,
		IssuedToEmail: &req.Email,
		Notes:         trimmedPtr(in.Notes),
		IssuedByAdmin: &adminEmail,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.licenseRepo.Create(ctx, tx, license); err != nil {
			return fmt.Errorf("store license in db: %w", err)
		}
		if err := s.requestRepo.Resolve(ctx, tx, req.ID, model.TrialRequestIssued, nil); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("Cannot issue request in status %s", req.Status)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	expiresISO := expiresAt.Format(notification.ISOLayout)
	slog.Info("trial license issued", "request_id", req.ID, "code", code, "expires_at", expiresISO)

	if in.SendEmail == nil || *in.SendEmail {
		if err := s.notifier.TrialLicense(ctx, notification.TrialLicense{
			To:            req.Email,
			Code:          code,
			MaxGuests:     maxGuests,
			DurationHours: hours,
			ExpiresAtISO:  expiresISO,
		}); err != nil {
			slog.Warn("send trial license email", "request_id", req.ID, "err", err)
		}
	}

	return &dto.TrialIssueResponse{
		TrialRequestID: req.ID,
		NewStatus:      string(model.TrialRequestIssued),
		LicenseCode:    code,
		ExpiresAtISO:   expiresISO,
	}, nil
}

func (s *trialRequestServiceImpl) pending(ctx context.Context, id uint) (*model.TrialRequest, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Trial request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find trial request: %w", err)
	}
	if req.Status != model.TrialRequestPending {
		return nil, invalid("Request is not PENDING (status %s).", req.Status)
	}
	return req, nil
}
