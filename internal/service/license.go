package service

import (
	"context"
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

const defaultManualNotes = "Trial request"

// LicenseService covers licenses issued by hand from the admin console.
type LicenseService interface {
	IssueManual(ctx context.Context, adminEmail string, req *dto.ManualLicenseRequest) (*model.License, error)
	List(ctx context.Context, filter repository.LicenseFilter) ([]*model.License, error)
}

type licenseServiceImpl struct {
	db          *gorm.DB
	issuer      *licenseIssuer
	licenseRepo repository.LicenseRepository
	notifier    Notifier
	now         func() time.Time
}

func NewLicenseService(db *gorm.DB, licenseAPI client.LicenseAPI, licenseRepo repository.LicenseRepository, notifier Notifier) LicenseService {
	return &licenseServiceImpl{
		db:          db,
		issuer:      newLicenseIssuer(licenseAPI),
		licenseRepo: licenseRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (s *licenseServiceImpl) IssueManual(ctx context.Context, adminEmail string, in *dto.ManualLicenseRequest) (*model.License, error) {
	licenseType, ok := model.ParseLicenseType(in.LicenseType)
	if !ok {
		return nil, invalid("Invalid license_type.")
	}
	hours := in.DurationHours
	if hours == 0 {
		hours = defaultTrialHours
	}
	notes := defaultManualNotes
	if in.Notes != nil {
		notes = strings.TrimSpace(*in.Notes)
	}

	code, err := s.issuer.Issue(ctx, in.MaxGuests)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(in.IssuedToEmail)
	expiresAt := s.now().UTC().Add(time.Duration(hours) * time.Hour).Truncate(time.Second)
	license := &model.License{
		Code:          code,
		LicenseType:   licenseType,
		MaxGuests:     in.MaxGuests,
		DurationHours: hours,
		ExpiresAt:     &expiresAt,
		IsActive:      true,
		IssuedToEmail: &email,
		Notes:         &notes,
	}
	if adminEmail != "" {
		license.IssuedByAdmin = &adminEmail
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.licenseRepo.Create(ctx, tx, license)
	})
	if err != nil {
		return nil, fmt.Errorf("store license in db: %w", err)
	}

	slog.Info("manual license issued", "license_id", license.ID, "code", code)

	if in.SendEmail == nil || *in.SendEmail {
		if err := s.notifier.TrialLicense(ctx, notification.TrialLicense{
			To:            email,
			Code:          code,
			MaxGuests:     in.MaxGuests,
			DurationHours: hours,
			ExpiresAtISO:  expiresAt.Format(notification.ISOLayout),
		}); err != nil {
			slog.Warn("send license email", "license_id", license.ID, "err", err)
		}
	}
	return license, nil
}

func (s *licenseServiceImpl) List(ctx context.Context, filter repository.LicenseFilter) ([]*model.License, error) {
	filter.Email = normalizeEmail(filter.Email)
	return s.licenseRepo.List(ctx, filter)
}
