package service

import (
	"context"
	"errors"
	"log/slog"

	"voiceguide-backend/internal/client"
	"voiceguide-backend/internal/pricing"
)

// maxCodeAttempts bounds how many fresh codes are tried when AirLink reports a collision.
const maxCodeAttempts = 8

// licenseIssuer registers new license codes on AirLink.
type licenseIssuer struct {
	api     client.LicenseAPI
	newCode func() string
}

func newLicenseIssuer(api client.LicenseAPI) *licenseIssuer {
	return &licenseIssuer{api: api, newCode: NewLicenseCode}
}

// Issue creates one inactive standard-tour license for maxGuests listeners and
// returns its code.
func (i *licenseIssuer) Issue(ctx context.Context, maxGuests int) (string, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := i.newCode()
		err := i.api.CreateLicense(ctx, &client.CreateLicenseRequest{
			Code:            code,
			MaxListeners:    maxGuests,
			DurationMinutes: pricing.StandardTourMinutes,
			IsActive:        false,
		})
		if err == nil {
			return code, nil
		}
		if errors.Is(err, client.ErrLicenseCodeExists) {
			slog.Warn("license code collision, retrying", "code", code, "attempt", attempt)
			continue
		}
		return "", upstream(err, "AirLink create license failed")
	}
	return "", newError(ErrInternal, "Could not generate a unique license code.")
}
