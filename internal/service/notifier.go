package service

import (
	"context"

	"voiceguide-backend/internal/notification"
)

// Notifier sends the transactional emails. Failures are logged by callers and
// never fail the request.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, p notification.PaymentConfirmed) error
	SingleReceipt(ctx context.Context, r notification.SingleReceipt) error
	PackageReceipt(ctx context.Context, r notification.PackageReceipt) error
	PartnerApproved(ctx context.Context, p notification.PartnerApproved) error
	PartnerRejected(ctx context.Context, to, name string) error
	TrialLicense(ctx context.Context, t notification.TrialLicense) error
}
