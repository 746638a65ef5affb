package model

import "strings"

type OrderType string

const (
	OrderTypeSingle        OrderType = "SINGLE"
	OrderTypePackageTO     OrderType = "PACKAGE_TO"
	OrderTypePackageSchool OrderType = "PACKAGE_SCHOOL"
	OrderTypeMuseum        OrderType = "MUSEUM"
)

var OrderTypes = []OrderType{OrderTypeSingle, OrderTypePackageTO, OrderTypePackageSchool, OrderTypeMuseum}

type PaymentMethod string

const (
	PaymentMethodStripe       PaymentMethod = "STRIPE"
	PaymentMethodPaypal       PaymentMethod = "PAYPAL"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

var PaymentStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded}

type PackageType string

const (
	PackageTypeSingle PackageType = "SINGLE"
	PackageTypeTO     PackageType = "TO"
	PackageTypeSchool PackageType = "SCHOOL"
	PackageTypeMuseum PackageType = "MUSEUM"
)

// OrderType maps a catalogue package to the order type it produces.
func (t PackageType) OrderType() OrderType {
	switch t {
	case PackageTypeTO:
		return OrderTypePackageTO
	case PackageTypeSchool:
		return OrderTypePackageSchool
	case PackageTypeMuseum:
		return OrderTypeMuseum
	default:
		return OrderTypeSingle
	}
}

type LicenseType string

const (
	LicenseTypeSingle LicenseType = "SINGLE"
	LicenseTypeTO     LicenseType = "TO"
	LicenseTypeSchool LicenseType = "SCHOOL"
	LicenseTypeMuseum LicenseType = "MUSEUM"
)

func ParseLicenseType(s string) (LicenseType, bool) {
	switch lt := LicenseType(strings.ToUpper(strings.TrimSpace(s))); lt {
	case LicenseTypeSingle, LicenseTypeTO, LicenseTypeSchool, LicenseTypeMuseum:
		return lt, true
	}
	return "", false
}

type PartnerTier string

const (
	PartnerTierBase  PartnerTier = "BASE"
	PartnerTierPro   PartnerTier = "PRO"
	PartnerTierElite PartnerTier = "ELITE"
)

func ParsePartnerTier(s string) (PartnerTier, bool) {
	switch t := PartnerTier(strings.ToUpper(strings.TrimSpace(s))); t {
	case PartnerTierBase, PartnerTierPro, PartnerTierElite:
		return t, true
	}
	return "", false
}

type PartnerRequestStatus string

const (
	PartnerRequestPending  PartnerRequestStatus = "PENDING"
	PartnerRequestApproved PartnerRequestStatus = "APPROVED"
	PartnerRequestRejected PartnerRequestStatus = "REJECTED"
)

type TrialRequestStatus string

const (
	TrialRequestPending  TrialRequestStatus = "PENDING"
	TrialRequestIssued   TrialRequestStatus = "ISSUED"
	TrialRequestRejected TrialRequestStatus = "REJECTED"
)
