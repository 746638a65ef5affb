package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts go out as JSON numbers, like the admin console expects
	decimal.MarshalJSONWithoutQuotes = true
}

type Package struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Code        string          `gorm:"size:64;uniqueIndex;not null" json:"code"` // SINGLE_25, PACKAGE_TO_10, ...
	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"size:500" json:"description"`
	PackageType PackageType     `gorm:"size:16;index;not null" json:"package_type"`
	NumLicenses int             `gorm:"not null" json:"num_licenses"`
	MaxGuests   int             `gorm:"not null" json:"max_guests"` // per license
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	IsActive    bool            `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Order struct {
	ID                    uint                `gorm:"primaryKey" json:"id"`
	BuyerEmail            string              `gorm:"size:255;not null" json:"buyer_email"`
	BuyerWhatsapp         *string             `gorm:"size:50" json:"buyer_whatsapp"`
	OrderType             OrderType           `gorm:"size:32;index;not null" json:"order_type"`
	PackageID             *uint               `gorm:"index" json:"package_id"`
	Package               *Package            `json:"-"`
	Quantity              int                 `gorm:"not null" json:"quantity"` // license units to issue
	SubtotalAmount        decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"subtotal_amount"`
	DiscountAmount        decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"discount_amount"`
	TotalAmount           decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	EstimatedAgoraCost    decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"estimated_agora_cost"`
	PaymentMethod         PaymentMethod       `gorm:"size:32;not null" json:"payment_method"`
	PaymentStatus         PaymentStatus       `gorm:"size:32;index;not null" json:"payment_status"`
	PartnerID             *uint               `gorm:"index" json:"partner_id"`
	ReferralCode          *string             `gorm:"size:100" json:"referral_code"`
	StripeSessionID       *string             `gorm:"size:255;index" json:"stripe_session_id,omitempty"`
	StripePaymentIntentID *string             `gorm:"size:255;index" json:"stripe_payment_intent_id,omitempty"`
	PaypalOrderID         *string             `gorm:"size:64;index" json:"paypal_order_id,omitempty"`
	PaidAt                *time.Time          `json:"paid_at"`
	BillingDetails        *OrderBillingDetails `gorm:"constraint:OnDelete:CASCADE" json:"billing_details,omitempty"`
	CreatedAt             time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

type OrderBillingDetails struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	RequestInvoice bool      `gorm:"not null" json:"request_invoice"`
	Country        *string   `gorm:"size:2" json:"country"` // ISO2
	CompanyName    *string   `gorm:"size:255" json:"company_name"`
	VatNumber      *string   `gorm:"size:32" json:"vat_number"`
	TaxCode        *string   `gorm:"size:32" json:"tax_code"`
	Address        *string   `gorm:"size:255" json:"address"`
	City           *string   `gorm:"size:100" json:"city"`
	ZipCode        *string   `gorm:"size:20" json:"zip_code"`
	Province       *string   `gorm:"size:50" json:"province"`
	Pec            *string   `gorm:"size:255" json:"pec"`
	SdiCode        *string   `gorm:"size:16" json:"sdi_code"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type License struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	Code             string      `gorm:"size:100;uniqueIndex;not null" json:"code"`
	LicenseType      LicenseType `gorm:"size:16;not null" json:"license_type"`
	MaxGuests        int         `gorm:"not null" json:"max_guests"`
	DurationHours    int         `gorm:"not null" json:"duration_hours"`
	ActivatedAt      *time.Time  `json:"activated_at"`
	ExpiresAt        *time.Time  `gorm:"index" json:"expires_at"`
	IsActive         bool        `gorm:"not null" json:"is_active"`
	IsExpired        bool        `gorm:"index;not null" json:"is_expired"`
	ActivatedByGuide *string     `gorm:"size:255" json:"activated_by_guide"`
	IssuedToEmail    *string     `gorm:"size:255;index" json:"issued_to_email"`
	Notes            *string     `gorm:"type:text" json:"notes"`
	IssuedByAdmin    *string     `gorm:"size:255" json:"issued_by_admin"`
	OrderID          *uint       `gorm:"index" json:"order_id"` // NULL for trial/manual
	CreatedAt        time.Time   `json:"created_at"`
}

type Partner struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:150;not null" json:"name"`
	Email         string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PartnerType   PartnerTier     `gorm:"size:16;not null" json:"partner_type"`
	CommissionPct decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"commission_pct"`
	ReferralCode  string          `gorm:"size:100;uniqueIndex;not null" json:"referral_code"`
	Notes         *string         `gorm:"size:1000" json:"notes"`
	IsActive      bool            `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PartnerRequest struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	Name        string               `gorm:"size:255;not null" json:"name"`
	Email       string               `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PartnerTier PartnerTier          `gorm:"size:16;not null" json:"partner_tier"`
	Notes       *string              `gorm:"size:1000" json:"notes"`
	Status      PartnerRequestStatus `gorm:"size:16;index;not null" json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type TrialRequest struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	Name      *string            `gorm:"size:120" json:"name"`
	Email     string             `gorm:"size:255;index;not null" json:"email"`
	Language  string             `gorm:"size:8;not null" json:"language"`
	Message   *string            `gorm:"type:text" json:"message"`
	Status    TrialRequestStatus `gorm:"size:16;index;not null" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// PartnerPayout is the commission earned on one order.
type PartnerPayout struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PartnerID uint            `gorm:"index;not null" json:"partner_id"`
	OrderID   uint            `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Paid      bool            `gorm:"not null" json:"paid"`
	PaidAt    *time.Time      `json:"paid_at"`
	Note      *string         `gorm:"size:255" json:"note"`
	CreatedAt time.Time       `json:"created_at"`
}

// PartnerPayment is money actually transferred to a partner. It is not bound to an order.
type PartnerPayment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PartnerID uint            `gorm:"index;not null" json:"partner_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Note      *string         `gorm:"size:255" json:"note"`
	CreatedAt time.Time       `json:"created_at"`
}

type Admin struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"size:255;not null" json:"-"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
	IsSuperadmin   bool      `gorm:"not null" json:"is_superadmin"`
	CreatedAt      time.Time `json:"created_at"`
}

type WebhookEvent struct {
	ID          uint   `gorm:"primaryKey"`
	Provider    string `gorm:"size:16;uniqueIndex:idx_provider_event;not null"`
	EventID     string `gorm:"size:128;uniqueIndex:idx_provider_event;not null"`
	EventType   string `gorm:"size:64;index"`
	OrderID     *uint  `gorm:"index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Package{},
		&Partner{},
		&Order{},
		&OrderBillingDetails{},
		&License{},
		&PartnerRequest{},
		&TrialRequest{},
		&PartnerPayout{},
		&PartnerPayment{},
		&Admin{},
		&WebhookEvent{},
	}
}
