package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------- checkout ----------

type CheckoutCustomer struct {
	Email       string  `json:"email" validate:"required,email"`
	Whatsapp    *string `json:"whatsapp"`
	PartnerCode *string `json:"partner_code"`
}

type InvoiceAddress struct {
	Line     string  `json:"line"`
	City     string  `json:"city"`
	Zip      string  `json:"zip"`
	Province *string `json:"province"`
	Country  string  `json:"country"`
}

type InvoicePersonIT struct {
	FullName string `json:"full_name"`
	CF       string `json:"cf"`
}

type InvoiceVatIT struct {
	Company string `json:"company"`
	Vat     string `json:"vat"`
	Sdi     string `json:"sdi"`
	Pec     string `json:"pec"`
}

type InvoiceCompanyExt struct {
	Company    string `json:"company"`
	VatOrTaxID string `json:"vat_or_tax_id"`
	Country    string `json:"country"`
}

type Invoice struct {
	Mode       string             `json:"mode" validate:"required,oneof=PERSON_IT VAT_IT COMPANY_EXT"`
	PersonIT   *InvoicePersonIT   `json:"person_it"`
	VatIT      *InvoiceVatIT      `json:"vat_it"`
	CompanyExt *InvoiceCompanyExt `json:"company_ext"`
	Address    InvoiceAddress     `json:"address"`
}

type CheckoutRequest struct {
	Product         string           `json:"product"`
	Customer        CheckoutCustomer `json:"customer"`
	Invoice         *Invoice         `json:"invoice"`
	Lang            string           `json:"lang"`
	SuccessURL      string           `json:"success_url" validate:"omitempty,url"`
	CancelURL       string           `json:"cancel_url" validate:"omitempty,url"`
	PaymentProvider string           `json:"payment_provider" validate:"omitempty,oneof=stripe paypal"`
}

type CheckoutResponse struct {
	OrderID         uint            `json:"order_id"`
	SubtotalAmount  decimal.Decimal `json:"subtotal_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DiscountApplied float64         `json:"discount_applied"`
	ReferralApplied bool            `json:"referral_applied"`
	PaymentMethod   string          `json:"payment_method"`
	CheckoutURL     string          `json:"checkout_url"`
}

type CheckoutIntentResponse struct {
	OrderID         string  `json:"order_id"`
	DiscountApplied float64 `json:"discount_applied"`
	CheckoutURL     string  `json:"checkout_url"`
}

// ---------- direct purchase ----------

type BillingDetails struct {
	RequestInvoice bool    `json:"request_invoice"`
	Country        *string `json:"country" validate:"omitempty,len=2"`
	CompanyName    *string `json:"company_name"`
	VatNumber      *string `json:"vat_number"`
	TaxCode        *string `json:"tax_code"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	ZipCode        *string `json:"zip_code"`
	Province       *string `json:"province"`
	Pec            *string `json:"pec"`
	SdiCode        *string `json:"sdi_code"`
}

type SinglePurchaseRequest struct {
	BuyerEmail     string          `json:"buyer_email" validate:"required,email"`
	BuyerWhatsapp  *string         `json:"buyer_whatsapp"`
	MaxGuests      int             `json:"max_guests" validate:"required"`
	Quantity       int             `json:"quantity" validate:"omitempty,min=1,max=100"`
	ReferralCode   *string         `json:"referral_code"`
	BillingDetails *BillingDetails `json:"billing_details"`
}

type PackagePurchaseRequest struct {
	BuyerEmail     string          `json:"buyer_email" validate:"required,email"`
	BuyerWhatsapp  *string         `json:"buyer_whatsapp"`
	PackageType    string          `json:"package_type" validate:"required"`
	BundleSize     int             `json:"bundle_size" validate:"required"`
	ReferralCode   *string         `json:"referral_code"`
	BillingDetails *BillingDetails `json:"billing_details"`
}

type LicenseInfo struct {
	Code      string `json:"code"`
	MaxGuests int    `json:"max_guests"`
}

type SinglePurchaseResponse struct {
	OrderID         uint            `json:"order_id"`
	SubtotalAmount  decimal.Decimal `json:"subtotal_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ReferralApplied bool            `json:"referral_applied"`
	PaymentStatus   string          `json:"payment_status"`
	LicenseCode     string          `json:"license_code"`
	LicenseCodes    []string        `json:"license_codes"`
	MaxGuests       int             `json:"max_guests"`
	WhatsappLink    string          `json:"whatsapp_link"`
}

type PackagePurchaseResponse struct {
	OrderID         uint            `json:"order_id"`
	SubtotalAmount  decimal.Decimal `json:"subtotal_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ReferralApplied bool            `json:"referral_applied"`
	PaymentStatus   string          `json:"payment_status"`
	PackageType     string          `json:"package_type"`
	BundleSize      int             `json:"bundle_size"`
	Licenses        []LicenseInfo   `json:"licenses"`
	WhatsappLink    string          `json:"whatsapp_link"`
}

// ---------- fulfillment / webhooks ----------

type FulfillmentResult struct {
	OK       bool     `json:"ok"`
	Status   string   `json:"status"` // fulfilled | already_fulfilled
	Licenses []string `json:"licenses"`
}

// ---------- approval workflows ----------

type PartnerRequestCreate struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	PartnerTier string  `json:"partner_tier" validate:"omitempty,oneof=BASE PRO ELITE"`
	Notes       *string `json:"notes"`
}

type TrialRequestCreate struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Email    string  `json:"email" validate:"required,email"`
	Language string  `json:"language" validate:"omitempty,oneof=it en"`
	Message  *string `json:"message" validate:"omitempty,max=2000"`
}

type TrialRejectRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

type TrialIssueRequest struct {
	LicenseType   string  `json:"license_type" validate:"omitempty,oneof=SINGLE TO SCHOOL MUSEUM"`
	MaxGuests     int     `json:"max_guests" validate:"omitempty,min=1,max=500"`
	DurationHours int     `json:"duration_hours" validate:"omitempty,min=1,max=720"`
	Notes         *string `json:"notes" validate:"omitempty,max=1000"`
	SendEmail     *bool   `json:"send_email"`
}

type TrialIssueResponse struct {
	TrialRequestID uint   `json:"trial_request_id"`
	NewStatus      string `json:"new_status"`
	LicenseCode    string `json:"license_code"`
	ExpiresAtISO   string `json:"expires_at_iso"`
}

type CountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ---------- licenses ----------

type ManualLicenseRequest struct {
	IssuedToEmail string  `json:"issued_to_email" validate:"required,email"`
	LicenseType   string  `json:"license_type" validate:"required,oneof=SINGLE TO SCHOOL MUSEUM"`
	MaxGuests     int     `json:"max_guests" validate:"required,min=1,max=500"`
	DurationHours int     `json:"duration_hours" validate:"omitempty,min=1,max=720"`
	Notes         *string `json:"notes"`
	SendEmail     *bool   `json:"send_email"`
}

// ---------- partners ----------

type PartnerCreate struct {
	Name          string           `json:"name" validate:"required"`
	Email         string           `json:"email" validate:"required,email"`
	PartnerType   string           `json:"partner_type"`
	CommissionPct *decimal.Decimal `json:"commission_pct"`
	ReferralCode  string           `json:"referral_code" validate:"required"`
	Notes         *string          `json:"notes"`
	IsActive      *bool            `json:"is_active"`
}

type PartnerUpdate struct {
	PartnerType   *string          `json:"partner_type"`
	CommissionPct *decimal.Decimal `json:"commission_pct"`
	IsActive      *bool            `json:"is_active"`
	Notes         *string          `json:"notes"`
}

type PartnerLoginRequest struct {
	Email        string `json:"email" validate:"required,email"`
	ReferralCode string `json:"referral_code" validate:"required"`
}

type PartnerProfile struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	ReferralCode  string          `json:"referral_code"`
	PartnerType   string          `json:"partner_type"`
	CommissionPct decimal.Decimal `json:"commission_pct"`
	PartnerLevel  string          `json:"partner_level"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PartnerSummary struct {
	TotalGenerated    decimal.Decimal `json:"total_generated"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	BalanceDue        decimal.Decimal `json:"balance_due"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	PendingCommission decimal.Decimal `json:"pending_commission"`
	TotalOrders       int             `json:"total_orders"`
	TotalLicensesSold int64           `json:"total_licenses_sold"`
	PartnerType       string          `json:"partner_type"`
	CommissionPct     decimal.Decimal `json:"commission_pct"`
	PartnerLevel      string          `json:"partner_level"`
}

type PartnerOrderRow struct {
	ID               uint            `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	ProductName      string          `json:"product_name"`
	LicenseType      string          `json:"license_type"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Status           string          `json:"status"`
}

type LegacyPartnerOrder struct {
	OrderID       uint            `json:"order_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

type LegacyPartnerPayout struct {
	OrderID   uint            `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Paid      bool            `json:"paid"`
	CreatedAt time.Time       `json:"created_at"`
}

type LegacyPartnerSummary struct {
	TotalOrders     int             `json:"total_orders"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalUnpaid     decimal.Decimal `json:"total_unpaid"`
}

// ---------- ledgers ----------

type PayoutCreate struct {
	PartnerID uint    `json:"partner_id" validate:"required"`
	OrderID   uint    `json:"order_id" validate:"required"`
	Note      *string `json:"note" validate:"omitempty,max=255"`
}

type PaymentCreate struct {
	PartnerID uint            `json:"partner_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Note      *string         `json:"note" validate:"omitempty,max=255"`
}

type PartnerBalance struct {
	PartnerID      uint            `json:"partner_id"`
	PartnerName    string          `json:"partner_name"`
	ReferralCode   string          `json:"referral_code"`
	TotalGenerated decimal.Decimal `json:"total_generated"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
}

type PartnerPaymentsTotal struct {
	PartnerID     uint            `json:"partner_id"`
	PartnerName   string          `json:"partner_name"`
	ReferralCode  string          `json:"referral_code"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PaymentsCount int             `json:"payments_count"`
}

type PayoutRow struct {
	ID        uint            `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Paid      bool            `json:"paid"`
	PaidAt    *time.Time      `json:"paid_at"`
	CreatedAt time.Time       `json:"created_at"`
	OrderID   uint            `json:"order_id"`
	Note      *string         `json:"note"`
}

// ---------- reports ----------

type OrderReportItem struct {
	ID                 uint                `json:"id"`
	CreatedAt          time.Time           `json:"created_at"`
	BuyerEmail         string              `json:"buyer_email"`
	BuyerWhatsapp      *string             `json:"buyer_whatsapp"`
	OrderType          string              `json:"order_type"`
	PackageID          *uint               `json:"package_id"`
	Quantity           int                 `json:"quantity"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	EstimatedAgoraCost decimal.NullDecimal `json:"estimated_agora_cost"`
	Margin             decimal.NullDecimal `json:"margin"`
	PaymentMethod      string              `json:"payment_method"`
	PaymentStatus      string              `json:"payment_status"`
	PartnerID          *uint               `json:"partner_id"`
	ReferralCode       *string             `json:"referral_code"`
	BillingDetails     interface{}         `json:"billing_details,omitempty"`
}

type OrdersReport struct {
	Items                   []OrderReportItem `json:"items"`
	TotalCount              int               `json:"total_count"`
	FromDate                *string           `json:"from_date"`
	ToDate                  *string           `json:"to_date"`
	TotalAmount             decimal.Decimal   `json:"total_amount"`
	TotalEstimatedAgoraCost decimal.Decimal   `json:"total_estimated_agora_cost"`
	TotalMargin             decimal.Decimal   `json:"total_margin"`
}

type StatsOverview struct {
	TotalOrders             int              `json:"total_orders"`
	TotalAmount             decimal.Decimal  `json:"total_amount"`
	TotalEstimatedAgoraCost decimal.Decimal  `json:"total_estimated_agora_cost"`
	TotalMargin             decimal.Decimal  `json:"total_margin"`
	OrdersByType            map[string]int64 `json:"orders_by_type"`
	OrdersByStatus          map[string]int64 `json:"orders_by_status"`
}

// ---------- auth ----------

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminOut struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	IsActive     bool   `json:"is_active"`
	IsSuperadmin bool   `json:"is_superadmin"`
}

type AdminLoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	Admin       AdminOut `json:"admin"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
