// Package pricing holds the license price list and the money arithmetic shared
// by checkout, direct purchase, fulfillment and the payout ledger.
package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"voiceguide-backend/internal/model"
)

const (
	// StandardTourMinutes is the fixed tour length every license is created with on AirLink.
	StandardTourMinutes = 240

	TOMaxGuests     = 25
	SchoolMaxGuests = 100
)

var (
	hundred = decimal.NewFromInt(100)

	PartnerDiscountPct      = decimal.NewFromInt(5)
	agoraPricePer1000Minute = decimal.RequireFromString("0.99")
)

// SingleLicensePrices is keyed by max guests.
var SingleLicensePrices = map[int]decimal.Decimal{
	10:  decimal.RequireFromString("7.99"),
	25:  decimal.RequireFromString("14.99"),
	35:  decimal.RequireFromString("19.99"),
	100: decimal.RequireFromString("49.99"),
}

// TOPackages is keyed by bundle size.
var TOPackages = map[int]decimal.Decimal{
	10:  decimal.NewFromInt(119),
	20:  decimal.NewFromInt(225),
	50:  decimal.NewFromInt(525),
	100: decimal.NewFromInt(975),
}

// SchoolPackages is keyed by bundle size.
var SchoolPackages = map[int]decimal.Decimal{
	1:  decimal.RequireFromString("29.99"),
	5:  decimal.NewFromInt(135),
	10: decimal.NewFromInt(249),
	30: decimal.NewFromInt(675),
}

// TierCommission is the default commission percentage for each partner tier.
var TierCommission = map[model.PartnerTier]decimal.Decimal{
	model.PartnerTierBase:  decimal.NewFromInt(10),
	model.PartnerTierPro:   decimal.NewFromInt(15),
	model.PartnerTierElite: decimal.NewFromInt(20),
}

// Money2 rounds to cents, half-up.
func Money2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// ToCents converts a EUR amount to integer cents.
func ToCents(v decimal.Decimal) int64 {
	return Money2(v).Mul(hundred).Round(0).IntPart()
}

func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// PartnerDiscount is 5% of the subtotal when a partner applies, zero otherwise.
func PartnerDiscount(subtotal decimal.Decimal, hasPartner bool) decimal.Decimal {
	if !hasPartner {
		return decimal.Zero
	}
	return Money2(subtotal.Mul(PartnerDiscountPct).Div(hundred))
}

// Commission returns total * pct / 100 rounded to cents.
func Commission(total, pct decimal.Decimal) decimal.Decimal {
	return Money2(total.Mul(pct).Div(hundred))
}

// LicenseCost estimates the internal audio cost of one standard tour: the guide
// plus every guest listening for the full tour.
func LicenseCost(maxGuests int) decimal.Decimal {
	minutes := decimal.NewFromInt(int64((maxGuests + 1) * StandardTourMinutes))
	return Money2(minutes.Div(decimal.NewFromInt(1000)).Mul(agoraPricePer1000Minute))
}

func PackageCost(numLicenses, maxGuests int) decimal.Decimal {
	return Money2(LicenseCost(maxGuests).Mul(decimal.NewFromInt(int64(numLicenses))))
}

func SingleCode(maxGuests int) string { return fmt.Sprintf("SINGLE_%d", maxGuests) }

func TOCode(bundleSize int) string { return fmt.Sprintf("PACKAGE_TO_%d", bundleSize) }

func SchoolCode(bundleSize int) string { return fmt.Sprintf("PACKAGE_SCHOOL_%d", bundleSize) }

// Catalog builds the Package rows seeded at startup.
func Catalog() []model.Package {
	var pkgs []model.Package

	for _, mg := range sortedKeys(SingleLicensePrices) {
		pkgs = append(pkgs, model.Package{
			Code:        SingleCode(mg),
			Name:        fmt.Sprintf("Single license %d guests", mg),
			Description: fmt.Sprintf("One VoiceGuide license for up to %d guests", mg),
			PackageType: model.PackageTypeSingle,
			NumLicenses: 1,
			MaxGuests:   mg,
			Price:       SingleLicensePrices[mg],
			IsActive:    true,
		})
	}
	for _, n := range sortedKeys(TOPackages) {
		pkgs = append(pkgs, model.Package{
			Code:        TOCode(n),
			Name:        fmt.Sprintf("Tour Operator pack x%d", n),
			Description: fmt.Sprintf("%d licenses for up to %d guests each", n, TOMaxGuests),
			PackageType: model.PackageTypeTO,
			NumLicenses: n,
			MaxGuests:   TOMaxGuests,
			Price:       TOPackages[n],
			IsActive:    true,
		})
	}
	for _, n := range sortedKeys(SchoolPackages) {
		pkgs = append(pkgs, model.Package{
			Code:        SchoolCode(n),
			Name:        fmt.Sprintf("School pack x%d", n),
			Description: fmt.Sprintf("%d licenses for up to %d guests each", n, SchoolMaxGuests),
			PackageType: model.PackageTypeSchool,
			NumLicenses: n,
			MaxGuests:   SchoolMaxGuests,
			Price:       SchoolPackages[n],
			IsActive:    true,
		})
	}
	return pkgs
}

func sortedKeys(m map[int]decimal.Decimal) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
