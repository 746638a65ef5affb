package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceguide-backend/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMoney2RoundsHalfUp(t *testing.T) {
	assert.True(t, d("1.43").Equal(Money2(d("1.425"))))
	assert.True(t, d("1.42").Equal(Money2(d("1.424"))))
	assert.True(t, d("0.01").Equal(Money2(d("0.005"))))
}

func TestCommission(t *testing.T) {
	// 14.24 * 10 / 100 = 1.424
	assert.True(t, d("1.42").Equal(Commission(d("14.24"), d("10"))))
	// 29.99 * 15 / 100 = 4.4985
	assert.True(t, d("4.50").Equal(Commission(d("29.99"), d("15"))))
	assert.True(t, decimal.Zero.Equal(Commission(d("100"), decimal.Zero)))
}

func TestPartnerDiscount(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(PartnerDiscount(d("14.99"), false)))
	// 14.99 * 5% = 0.7495
	assert.True(t, d("0.75").Equal(PartnerDiscount(d("14.99"), true)))
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(1499), ToCents(d("14.99")))
	assert.Equal(t, int64(11900), ToCents(d("119")))
	assert.Equal(t, int64(1424), ToCents(d("14.2449")))
	assert.True(t, d("14.99").Equal(FromCents(1499)))
}

func TestLicenseCost(t *testing.T) {
	// 26 participants * 240 min = 6240 min -> 6.24 * 0.99 = 6.1776
	assert.True(t, d("6.18").Equal(LicenseCost(25)))
	// 101 * 240 = 24240 -> 23.9976
	assert.True(t, d("24.00").Equal(LicenseCost(100)))
	assert.True(t, d("61.80").Equal(PackageCost(10, 25)))
}

func TestCatalog(t *testing.T) {
	pkgs := Catalog()
	require.Len(t, pkgs, 12)

	byCode := map[string]model.Package{}
	for _, p := range pkgs {
		byCode[p.Code] = p
	}

	single := byCode["SINGLE_25"]
	assert.Equal(t, model.PackageTypeSingle, single.PackageType)
	assert.Equal(t, 1, single.NumLicenses)
	assert.Equal(t, 25, single.MaxGuests)
	assert.True(t, d("14.99").Equal(single.Price))

	to := byCode["PACKAGE_TO_20"]
	assert.Equal(t, 20, to.NumLicenses)
	assert.Equal(t, TOMaxGuests, to.MaxGuests)
	assert.True(t, d("225").Equal(to.Price))

	school := byCode["PACKAGE_SCHOOL_30"]
	assert.Equal(t, model.PackageTypeSchool, school.PackageType)
	assert.Equal(t, SchoolMaxGuests, school.MaxGuests)
}
