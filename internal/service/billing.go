package service

import (
	"strings"
	"unicode"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/model"
)

// billingFromInvoice maps the site's invoice block onto billing details.
// company_name always holds the invoice holder, person or company.
func billingFromInvoice(orderID uint, inv *dto.Invoice) *model.OrderBillingDetails {
	bd := &model.OrderBillingDetails{
		OrderID:        orderID,
		RequestInvoice: true,
		Address:        trimmed(inv.Address.Line),
		City:           trimmed(inv.Address.City),
		ZipCode:        trimmed(inv.Address.Zip),
	}
	if inv.Address.Province != nil {
		bd.Province = trimmed(*inv.Address.Province)
	}

	switch inv.Mode {
	case "PERSON_IT":
		bd.Country = strPtr("IT")
		if p := inv.PersonIT; p != nil {
			bd.CompanyName = trimmed(p.FullName)
			bd.TaxCode = trimmed(p.CF)
		}
	case "VAT_IT":
		bd.Country = strPtr("IT")
		if v := inv.VatIT; v != nil {
			bd.CompanyName = trimmed(v.Company)
			bd.VatNumber = trimmed(v.Vat)
			bd.SdiCode = trimmed(v.Sdi)
			bd.Pec = trimmed(v.Pec)
		}
	case "COMPANY_EXT":
		if e := inv.CompanyExt; e != nil {
			bd.CompanyName = trimmed(e.Company)
			bd.VatNumber = trimmed(e.VatOrTaxID)
			bd.Country = countryISO2(e.Country)
		}
	}
	return bd
}

// billingFromDetails stores purchase billing details, only when an invoice was requested.
func billingFromDetails(orderID uint, d *dto.BillingDetails) *model.OrderBillingDetails {
	if d == nil || !d.RequestInvoice {
		return nil
	}
	return &model.OrderBillingDetails{
		OrderID:        orderID,
		RequestInvoice: true,
		Country:        upperPtr(d.Country),
		CompanyName:    trimmedPtr(d.CompanyName),
		VatNumber:      trimmedPtr(d.VatNumber),
		TaxCode:        trimmedPtr(d.TaxCode),
		Address:        trimmedPtr(d.Address),
		City:           trimmedPtr(d.City),
		ZipCode:        trimmedPtr(d.ZipCode),
		Province:       trimmedPtr(d.Province),
		Pec:            trimmedPtr(d.Pec),
		SdiCode:        trimmedPtr(d.SdiCode),
	}
}

// countryISO2 keeps the first two letters of a free-text country, upper-cased.
func countryISO2(raw string) *string {
	var letters []rune
	for _, r := range strings.TrimSpace(raw) {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) < 2 {
		return nil
	}
	return strPtr(strings.ToUpper(string(letters[:2])))
}

func trimmed(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return trimmed(*s)
}

func upperPtr(s *string) *string {
	v := trimmedPtr(s)
	if v == nil {
		return nil
	}
	return strPtr(strings.ToUpper(*v))
}

func strPtr(s string) *string {
	return &s
}
