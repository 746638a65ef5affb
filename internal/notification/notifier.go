// Package notification renders and sends the transactional emails: payment
// confirmation, purchase receipts, partner request outcomes and trial codes.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"voiceguide-backend/internal/client"
)

// ISOLayout is how expiry timestamps appear in emails and API responses (UTC).
const ISOLayout = "2006-01-02T15:04:05Z"

type PaymentConfirmed struct {
	To          string
	OrderID     uint
	Product     string
	LicenseCode string
	Count       int
}

type LicenseLine struct {
	Code      string
	MaxGuests int
}

type SingleReceipt struct {
	To          string
	OrderID     uint
	Total       string
	LicenseCode string
	MaxGuests   int
}

type PackageReceipt struct {
	To          string
	OrderID     uint
	Total       string
	PackageType string
	BundleSize  int
	Licenses    []LicenseLine
}

type PartnerApproved struct {
	To            string
	Name          string
	ReferralCode  string
	Tier          string
	CommissionPct string
}

type TrialLicense struct {
	To            string
	Code          string
	MaxGuests     int
	DurationHours int
	ExpiresAtISO  string
}

type Notifier struct {
	sender client.MailSender
}

func NewNotifier(sender client.MailSender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) PaymentConfirmed(ctx context.Context, p PaymentConfirmed) error {
	lines := []string{
		"Hello,",
		"",
		fmt.Sprintf("We received your payment for order #%d.", p.OrderID),
	}
	if p.Product != "" {
		lines = append(lines, "Product: "+p.Product)
	}
	if p.LicenseCode != "" {
		lines = append(lines, "", "Your license code is:", p.LicenseCode)
	}
	if p.Count > 1 {
		lines = append(lines, fmt.Sprintf("Your order includes %d licenses. All codes are listed in your receipt.", p.Count))
	}
	lines = append(lines,
		"",
		"Open the VoiceGuideApp, enter the license code and start your tour.",
		"",
		"Best regards,",
		"VoiceGuide Team",
	)

	return n.send(ctx, p.To,
		fmt.Sprintf("VoiceGuideApp — Payment confirmed (Order #%d)", p.OrderID),
		strings.Join(lines, "\n"), "payment_confirmed", p)
}

func (n *Notifier) SingleReceipt(ctx context.Context, r SingleReceipt) error {
	text := fmt.Sprintf("Thank you for your purchase on VoiceGuideApp.\n\n"+
		"Order: #%d\nTotal: %s EUR\nLicense: %s\nMax guests: %d\n\n"+
		"Open the VoiceGuideApp, enter the license code and start your tour.\n",
		r.OrderID, r.Total, r.LicenseCode, r.MaxGuests)

	return n.send(ctx, r.To, receiptSubject(r.OrderID), text, "receipt_single", r)
}

func (n *Notifier) PackageReceipt(ctx context.Context, r PackageReceipt) error {
	text := fmt.Sprintf("Thank you for your purchase on VoiceGuideApp.\n\n"+
		"Order: #%d\nTotal: %s EUR\nPackage: %s\nQuantity: %d\n\n"+
		"Open the VoiceGuideApp, enter a license code and start your tour.\n",
		r.OrderID, r.Total, r.PackageType, r.BundleSize)

	return n.send(ctx, r.To, receiptSubject(r.OrderID), text, "receipt_package", r)
}

func (n *Notifier) PartnerApproved(ctx context.Context, p PartnerApproved) error {
	p.Name = displayName(p.Name)
	lines := []string{
		"Hello " + p.Name + ",",
		"",
		"We are pleased to inform you that your request to become a VoiceGuide Partner has been approved.",
		"",
		"Your Partner Code is:",
		p.ReferralCode,
	}
	if p.Tier != "" {
		lines = append(lines, "Tier: "+p.Tier)
	}
	if p.CommissionPct != "" {
		lines = append(lines, "Commission: "+p.CommissionPct+"%")
	}
	lines = append(lines,
		"",
		"You can share this code with your clients during the purchase process.",
		"",
		"If you have any questions, simply reply to this email. Our support team will be happy to assist you.",
		"",
		"Best regards,",
		"VoiceGuide Team",
	)

	return n.send(ctx, p.To, "VoiceGuide — Partner Request Approved ✅",
		strings.Join(lines, "\n"), "partner_approved", p)
}

func (n *Notifier) PartnerRejected(ctx context.Context, to, name string) error {
	name = displayName(name)
	text := strings.Join([]string{
		"Hello " + name + ",",
		"",
		"Thank you for your interest in becoming a VoiceGuide Partner.",
		"",
		"After reviewing your request, we are unable to approve it at this time.",
		"",
		"If you would like further information or wish to submit a new request in the future, feel free to reply to this email.",
		"",
		"Kind regards,",
		"VoiceGuide Team",
	}, "\n")

	return n.send(ctx, to, "VoiceGuide — Partner Request Update", text, "partner_rejected",
		struct{ Name string }{name})
}

func (n *Notifier) TrialLicense(ctx context.Context, t TrialLicense) error {
	text := strings.Join([]string{
		"Hello,",
		"",
		"Here is your VoiceGuide trial license code:",
		"",
		t.Code,
		"",
		fmt.Sprintf("Max guests: %d", t.MaxGuests),
		fmt.Sprintf("Valid for: %d hours", t.DurationHours),
		fmt.Sprintf("Expires at: %s (UTC)", t.ExpiresAtISO),
		"",
		"If you have any questions, just reply to this email.",
		"",
		"Best regards,",
		"VoiceGuide Team",
	}, "\n")

	return n.send(ctx, t.To, "VoiceGuide — Your Trial License Code", text, "trial_license", t)
}

func (n *Notifier) send(ctx context.Context, to, subject, text, tmpl string, data interface{}) error {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}

	return n.sender.Send(ctx, &client.Email{
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    strings.TrimSpace(buf.String()),
	})
}

func receiptSubject(orderID uint) string {
	return fmt.Sprintf("VoiceGuideApp — Purchase completed (Order #%d)", orderID)
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "Partner"
	}
	return name
}
