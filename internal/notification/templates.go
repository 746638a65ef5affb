package notification

import "html/template"

var htmlTemplates = template.Must(template.New("email").Parse(`
{{define "receipt_header"}}<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>VoiceGuideApp — Receipt</title>
</head>
<body style="margin:0;padding:0;background:#f6f7fb;font-family:Arial,Helvetica,sans-serif;color:#111;">
  <div style="max-width:640px;margin:0 auto;padding:24px;">
    <div style="background:#ffffff;border-radius:14px;padding:22px;border:1px solid #eceef3;">
      <div style="display:flex;align-items:center;justify-content:space-between;">
        <div style="font-size:18px;font-weight:700;">VoiceGuideApp</div>
        <div style="font-size:12px;color:#666;">Purchase receipt</div>
      </div>
      <hr style="border:none;border-top:1px solid #eceef3;margin:16px 0;">
{{end}}

{{define "receipt_footer"}}
      <p style="margin:0;color:#666;font-size:12px;">
        Need help? Reply to this email or contact
        <strong>support@voiceguideapp.com</strong>
      </p>
    </div>
    <p style="margin:14px 0 0 0;text-align:center;color:#888;font-size:11px;">
      © VoiceGuideApp — Automated email
    </p>
  </div>
</body>
</html>
{{end}}


{{define "receipt_single"}}{{template "receipt_header"}}
      <h1 style="font-size:18px;margin:0 0 8px 0;">Purchase completed ✅</h1>
      <p style="margin:0 0 16px 0;color:#444;font-size:14px;">
        Thank you for your purchase on VoiceGuideApp.
        Below you will find your order details and license code.
      </p>
      <div style="background:#f9fafc;border:1px solid #eceef3;border-radius:12px;padding:14px;">
        <div style="font-size:14px;margin-bottom:6px;"><span style="color:#666;">Order</span> <strong>#{{.OrderID}}</strong></div>
        <div style="font-size:14px;margin-bottom:6px;"><span style="color:#666;">Total</span> <strong>{{.Total}} €</strong></div>
        <div style="font-size:14px;margin-bottom:6px;"><span style="color:#666;">License</span> <strong>{{.LicenseCode}}</strong></div>
        <div style="font-size:14px;"><span style="color:#666;">Max guests</span> <strong>{{.MaxGuests}}</strong></div>
      </div>
      <h2 style="font-size:15px;margin:18px 0 8px 0;">Quick instructions</h2>
      <ol style="margin:0 0 14px 18px;font-size:14px;line-height:1.5;">
        <li>Open the VoiceGuideApp</li>
        <li>Enter your license code</li>
        <li>Start the tour and share the PIN with your guests</li>
      </ol>
{{template "receipt_footer"}}{{end}}

{{define "receipt_package"}}{{template "receipt_header"}}
      <h1 style="font-size:18px;margin:0 0 8px 0;">Purchase completed ✅</h1>
      <p style="margin:0 0 16px 0;color:#444;font-size:14px;">
        Thank you for your purchase on VoiceGuideApp.
        Below you will find your order details and license codes.
      </p>
      <div style="background:#f9fafc;border:1px solid #eceef3;border-radius:12px;padding:14px;">
        <div style="font-size:14px;margin-bottom:6px;"><span style="color:#666;">Order</span> <strong>#{{.OrderID}}</strong></div>
        <div style="font-size:14px;margin-bottom:6px;"><span style="color:#666;">Total</span> <strong>{{.Total}} €</strong></div>
        <div style="font-size:14px;margin-bottom:6px;"><span style="color:#666;">Package</span> <strong>{{.PackageType}}</strong></div>
        <div style="font-size:14px;"><span style="color:#666;">Quantity</span> <strong>{{.BundleSize}}</strong></div>
      </div>
      <h2 style="font-size:15px;margin:18px 0 8px 0;">Your license codes</h2>
      <ul style="margin:0 0 14px 18px;font-size:14px;line-height:1.5;">
        {{range .Licenses}}<li style="margin-bottom:6px;"><strong>{{.Code}} (max guests: {{.MaxGuests}})</strong></li>
        {{end}}
      </ul>
      <h2 style="font-size:15px;margin:18px 0 8px 0;">Quick instructions</h2>
      <ol style="margin:0 0 14px 18px;font-size:14px;line-height:1.5;">
        <li>Open the VoiceGuideApp</li>
        <li>Enter one of the license codes</li>
        <li>Start the tour and share the PIN with your guests</li>
      </ol>
{{template "receipt_footer"}}{{end}}

{{define "payment_confirmed"}}<div style="font-family:Arial,Helvetica,sans-serif;font-size:14px;line-height:1.6;color:#111;">
  <p>Hello,</p>
  <p>We received your payment for order <b>#{{.OrderID}}</b>{{if .Product}} ({{.Product}}){{end}}.</p>
  {{if .LicenseCode}}<div style="padding:14px;border:1px solid #e5e5e5;border-radius:10px;margin:16px 0;">
    <div style="font-size:12px;color:#666;margin-bottom:6px;">License Code</div>
    <div style="font-size:22px;letter-spacing:1px;"><b>{{.LicenseCode}}</b></div>
  </div>{{end}}
  {{if gt .Count 1}}<p>Your order includes <b>{{.Count}}</b> licenses. All codes are listed in your receipt.</p>{{end}}
  <p>Open the VoiceGuideApp, enter the license code and start your tour.</p>
  <p style="margin-top:18px;color:#444;">Best regards,<br/><b>VoiceGuide Team</b></p>
</div>{{end}}

{{define "partner_approved"}}<div style="font-family:Arial,Helvetica,sans-serif;font-size:14px;line-height:1.6;color:#111;">
  <p>Hello <b>{{.Name}}</b>,</p>
  <p>We are pleased to inform you that your request to become a <b>VoiceGuide Partner</b> has been approved.</p>
  <div style="padding:14px;border:1px solid #e5e5e5;border-radius:10px;margin:16px 0;">
    <div style="font-size:12px;color:#666;margin-bottom:6px;">Your Partner Code</div>
    <div style="font-size:22px;letter-spacing:1px;"><b>{{.ReferralCode}}</b></div>
  </div>
  {{if or .Tier .CommissionPct}}<p style="margin:0 0 12px 0;">{{if .Tier}}<b>Tier:</b> {{.Tier}}<br/>{{end}}{{if .CommissionPct}}<b>Commission:</b> {{.CommissionPct}}%{{end}}</p>{{end}}
  <p>You can share this code with your clients during the purchase process.</p>
  <p>If you have any questions, simply reply to this email. Our support team will be happy to assist you.</p>
  <p style="margin-top:18px;color:#444;">Best regards,<br/><b>VoiceGuide Team</b></p>
</div>{{end}}

{{define "partner_rejected"}}<div style="font-family:Arial,Helvetica,sans-serif;font-size:14px;line-height:1.6;color:#111;">
  <p>Hello <b>{{.Name}}</b>,</p>
  <p>Thank you for your interest in becoming a <b>VoiceGuide Partner</b>.</p>
  <p>After reviewing your request, we are unable to approve it at this time.</p>
  <p>If you would like further information or wish to submit a new request in the future, feel free to reply to this email.</p>
  <p style="margin-top:18px;color:#444;">Kind regards,<br/><b>VoiceGuide Team</b></p>
</div>{{end}}

{{define "trial_license"}}<div style="font-family:Arial,Helvetica,sans-serif;font-size:14px;line-height:1.6;color:#111;">
  <p>Hello,</p>
  <p>Here is your <b>VoiceGuide</b> trial license code:</p>
  <div style="padding:14px;border:1px solid #e5e5e5;border-radius:10px;margin:16px 0;">
    <div style="font-size:12px;color:#666;margin-bottom:6px;">Trial License Code</div>
    <div style="font-size:22px;letter-spacing:1px;"><b>{{.Code}}</b></div>
  </div>
  <p style="margin:0 0 6px 0;"><b>Max guests:</b> {{.MaxGuests}}</p>
  <p style="margin:0 0 12px 0;"><b>Valid for:</b> {{.DurationHours}} hours</p>
  <p style="margin:0 0 12px 0;"><b>Expires at:</b> {{.ExpiresAtISO}} (UTC)</p>
  <p>If you have any questions, just reply to this email.</p>
  <p style="margin-top:18px;color:#444;">Best regards,<br/><b>VoiceGuide Team</b></p>
</div>{{end}}
`))
