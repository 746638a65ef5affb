package service

import (
	"strings"

	"github.com/google/uuid"
)

// NewLicenseCode returns VG-LIC- followed by 8 upper-case hex characters.
func NewLicenseCode() string {
	return "VG-LIC-" + randomHex(8)
}

// NewReferralCode returns VG- followed by 6 upper-case hex characters.
func NewReferralCode() string {
	return "VG-" + randomHex(6)
}

func randomHex(n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:n])
}
