// Package auth issues and verifies the HS256 bearer tokens used by the admin
// console and the partner portal.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminSubjectPrefix = "admin:"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotAdmin     = errors.New("token subject is not an admin")
	ErrNotPartner   = errors.New("token subject is not a partner")
)

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for subject, valid for the configured TTL.
func (t *Tokens) Issue(subject string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) IssueAdmin(adminID uint) (string, error) {
	return t.Issue(adminSubjectPrefix + strconv.FormatUint(uint64(adminID), 10))
}

func (t *Tokens) IssuePartner(partnerID uint) (string, error) {
	return t.Issue(strconv.FormatUint(uint64(partnerID), 10))
}

// Subject verifies the signature and expiry and returns the token subject.
func (t *Tokens) Subject(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// AdminID extracts the admin id from an "admin:<id>" token.
func (t *Tokens) AdminID(token string) (uint, error) {
	sub, err := t.Subject(token)
	if err != nil {
		return 0, err
	}
	raw, ok := strings.CutPrefix(sub, adminSubjectPrefix)
	if !ok {
		return 0, ErrNotAdmin
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// PartnerID extracts the partner id from a token whose subject is numeric.
func (t *Tokens) PartnerID(token string) (uint, error) {
	sub, err := t.Subject(token)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, ErrNotPartner
	}
	return uint(id), nil
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
