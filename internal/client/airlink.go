package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"voiceguide-backend/internal/config"
)

// ErrLicenseCodeExists is returned when AirLink already knows the code (HTTP 409).
var ErrLicenseCodeExists = errors.New("airlink: license code already exists")

// LicenseAPI is the remote license service the mobile app activates codes against.
type LicenseAPI interface {
	CreateLicense(ctx context.Context, req *CreateLicenseRequest) error
}

type CreateLicenseRequest struct {
	Code            string `json:"code"`
	MaxListeners    int    `json:"max_listeners"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        bool   `json:"is_active"`
}

type airLinkClientImpl struct {
	httpClient  *http.Client
	baseURL     string
	adminSecret string
}

func NewAirLinkClient(cfg *config.AirLink) LicenseAPI {
	return &airLinkClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		adminSecret: cfg.AdminSecret,
	}
}

func (c *airLinkClientImpl) CreateLicense(ctx context.Context, in *CreateLicenseRequest) error {
	if c.baseURL == "" || c.adminSecret == "" {
		return errors.New("airlink: AIRLINK_BASE_URL / AIRLINK_ADMIN_SECRET not configured")
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal license payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/admin/licenses", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("X-Admin-Secret", c.adminSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("airlink request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return ErrLicenseCodeExists
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("airlink error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return nil
}
