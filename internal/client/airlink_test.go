package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceguide-backend/internal/config"
)

func TestAirLinkCreateLicense(t *testing.T) {
	var got CreateLicenseRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/admin/licenses", r.URL.Path)
		assert.Equal(t, "s3cret", r.Header.Get("X-Admin-Secret"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewAirLinkClient(&config.AirLink{BaseURL: srv.URL + "/", AdminSecret: "s3cret", Timeout: time.Second})
	err := c.CreateLicense(context.Background(), &CreateLicenseRequest{
		Code:            "VG-LIC-ABCDEF12",
		MaxListeners:    25,
		DurationMinutes: 240,
	})
	require.NoError(t, err)
	assert.Equal(t, "VG-LIC-ABCDEF12", got.Code)
	assert.Equal(t, 25, got.MaxListeners)
	assert.Equal(t, 240, got.DurationMinutes)
	assert.False(t, got.IsActive)
}

func TestAirLinkConflictAndFailure(t *testing.T) {
	status := http.StatusConflict
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"detail":"CODE_EXISTS"}`))
	}))
	defer srv.Close()

	c := NewAirLinkClient(&config.AirLink{BaseURL: srv.URL, AdminSecret: "x", Timeout: time.Second})

	err := c.CreateLicense(context.Background(), &CreateLicenseRequest{Code: "A"})
	assert.ErrorIs(t, err, ErrLicenseCodeExists)

	status = http.StatusInternalServerError
	err = c.CreateLicense(context.Background(), &CreateLicenseRequest{Code: "A"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLicenseCodeExists)
	assert.Contains(t, err.Error(), "airlink error 500")
}

func TestAirLinkNotConfigured(t *testing.T) {
	c := NewAirLinkClient(&config.AirLink{})
	assert.Error(t, c.CreateLicense(context.Background(), &CreateLicenseRequest{Code: "A"}))
}
