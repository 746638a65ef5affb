package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/service"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler
	return e
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{&service.Error{Kind: service.ErrInvalid, Detail: "bad input"}, http.StatusBadRequest, "bad input"},
		{&service.Error{Kind: service.ErrNotFound, Detail: "Partner non trovato."}, http.StatusNotFound, "Partner non trovato."},
		{&service.Error{Kind: service.ErrConflict, Detail: "exists"}, http.StatusConflict, "exists"},
		{&service.Error{Kind: service.ErrUpstream, Detail: "AirLink down", Err: errors.New("dial tcp")}, http.StatusBadGateway, "AirLink down"},
		{&service.Error{Kind: service.ErrUnauthorized, Detail: "nope"}, http.StatusUnauthorized, "nope"},
		{&service.Error{Kind: service.ErrForbidden, Detail: "admins only"}, http.StatusForbidden, "admins only"},
		{fmt.Errorf("wrapped: %w", &service.Error{Kind: service.ErrConflict, Detail: "inner"}), http.StatusConflict, "inner"},
		{echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}

	e := newEcho()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		ErrorHandler(tc.err, c)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, tc.detail, detailOf(t, rec))
	}
}

func TestErrorHandlerHead(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)

	ErrorHandler(&service.Error{Kind: service.ErrNotFound, Detail: "gone"}, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBindValidates(t *testing.T) {
	e := newEcho()
	e.POST("/trial", func(c echo.Context) error {
		var req dto.TrialRequestCreate
		if err := bind(c, &req); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, req)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/trial", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"email":"guide@example.com","language":"it"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = post(`{"email":"guide@example.com","language":"de"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detailOf(t, rec), "Language")

	rec = post(`{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", detailOf(t, rec))
}

func TestIDParam(t *testing.T) {
	e := newEcho()
	e.GET("/orders/:id", func(c echo.Context) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]uint{"id": id})
	})

	for path, status := range map[string]int{
		"/orders/42":  http.StatusOK,
		"/orders/0":   http.StatusBadRequest,
		"/orders/abc": http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, rec.Code, path)
	}
}
