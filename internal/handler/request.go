package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/middleware"
	"voiceguide-backend/internal/service"
)

// RequestHandler serves the partner and trial request workflows, public and admin side.
type RequestHandler struct {
	partnerRequests service.PartnerRequestService
	trialRequests   service.TrialRequestService
}

func NewRequestHandler(partnerRequests service.PartnerRequestService, trialRequests service.TrialRequestService) *RequestHandler {
	return &RequestHandler{
		partnerRequests: partnerRequests,
		trialRequests:   trialRequests,
	}
}

func (h *RequestHandler) CreatePartnerRequest(c echo.Context) error {
	var req dto.PartnerRequestCreate
	if err := bind(c, &req); err != nil {
		return err
	}

	created, err := h.partnerRequests.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, created)
}

func (h *RequestHandler) ListPartnerRequests(c echo.Context) error {
	reqs, err := h.partnerRequests.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *RequestHandler) ApprovePartnerRequest(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	pct, err := optionalDecimalQuery(c, "commission_pct")
	if err != nil {
		return err
	}

	req, err := h.partnerRequests.Approve(c.Request().Context(), id, service.ApproveOptions{
		Tier:          c.QueryParam("tier"),
		CommissionPct: pct,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) RejectPartnerRequest(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	req, err := h.partnerRequests.Reject(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) CreateTrialRequest(c echo.Context) error {
	var req dto.TrialRequestCreate
	if err := bind(c, &req); err != nil {
		return err
	}

	created, err := h.trialRequests.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, created)
}

func (h *RequestHandler) ListTrialRequests(c echo.Context) error {
	reqs, err := h.trialRequests.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reqs)
}

func (h *RequestHandler) CountTrialRequests(c echo.Context) error {
	res, err := h.trialRequests.Count(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *RequestHandler) RejectTrialRequest(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var body dto.TrialRejectRequest
	if err := bind(c, &body); err != nil {
		return err
	}

	req, err := h.trialRequests.Reject(c.Request().Context(), id, body.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) IssueTrialRequest(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var body dto.TrialIssueRequest
	if err := bind(c, &body); err != nil {
		return err
	}

	res, err := h.trialRequests.Issue(c.Request().Context(), id, adminEmail(c), &body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func adminEmail(c echo.Context) string {
	if admin := middleware.Admin(c); admin != nil {
		return admin.Email
	}
	return ""
}
