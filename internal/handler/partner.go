package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/middleware"
	"voiceguide-backend/internal/service"
)

type PartnerHandler struct {
	partnerService service.PartnerService
	portalService  service.PortalService
}

func NewPartnerHandler(partnerService service.PartnerService, portalService service.PortalService) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
		portalService:  portalService,
	}
}

// Create answers 201; the legacy /partners/create route answers 200 through LegacyCreate.
func (h *PartnerHandler) Create(c echo.Context) error {
	return h.create(c, http.StatusCreated)
}

func (h *PartnerHandler) LegacyCreate(c echo.Context) error {
	return h.create(c, http.StatusOK)
}

func (h *PartnerHandler) create(c echo.Context, status int) error {
	var req dto.PartnerCreate
	if err := bind(c, &req); err != nil {
		return err
	}

	partner, err := h.partnerService.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(status, partner)
}

func (h *PartnerHandler) List(c echo.Context) error {
	partners, err := h.partnerService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, partners)
}

func (h *PartnerHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	partner, err := h.partnerService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, partner)
}

func (h *PartnerHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.PartnerUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	partner, err := h.partnerService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, partner)
}

// ---------- partner portal ----------

func (h *PartnerHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, h.portalService.Profile(middleware.Partner(c)))
}

func (h *PartnerHandler) Summary(c echo.Context) error {
	summary, err := h.portalService.Summary(c.Request().Context(), middleware.Partner(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *PartnerHandler) Orders(c echo.Context) error {
	rows, err := h.portalService.Orders(c.Request().Context(), middleware.Partner(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *PartnerHandler) LegacyOrders(c echo.Context) error {
	rows, err := h.portalService.LegacyOrders(c.Request().Context(), middleware.Partner(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *PartnerHandler) LegacyPayouts(c echo.Context) error {
	rows, err := h.portalService.LegacyPayouts(c.Request().Context(), middleware.Partner(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *PartnerHandler) LegacySummary(c echo.Context) error {
	summary, err := h.portalService.LegacySummary(c.Request().Context(), middleware.Partner(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
