package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/repository"
	"voiceguide-backend/internal/service"
)

type LicenseHandler struct {
	licenseService service.LicenseService
}

func NewLicenseHandler(licenseService service.LicenseService) *LicenseHandler {
	return &LicenseHandler{licenseService: licenseService}
}

func (h *LicenseHandler) IssueManual(c echo.Context) error {
	var req dto.ManualLicenseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	license, err := h.licenseService.IssueManual(c.Request().Context(), adminEmail(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, license)
}

func (h *LicenseHandler) List(c echo.Context) error {
	orderID, err := optionalUintQuery(c, "order_id")
	if err != nil {
		return err
	}

	licenses, err := h.licenseService.List(c.Request().Context(), repository.LicenseFilter{
		OrderID: orderID,
		Email:   c.QueryParam("email"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, licenses)
}
