package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/service"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) Single(c echo.Context) error {
	var req dto.SinglePurchaseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.purchaseService.Single(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PurchaseHandler) Package(c echo.Context) error {
	var req dto.PackagePurchaseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.purchaseService.Package(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
