package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/service"
)

type LedgerHandler struct {
	ledgerService service.LedgerService
}

func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

func (h *LedgerHandler) Balances(c echo.Context) error {
	rows, err := h.ledgerService.Balances(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *LedgerHandler) PartnerPayouts(c echo.Context) error {
	partnerID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	rows, err := h.ledgerService.PartnerPayouts(c.Request().Context(), partnerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *LedgerHandler) CreatePayout(c echo.Context) error {
	var req dto.PayoutCreate
	if err := bind(c, &req); err != nil {
		return err
	}

	payout, err := h.ledgerService.CreatePayout(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payout)
}

func (h *LedgerHandler) MarkPayoutPaid(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	payout, err := h.ledgerService.MarkPayoutPaid(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payout)
}

func (h *LedgerHandler) PaymentTotals(c echo.Context) error {
	rows, err := h.ledgerService.PaymentTotals(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *LedgerHandler) PartnerPayments(c echo.Context) error {
	partnerID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	payments, err := h.ledgerService.PartnerPayments(c.Request().Context(), partnerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *LedgerHandler) CreatePayment(c echo.Context) error {
	var req dto.PaymentCreate
	if err := bind(c, &req); err != nil {
		return err
	}

	payment, err := h.ledgerService.CreatePayment(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}
