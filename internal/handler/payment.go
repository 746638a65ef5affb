package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/service"
)

const stripeSignatureHeader = "Stripe-Signature"

type PaymentHandler struct {
	checkoutService service.CheckoutService
	paymentService  service.PaymentService
}

func NewPaymentHandler(checkoutService service.CheckoutService, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		paymentService:  paymentService,
	}
}

func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.checkoutService.CreateOrder(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) Intent(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.checkoutService.Intent(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

// StripeWebhook needs the raw body; the signature is computed over the exact bytes.
func (h *PaymentHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read request body")
	}

	result, err := h.paymentService.HandleStripeWebhook(ctx, payload, c.Request().Header.Get(stripeSignatureHeader))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) PaypalReturn(c echo.Context) error {
	ctx := c.Request().Context()

	redirect, err := h.paymentService.HandlePaypalReturn(ctx, c.QueryParam("token"), c.QueryParam("lang"))
	if err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, redirect)
}
