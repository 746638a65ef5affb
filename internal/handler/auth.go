package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/dto"
	"voiceguide-backend/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req dto.AdminLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.AdminLogin(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) PartnerLogin(c echo.Context) error {
	var req dto.PartnerLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.PartnerLogin(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
