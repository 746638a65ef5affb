package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/auth"
	"voiceguide-backend/internal/model"
)

const (
	adminKey   = "admin"
	partnerKey = "partner"
)

type AdminAuthenticator interface {
	AuthenticateAdmin(ctx context.Context, token string) (*model.Admin, error)
}

type PartnerAuthenticator interface {
	AuthenticatePartner(ctx context.Context, token string) (*model.Partner, error)
}

// AdminAuth requires a bearer token for an active admin and stores it on the context.
func AdminAuth(authn AdminAuthenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearer(c)
			if err != nil {
				return err
			}
			admin, err := authn.AuthenticateAdmin(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(adminKey, admin)
			return next(c)
		}
	}
}

// PartnerAuth requires a bearer token for an active partner and stores it on the context.
func PartnerAuth(authn PartnerAuthenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearer(c)
			if err != nil {
				return err
			}
			partner, err := authn.AuthenticatePartner(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(partnerKey, partner)
			return next(c)
		}
	}
}

func Admin(c echo.Context) *model.Admin {
	admin, _ := c.Get(adminKey).(*model.Admin)
	return admin
}

func Partner(c echo.Context) *model.Partner {
	partner, _ := c.Get(partnerKey).(*model.Partner)
	return partner
}

func bearer(c echo.Context) (string, error) {
	token, ok := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return token, nil
}
