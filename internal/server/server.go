package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"voiceguide-backend/internal/handler"
	authmw "voiceguide-backend/internal/middleware"
	"voiceguide-backend/internal/service"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Checkout        service.CheckoutService
	Payment         service.PaymentService
	Purchase        service.PurchaseService
	PartnerRequests service.PartnerRequestService
	TrialRequests   service.TrialRequestService
	Licenses        service.LicenseService
	Partners        service.PartnerService
	Portal          service.PortalService
	Ledger          service.LedgerService
	Reports         service.ReportService
	Auth            service.AuthService
}

type Server struct {
	echo            *echo.Echo
	authService     service.AuthService
	paymentHandler  *handler.PaymentHandler
	purchaseHandler *handler.PurchaseHandler
	requestHandler  *handler.RequestHandler
	licenseHandler  *handler.LicenseHandler
	partnerHandler  *handler.PartnerHandler
	ledgerHandler   *handler.LedgerHandler
	reportHandler   *handler.ReportHandler
	authHandler     *handler.AuthHandler
}

func NewServer(svc Services, corsOrigins []string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.String()}
			if v.Error != nil {
				slog.Warn("request", append(attrs, "err", v.Error)...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     corsOrigins,
		AllowCredentials: true,
	}))

	s := &Server{
		echo:            e,
		authService:     svc.Auth,
		paymentHandler:  handler.NewPaymentHandler(svc.Checkout, svc.Payment),
		purchaseHandler: handler.NewPurchaseHandler(svc.Purchase),
		requestHandler:  handler.NewRequestHandler(svc.PartnerRequests, svc.TrialRequests),
		licenseHandler:  handler.NewLicenseHandler(svc.Licenses),
		partnerHandler:  handler.NewPartnerHandler(svc.Partners, svc.Portal),
		ledgerHandler:   handler.NewLedgerHandler(svc.Ledger),
		reportHandler:   handler.NewReportHandler(svc.Reports),
		authHandler:     handler.NewAuthHandler(svc.Auth),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	e := s.echo
	adminOnly := authmw.AdminAuth(s.authService)
	partnerOnly := authmw.PartnerAuth(s.authService)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "VoiceGuide backend is up"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	// -------- checkout / payments --------
	e.POST("/checkout/create-order", s.paymentHandler.CreateOrder)
	e.POST("/checkout/intent", s.paymentHandler.Intent)
	e.POST("/stripe/webhook", s.paymentHandler.StripeWebhook)
	e.POST("/webhooks/stripe", s.paymentHandler.StripeWebhook)
	e.GET("/paypal/return", s.paymentHandler.PaypalReturn)

	e.POST("/purchase/single", s.purchaseHandler.Single)
	e.POST("/purchase/package", s.purchaseHandler.Package)

	// -------- public requests --------
	e.POST("/partner-requests", s.requestHandler.CreatePartnerRequest)
	e.POST("/trial-requests", s.requestHandler.CreateTrialRequest)

	// -------- legacy partner management --------
	legacy := e.Group("/partners", adminOnly)
	legacy.POST("/create", s.partnerHandler.LegacyCreate)
	legacy.GET("", s.partnerHandler.List)
	legacy.GET("/", s.partnerHandler.List)

	// -------- partner portal --------
	e.POST("/partner/login", s.authHandler.PartnerLogin)
	portal := e.Group("/partner", partnerOnly)
	portal.GET("/me", s.partnerHandler.Me)
	portal.GET("/summary", s.partnerHandler.Summary)
	portal.GET("/orders", s.partnerHandler.Orders)
	portal.GET("/me/orders", s.partnerHandler.LegacyOrders)
	portal.GET("/me/payouts", s.partnerHandler.LegacyPayouts)
	portal.GET("/me/summary", s.partnerHandler.LegacySummary)

	// -------- admin --------
	e.POST("/admin/login", s.authHandler.AdminLogin)
	admin := e.Group("/admin", adminOnly)

	admin.GET("/partner-requests", s.requestHandler.ListPartnerRequests)
	admin.POST("/partner-requests/:id/approve", s.requestHandler.ApprovePartnerRequest)
	admin.POST("/partner-requests/:id/reject", s.requestHandler.RejectPartnerRequest)

	admin.GET("/trial-requests", s.requestHandler.ListTrialRequests)
	admin.GET("/trial-requests/count", s.requestHandler.CountTrialRequests)
	admin.POST("/trial-requests/:id/reject", s.requestHandler.RejectTrialRequest)
	admin.POST("/trial-requests/:id/issue", s.requestHandler.IssueTrialRequest)

	admin.GET("/licenses", s.licenseHandler.List)
	admin.POST("/licenses/manual", s.licenseHandler.IssueManual)

	admin.GET("/partners", s.partnerHandler.List)
	admin.GET("/partners/", s.partnerHandler.List)
	admin.POST("/partners/create", s.partnerHandler.Create)
	admin.GET("/partners/:id", s.partnerHandler.Get)
	admin.PATCH("/partners/:id", s.partnerHandler.Update)

	admin.GET("/payouts/by-partner", s.ledgerHandler.Balances)
	admin.POST("/payouts/create", s.ledgerHandler.CreatePayout)
	admin.POST("/payouts/payments/create", s.ledgerHandler.CreatePayment)
	admin.GET("/payouts/payments/:id", s.ledgerHandler.PartnerPayments)
	admin.POST("/payouts/:id/mark-paid", s.ledgerHandler.MarkPayoutPaid)
	admin.GET("/payouts/:id", s.ledgerHandler.PartnerPayouts)

	admin.GET("/partner-payments/by-partner", s.ledgerHandler.PaymentTotals)
	admin.POST("/partner-payments/create", s.ledgerHandler.CreatePayment)
	admin.GET("/partner-payments/:id", s.ledgerHandler.PartnerPayments)

	admin.GET("/orders", s.reportHandler.Orders)
	admin.GET("/orders/export.xlsx", s.reportHandler.ExportOrders)
	admin.GET("/orders/:id", s.reportHandler.Order)
	admin.GET("/stats/overview", s.reportHandler.Stats)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
