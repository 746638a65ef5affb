package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"voiceguide-backend/internal/auth"
	"voiceguide-backend/internal/client"
	"voiceguide-backend/internal/config"
	"voiceguide-backend/internal/logger"
	"voiceguide-backend/internal/notification"
	"voiceguide-backend/internal/pricing"
	"voiceguide-backend/internal/repository"
	"voiceguide-backend/internal/server"
	"voiceguide-backend/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger.New(cfg.Log)

	if err := run(cfg); err != nil {
		slog.Error("voiceguide backend stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	db, err := client.InitDatabase(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	packageRepo := repository.NewPackageRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	if err := packageRepo.Seed(ctx, pricing.Catalog()); err != nil {
		return fmt.Errorf("seed packages: %w", err)
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(tokens, repository.NewAdminRepository(db), partnerRepo)
	created, err := authService.BootstrapAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		slog.Info("bootstrap admin created", "email", cfg.Admin.Email)
	}

	stripeClient := client.NewStripeClient(&cfg.Stripe)
	paypalClient := client.NewPaypalClient(&cfg.Paypal)
	licenseAPI := client.NewAirLinkClient(&cfg.AirLink)
	notifier := notification.NewNotifier(client.NewMailer(&cfg.Email))

	paypalReturnURL := cfg.Paypal.ReturnURL
	if paypalReturnURL == "" {
		paypalReturnURL = fmt.Sprintf("http://localhost:%s/paypal/return", cfg.HTTP.Port)
	}

	fulfillment := service.NewFulfillmentService(db, licenseAPI, orderRepo, licenseRepo, partnerRepo, payoutRepo, notifier)

	srv := server.NewServer(server.Services{
		Checkout:        service.NewCheckoutService(db, cfg.SiteURL, paypalReturnURL, stripeClient, paypalClient, packageRepo, partnerRepo, orderRepo),
		Payment:         service.NewPaymentService(db, cfg.SiteURL, stripeClient, paypalClient, orderRepo, webhookEventRepo, fulfillment),
		Purchase:        service.NewPurchaseService(db, packageRepo, partnerRepo, orderRepo, fulfillment, notifier),
		PartnerRequests: service.NewPartnerRequestService(db, repository.NewPartnerRequestRepository(db), partnerRepo, notifier),
		TrialRequests:   service.NewTrialRequestService(db, licenseAPI, repository.NewTrialRequestRepository(db), licenseRepo, notifier),
		Licenses:        service.NewLicenseService(db, licenseAPI, licenseRepo, notifier),
		Partners:        service.NewPartnerService(db, partnerRepo),
		Portal:          service.NewPortalService(orderRepo, licenseRepo, payoutRepo, paymentRepo),
		Ledger:          service.NewLedgerService(partnerRepo, orderRepo, payoutRepo, paymentRepo),
		Reports:         service.NewReportService(orderRepo),
		Auth:            authService,
	}, cfg.CORSOrigins)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	slog.Info("starting HTTP server", "addr", serverAddr, "env", cfg.Environment.Name,
		"stripe", cfg.Stripe.Enabled(), "paypal", cfg.Paypal.Enabled(), "email", cfg.Email.Enabled)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-sigChan:
		slog.Info("signal received, starting graceful shutdown")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
