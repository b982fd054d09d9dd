package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/careerpilot/backend/internal/config"
	"github.com/careerpilot/backend/internal/gateway"
	"github.com/careerpilot/backend/internal/handler"
	"github.com/careerpilot/backend/internal/identity"
	appMiddleware "github.com/careerpilot/backend/internal/middleware"
	"github.com/careerpilot/backend/internal/repository"
	"github.com/careerpilot/backend/internal/service"
	"github.com/careerpilot/backend/pkg/ai"
	"github.com/careerpilot/backend/pkg/billing"
)

func main() {
	// Load .env file if present (for local development)
	loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("database connected & migrated")

	verifier, err := identity.NewVerifier(cfg.AuthIssuer, cfg.AuthAudience, "")
	if err != nil {
		log.Fatalf("identity error: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	workRepo := repository.NewWorkExperienceRepository(db)
	contactRepo := repository.NewContactRepository(db)
	uniRepo := repository.NewUniversityRepository(db)
	recRepo := repository.NewRecommendationRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Billing provider. Without a secret key we fall back to the mock so
	// the rest of the app works in local development.
	var provider billing.Provider
	if cfg.StripeSecretKey != "" {
		if cfg.StripeWebhookSecret == "" {
			log.Println("WARNING: STRIPE_WEBHOOK_SECRET is empty, webhook signatures will NOT be verified")
		}
		provider = billing.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		log.Println("no Stripe key configured, using mock billing provider")
		provider = billing.NewMockProvider()
	}

	// Services
	authSvc := service.NewAuthService(verifier, userRepo)
	subSvc := service.NewSubscriptionService(userRepo, eventRepo, provider, service.PriceTable{
		PremiumMonthly:   cfg.PricePremiumMonthly,
		PremiumAnnual:    cfg.PricePremiumAnnual,
		UniversityAnnual: cfg.PriceUniversityAnnual,
	}, cfg.FrontendURL)
	recSvc := service.NewRecommendationService(recRepo, service.ContextSources{
		Goals:        goalRepo,
		Applications: appRepo,
		Work:         workRepo,
		Contacts:     contactRepo,
	}, ai.NewClient(cfg.CompletionAPIURL, cfg.CompletionAPIKey))
	settingsCache := service.NewSettingsCache(settingsRepo)

	// Handlers
	h := handlers{
		goals:           handler.NewGoalHandler(goalRepo),
		applications:    handler.NewApplicationHandler(appRepo),
		work:            handler.NewWorkExperienceHandler(workRepo),
		contacts:        handler.NewContactHandler(contactRepo),
		profile:         handler.NewProfileHandler(userRepo),
		recommendations: handler.NewRecommendationHandler(recSvc),
		billing:         handler.NewBillingHandler(subSvc),
		webhooks:        handler.NewWebhookHandler(subSvc),
		universities:    handler.NewUniversityHandler(uniRepo, userRepo),
		admin:           handler.NewAdminHandler(userRepo, settingsCache),
	}
	healthHandler := handler.NewHealthHandler(db)

	gw, err := gateway.New(buildRules(h), authSvc)
	if err != nil {
		log.Fatalf("route table error: %v", err)
	}

	// Build router
	r := chi.NewRouter()
	r.Use(appMiddleware.Recovery)
	r.Use(appMiddleware.Logger)
	r.Use(appMiddleware.CORS(appMiddleware.CORSConfig{
		AllowedOrigins: cfg.CORSOrigins,
		PreviewSuffix:  cfg.PreviewOriginSuffix,
		Production:     cfg.IsProduction(),
	}))

	globalRL := appMiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	r.Use(globalRL.Middleware())

	r.Get("/health", healthHandler.Check)
	r.Handle("/api/*", gw)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("CareerPilot backend listening at http://%s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// loadDotEnv reads KEY=VALUE lines from a .env file if one exists. Real
// environment variables take precedence.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
