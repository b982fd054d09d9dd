package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int
	Env         string // "production" or anything else (dev behavior)
	DatabaseURL string

	CORSOrigins         []string
	PreviewOriginSuffix string // preview deployments, e.g. ".vercel.app"

	AuthIssuer   string
	AuthAudience string

	StripeSecretKey       string
	StripeWebhookSecret   string // empty disables signature verification (logged as risky)
	PricePremiumMonthly   string
	PricePremiumAnnual    string
	PriceUniversityAnnual string
	FrontendURL           string

	CompletionAPIURL string
	CompletionAPIKey string

	RateLimitRPS   float64
	RateLimitBurst int
}

// IsProduction reports whether production CORS rules apply.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, _ := strconv.Atoi(getEnv("PORT", "4000"))

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	issuer := getEnv("AUTH_ISSUER", "")
	if issuer == "" {
		return nil, fmt.Errorf("AUTH_ISSUER is required")
	}
	audience := getEnv("AUTH_AUDIENCE", "")
	if audience == "" {
		return nil, fmt.Errorf("AUTH_AUDIENCE is required")
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,https://app.careerpilot.io"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	if err != nil || rps <= 0 {
		rps = 20
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))
	if err != nil || burst <= 0 {
		burst = 40
	}

	return &Config{
		Port:                  port,
		Env:                   getEnv("ENV", "development"),
		DatabaseURL:           dbURL,
		CORSOrigins:           origins,
		PreviewOriginSuffix:   getEnv("PREVIEW_ORIGIN_SUFFIX", ".vercel.app"),
		AuthIssuer:            issuer,
		AuthAudience:          audience,
		StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
		PricePremiumMonthly:   getEnv("STRIPE_PRICE_PREMIUM_MONTHLY", ""),
		PricePremiumAnnual:    getEnv("STRIPE_PRICE_PREMIUM_ANNUAL", ""),
		PriceUniversityAnnual: getEnv("STRIPE_PRICE_UNIVERSITY_ANNUAL", ""),
		FrontendURL:           strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		CompletionAPIURL:      getEnv("COMPLETION_API_URL", "https://api.openai.com/v1"),
		CompletionAPIKey:      getEnv("COMPLETION_API_KEY", ""),
		RateLimitRPS:          rps,
		RateLimitBurst:        burst,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
