package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/cors"
)

// CORSConfig controls which browser origins may call the API.
type CORSConfig struct {
	// AllowedOrigins is the exact-match allowlist used in production.
	AllowedOrigins []string
	// PreviewSuffix, when set, additionally allows any https origin whose
	// host ends with this suffix (deploy previews).
	PreviewSuffix string
	// Production switches from echo-everything (local dev) to the allowlist.
	Production bool
}

// CORS returns the CORS middleware for the API. Outside production any
// origin is reflected back so local frontends on arbitrary ports work.
func CORS(cfg CORSConfig) func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return originAllowed(cfg, origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

func originAllowed(cfg CORSConfig, origin string) bool {
	if origin == "" {
		return false
	}
	if !cfg.Production {
		return true
	}
	for _, allowed := range cfg.AllowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	if cfg.PreviewSuffix != "" {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme != "https" {
			return false
		}
		return strings.HasSuffix(u.Hostname(), cfg.PreviewSuffix)
	}
	return false
}
