package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginAllowed(t *testing.T) {
	prod := CORSConfig{
		AllowedOrigins: []string{"https://app.careerpilot.io", "http://localhost:3000"},
		PreviewSuffix:  ".vercel.app",
		Production:     true,
	}
	dev := CORSConfig{Production: false}

	tests := []struct {
		name   string
		cfg    CORSConfig
		origin string
		want   bool
	}{
		{"dev echoes anything", dev, "http://localhost:5173", true},
		{"dev rejects empty origin", dev, "", false},
		{"prod exact match", prod, "https://app.careerpilot.io", true},
		{"prod exact match case-insensitive", prod, "HTTPS://APP.CAREERPILOT.IO", true},
		{"prod localhost allowlisted", prod, "http://localhost:3000", true},
		{"prod rejects unknown", prod, "https://evil.example.com", false},
		{"prod preview suffix", prod, "https://pr-42-careerpilot.vercel.app", true},
		{"prod preview must be https", prod, "http://pr-42-careerpilot.vercel.app", false},
		{"prod suffix on wrong domain", prod, "https://vercel.app.evil.com", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, originAllowed(tc.cfg, tc.origin))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	mw := CORS(CORSConfig{
		AllowedOrigins: []string{"https://app.careerpilot.io"},
		Production:     true,
	})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot) // must not be reached on preflight
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/goals", nil)
	req.Header.Set("Origin", "https://app.careerpilot.io")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "https://app.careerpilot.io", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOriginGetsNoHeaders(t *testing.T) {
	mw := CORS(CORSConfig{
		AllowedOrigins: []string{"https://app.careerpilot.io"},
		Production:     true,
	})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
