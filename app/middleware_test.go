package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBareApplication(cfg *Config) *application {
	return &application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

func TestRecoverPanic(t *testing.T) {
	app := newBareApplication(&Config{})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	middleware := app.recoverPanic(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)

	assert.Equal(t, res.Code, http.StatusInternalServerError)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestRequireEditor(t *testing.T) {
	app := newBareApplication(&Config{EditorToken: "correct-horse"})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := app.authenticate(app.requireEditor(handler))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "No Authorization Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Token",
			authHeader:     "Bearer battery-staple",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Header",
			authHeader:     "correct-horse",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Token",
			authHeader:     "Bearer correct-horse",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			res := httptest.NewRecorder()

			middleware.ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)
		})
	}
}

func TestRequireEditorWithEmptyTokenConfig(t *testing.T) {
	// an unset editor token must not open the editor routes
	app := newBareApplication(&Config{EditorToken: ""})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := app.authenticate(app.requireEditor(handler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ")

	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRateLimit(t *testing.T) {
	app := newBareApplication(&Config{
		RateLimitRPS:     2,
		RateLimitBurst:   4,
		RateLimitEnabled: true,
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := app.rateLimit(handler)

	server := httptest.NewServer(middleware)
	defer server.Close()

	tests := []struct {
		name           string
		requests       int
		expectedStatus int
	}{
		{
			name:           "Within Limit",
			requests:       4,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Over Limit",
			requests:       6,
			expectedStatus: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lastStatusCode int

			for i := 0; i < tt.requests; i++ {
				res, err := http.Get(server.URL)
				assert.NoError(t, err)

				lastStatusCode = res.StatusCode
			}

			assert.Equal(t, tt.expectedStatus, lastStatusCode)
		})
	}
}

func TestEnableCORS(t *testing.T) {
	app := newBareApplication(&Config{
		TrustedOrigins: []string{"http://example.com"},
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := app.enableCORS(handler)

	tests := []struct {
		name            string
		origin          string
		method          string
		preflightMethod string
		wantAllowOrigin string
	}{
		{
			name:            "Trusted Origin",
			origin:          "http://example.com",
			method:          http.MethodGet,
			wantAllowOrigin: "http://example.com",
		},
		{
			name:            "Trusted Origin Preflight",
			origin:          "http://example.com",
			method:          http.MethodOptions,
			preflightMethod: http.MethodPut,
			wantAllowOrigin: "http://example.com",
		},
		{
			name:            "Untrusted Origin",
			origin:          "http://invalid.com",
			method:          http.MethodGet,
			wantAllowOrigin: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflightMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tt.preflightMethod)
			}

			res := httptest.NewRecorder()

			middleware.ServeHTTP(res, req)

			assert.Equal(t, http.StatusOK, res.Code)
			assert.Equal(t, tt.wantAllowOrigin, res.Header().Get("Access-Control-Allow-Origin"))

			if tt.preflightMethod != "" {
				assert.Equal(t, "OPTIONS, PUT, PATCH, DELETE", res.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "Content-Type, Authorization", res.Header().Get("Access-Control-Allow-Headers"))
			} else {
				assert.Empty(t, res.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}
