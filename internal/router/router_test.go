package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/handler"
	"github.com/uniflow/uniflow-backend/internal/lock"
	"github.com/uniflow/uniflow-backend/internal/middleware"
	"github.com/uniflow/uniflow-backend/internal/repository/memory"
	"github.com/uniflow/uniflow-backend/internal/service"
)

func newTestRouter(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	log := zerolog.Nop()
	store := memory.New()
	events := service.NewLocalEventBus()
	conflicts := service.NewConflictValidator(store, log)
	cache := service.NewMemoryReportCache()

	handlers := &Handlers{
		Session:    handler.NewSessionHandler(service.NewSessionService(store, conflicts, lock.Nop{}, events, log)),
		Enrollment: handler.NewEnrollmentHandler(service.NewEnrollmentService(store, conflicts, lock.Nop{}, events, log)),
		Reference:  handler.NewReferenceHandler(service.NewReferenceService(store)),
		Report:     handler.NewReportHandler(service.NewConflictReportService(store, log), cache, nil, log),
		WS:         handler.NewWSHandler(events, log, nil),
		System:     handler.NewSystemHandler(nil, config.StoreDriverMemory, nil, log),
	}
	cfg := &config.Config{GinMode: gin.TestMode, RateLimitPerMinute: 1000}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return SetupRouter(ctx, middleware.NewTokenVerifier(secret), handlers, cfg)
}

func TestSetupRouter(t *testing.T) {
	tests := []struct {
		name         string
		secret       string
		path         string
		status       int
		cacheControl string
	}{
		{"health is public", "s3cret", "/health", http.StatusOK, ""},
		{"admin requires token when guard enabled", "s3cret", "/api/v1/admin/rooms", http.StatusUnauthorized, ""},
		{"websocket requires token when guard enabled", "s3cret", "/ws/v1/timetable/stream", http.StatusUnauthorized, ""},
		{"reference lists are cacheable", "", "/api/v1/admin/rooms", http.StatusOK, "private, max-age=60"},
		{"sessions are never cached", "", "/api/v1/admin/sessions", http.StatusOK, "no-store"},
		{"latest report before first audit", "", "/api/v1/admin/reports/conflicts/latest", http.StatusNotFound, "no-store"},
		{"fresh report", "", "/api/v1/admin/reports/conflicts", http.StatusOK, "no-store"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t, tc.secret)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tc.cacheControl != "" {
				assert.Equal(t, tc.cacheControl, w.Header().Get("Cache-Control"))
			}
		})
	}
}
