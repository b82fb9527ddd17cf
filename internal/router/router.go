package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/handler"
	"github.com/uniflow/uniflow-backend/internal/middleware"
	"github.com/uniflow/uniflow-backend/internal/response"
)

// referenceMaxAge is how long clients may cache reference lists.
const referenceMaxAge = 60

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session    *handler.SessionHandler
	Enrollment *handler.EnrollmentHandler
	Reference  *handler.ReferenceHandler
	Report     *handler.ReportHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background middleware state such as the rate limiter sweeper.
func SetupRouter(
	ctx context.Context,
	verifier *middleware.TokenVerifier,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", handlers.System.Health)

	// ─── 1. WebSocket Group (token in query string) ────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSJWT(verifier))
	{
		ws.GET("/timetable/stream", handlers.WS.TimetableStream)
	}

	// ─── 2. Admin Group (JWT + rate limit) ─────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireJWT(verifier))
	if cfg.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute)
		adminAPI.Use(limiter.Middleware())
	}
	{
		// Sessions
		sessions := adminAPI.Group("/sessions")
		sessions.Use(middleware.NoStore())
		sessions.GET("", handlers.Session.ListSessions)
		sessions.POST("", handlers.Session.CreateSession)
		sessions.POST("/validate", handlers.Session.ValidateSession)
		sessions.GET("/:id", handlers.Session.GetSession)
		sessions.PUT("/:id", handlers.Session.UpdateSession)
		sessions.DELETE("/:id", handlers.Session.DeleteSession)

		adminAPI.GET("/groups/:id/sessions", middleware.NoStore(), handlers.Session.ListGroupSessions)
		adminAPI.GET("/teachers/:id/sessions", middleware.NoStore(), handlers.Session.ListTeacherSessions)

		// Enrollments
		adminAPI.POST("/enrollments", handlers.Enrollment.Enroll)
		adminAPI.DELETE("/enrollments/:id", handlers.Enrollment.DeleteEnrollment)
		adminAPI.GET("/students/:id/enrollments", middleware.NoStore(), handlers.Enrollment.ListStudentEnrollments)
		adminAPI.GET("/modules/:id/enrollments", middleware.NoStore(), handlers.Enrollment.ListModuleEnrollments)

		// Conflict reports
		reports := adminAPI.Group("/reports/conflicts")
		reports.Use(middleware.NoStore())
		reports.GET("", handlers.Report.GetConflictReport)
		reports.GET("/latest", handlers.Report.GetLatestConflictReport)
		reports.POST("/refresh", handlers.Report.RefreshConflictReport)

		// Reference data (read-only, cacheable)
		refs := adminAPI.Group("")
		refs.Use(middleware.CacheControl(referenceMaxAge))
		refs.GET("/rooms", handlers.Reference.ListRooms)
		refs.GET("/teachers", handlers.Reference.ListTeachers)
		refs.GET("/groups", handlers.Reference.ListGroups)
		refs.GET("/modules", handlers.Reference.ListModules)
		refs.GET("/timeslots", handlers.Reference.ListTimeslots)
		refs.GET("/groups/:id/students", handlers.Reference.ListGroupStudents)

		// System monitoring (SSE)
		adminAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}
