package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/middleware"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/response"
	"github.com/uniflow/uniflow-backend/internal/service"
)

// AuditRequester queues an asynchronous conflict audit.
type AuditRequester interface {
	RequestAudit(ctx context.Context, requestedBy string) error
}

// ReportHandler serves timetable conflict reports.
type ReportHandler struct {
	reportService *service.ConflictReportService
	cache         service.ReportCache
	audits        AuditRequester
	log           zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ConflictReportService, cache service.ReportCache, audits AuditRequester, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		cache:         cache,
		audits:        audits,
		log:           log.With().Str("component", "report_handler").Logger(),
	}
}

// GetConflictReport godoc
// GET /api/v1/admin/reports/conflicts
// Audits the whole timetable synchronously and returns the fresh report.
func (h *ReportHandler) GetConflictReport(c *gin.Context) {
	report, err := h.reportService.Generate(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}

	if err := h.cache.SaveLatest(c.Request.Context(), report); err != nil {
		h.log.Warn().Err(err).Msg("Failed to cache conflict report")
	}

	response.Success(c, http.StatusOK, gin.H{"report": report.View()})
}

// GetLatestConflictReport godoc
// GET /api/v1/admin/reports/conflicts/latest
// Returns the report produced by the most recent audit.
func (h *ReportHandler) GetLatestConflictReport(c *gin.Context) {
	report, err := h.cache.Latest(c.Request.Context())
	if errors.Is(err, service.ErrNoCachedReport) {
		response.Fail(c, http.StatusNotFound, response.ErrReportNotReady)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read cached conflict report")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report.View()})
}

// RefreshConflictReport godoc
// POST /api/v1/admin/reports/conflicts/refresh
// Queues a background audit; subscribers receive audit_completed when done.
func (h *ReportHandler) RefreshConflictReport(c *gin.Context) {
	requestedBy := "anonymous"
	if claims := middleware.GetClaims(c); claims != nil && claims.Subject != "" {
		requestedBy = claims.Subject
	}

	if err := h.audits.RequestAudit(c.Request.Context(), requestedBy); err != nil {
		h.log.Error().Err(err).Msg("Failed to queue conflict audit")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"message": "conflict audit queued", "event": model.EventAuditCompleted})
}
