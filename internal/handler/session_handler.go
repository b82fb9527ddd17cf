package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/response"
	"github.com/uniflow/uniflow-backend/internal/service"
	"github.com/uniflow/uniflow-backend/internal/validator"
)

// SessionHandler handles admin-facing session scheduling.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// ListSessions godoc
// GET /api/v1/admin/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession godoc
// GET /api/v1/admin/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	sess, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// CreateSession godoc
// POST /api/v1/admin/sessions
// Schedules a new session. Rejected with 409 and the conflict detail when
// the teacher, group, room, capacity or student checks fail.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.SessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.Create(c.Request.Context(), req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": sess})
}

// UpdateSession godoc
// PUT /api/v1/admin/sessions/:id
// Moves or reassigns a session. The session never conflicts with itself.
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.SessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.Update(c.Request.Context(), id, req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// DeleteSession godoc
// DELETE /api/v1/admin/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), id); err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "session deleted successfully"})
}

// ValidateSession godoc
// POST /api/v1/admin/sessions/validate
// Dry-run admission check. Responds 200 with valid=true, or with the same
// error envelope a real create would produce.
func (h *SessionHandler) ValidateSession(c *gin.Context) {
	var req model.ValidateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.Validate(c.Request.Context(), req); err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": true})
}

// ListGroupSessions godoc
// GET /api/v1/admin/groups/:id/sessions
func (h *SessionHandler) ListGroupSessions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	sessions, err := h.sessionService.ListByGroup(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// ListTeacherSessions godoc
// GET /api/v1/admin/teachers/:id/sessions
func (h *SessionHandler) ListTeacherSessions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	sessions, err := h.sessionService.ListByTeacher(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}
