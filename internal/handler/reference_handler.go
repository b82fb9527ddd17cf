package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniflow/uniflow-backend/internal/response"
	"github.com/uniflow/uniflow-backend/internal/service"
)

// ReferenceHandler serves the read-only reference data the timetable is built from.
type ReferenceHandler struct {
	referenceService *service.ReferenceService
}

func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// GET /api/v1/admin/rooms
func (h *ReferenceHandler) ListRooms(c *gin.Context) {
	rooms, err := h.referenceService.ListRooms(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

// GET /api/v1/admin/teachers
func (h *ReferenceHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.referenceService.ListTeachers(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"teachers": teachers})
}

// GET /api/v1/admin/groups
func (h *ReferenceHandler) ListGroups(c *gin.Context) {
	groups, err := h.referenceService.ListGroups(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}

// GET /api/v1/admin/modules
func (h *ReferenceHandler) ListModules(c *gin.Context) {
	modules, err := h.referenceService.ListModules(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// GET /api/v1/admin/timeslots
func (h *ReferenceHandler) ListTimeslots(c *gin.Context) {
	timeslots, err := h.referenceService.ListTimeslots(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"timeslots": timeslots})
}

// GET /api/v1/admin/groups/:id/students
func (h *ReferenceHandler) ListGroupStudents(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	students, err := h.referenceService.ListGroupStudents(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}
