package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/response"
	"github.com/uniflow/uniflow-backend/internal/service"
	"github.com/uniflow/uniflow-backend/internal/validator"
)

// EnrollmentHandler handles student enrollment into modules.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// Enroll godoc
// POST /api/v1/admin/enrollments
// Enrolls a student unless one of the module's sessions collides with a
// class the student already attends.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req model.EnrollRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"enrollment": enrollment})
}

// DeleteEnrollment godoc
// DELETE /api/v1/admin/enrollments/:id
func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.enrollmentService.Delete(c.Request.Context(), id); err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "enrollment deleted successfully"})
}

// ListStudentEnrollments godoc
// GET /api/v1/admin/students/:id/enrollments
func (h *EnrollmentHandler) ListStudentEnrollments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	enrollments, err := h.enrollmentService.ListByStudent(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// ListModuleEnrollments godoc
// GET /api/v1/admin/modules/:id/enrollments
func (h *EnrollmentHandler) ListModuleEnrollments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	enrollments, err := h.enrollmentService.ListByModule(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}
