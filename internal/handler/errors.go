package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/uniflow/uniflow-backend/internal/response"
	"github.com/uniflow/uniflow-backend/internal/service"
)

// kindStatus maps each scheduling error kind to its HTTP status and code.
var kindStatus = map[service.Kind]struct {
	status int
	code   response.ErrCode
}{
	service.KindTeacherConflict:           {http.StatusConflict, response.ErrTeacherConflict},
	service.KindGroupConflict:             {http.StatusConflict, response.ErrGroupConflict},
	service.KindRoomConflict:              {http.StatusConflict, response.ErrRoomConflict},
	service.KindCapacityConflict:          {http.StatusConflict, response.ErrCapacityConflict},
	service.KindStudentOverlapConflict:    {http.StatusConflict, response.ErrStudentOverlapConflict},
	service.KindEnrollmentOverlapConflict: {http.StatusConflict, response.ErrEnrollmentOverlapConflict},
	service.KindReferenceNotFound:         {http.StatusNotFound, response.ErrReferenceNotFound},
	service.KindAlreadyEnrolled:           {http.StatusConflict, response.ErrAlreadyEnrolled},
	service.KindSchedulingBusy:            {http.StatusLocked, response.ErrSchedulingBusy},
	service.KindInvalidRequest:            {http.StatusBadRequest, response.ErrValidation},
	service.KindInternalStoreFailure:      {http.StatusInternalServerError, response.ErrInternal},
}

// failService writes the envelope for an error returned by a service.
// Store failures never leak their cause to the client.
func failService(c *gin.Context, err error) {
	kind := service.KindOf(err)
	m, ok := kindStatus[kind]
	if !ok {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	switch {
	case kind.IsConflict():
		ce, _ := service.AsConflict(err)
		response.FailWithDetail(c, m.status, m.code, ce.Message)
	case kind == service.KindReferenceNotFound:
		var rnf *service.ReferenceNotFoundError
		if errors.As(err, &rnf) {
			response.FailWithDetail(c, m.status, m.code, rnf.Error())
			return
		}
		response.Fail(c, m.status, m.code)
	case kind == service.KindInternalStoreFailure:
		_ = c.Error(err)
		response.Fail(c, m.status, m.code)
	default:
		response.FailWithDetail(c, m.status, m.code, err.Error())
	}
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
