package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/uniflow/uniflow-backend/internal/model"
)

func bindSession(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req model.SessionRequest
	return Bind(c, &req)
}

func TestBindSessionRequest(t *testing.T) {
	Setup()

	t.Run("valid", func(t *testing.T) {
		fields := bindSession(t, `{"type":"TUTORIAL","module_id":1,"teacher_id":2,"group_id":3,"room_id":4,"timeslot_id":5}`)
		assert.Nil(t, fields)
	})

	t.Run("unknown session type", func(t *testing.T) {
		fields := bindSession(t, `{"type":"SEMINAR","module_id":1,"teacher_id":2,"group_id":3,"room_id":4,"timeslot_id":5}`)
		assert.Equal(t, "type must be one of LECTURE, TUTORIAL or PRACTICAL", fields["type"])
	})

	t.Run("missing references use json names", func(t *testing.T) {
		fields := bindSession(t, `{"type":"LECTURE"}`)
		assert.Contains(t, fields, "module_id")
		assert.Contains(t, fields, "timeslot_id")
	})

	t.Run("malformed json", func(t *testing.T) {
		fields := bindSession(t, `{"type":`)
		assert.Contains(t, fields, "detail")
	})
}
