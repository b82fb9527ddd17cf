package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/service"
	ws "github.com/uniflow/uniflow-backend/internal/websocket"
)

func TestTimetableStream(t *testing.T) {
	bus := service.NewLocalEventBus()
	h := NewWSHandler(bus, zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/ws/v1/timetable/stream", h.TimetableStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/timetable/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ready ws.ReadyResponse
	require.NoError(t, conn.ReadJSON(&ready))
	assert.Equal(t, ws.EventReady, ready.Event)

	require.NoError(t, bus.Publish(context.Background(), model.TimetableEvent{
		Type:        model.EventSessionCreated,
		SessionID:   7,
		TimeslotIDs: []int{3},
	}))

	var got ws.TimetableResponse
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, ws.EventTimetable, got.Event)
	assert.Equal(t, model.EventSessionCreated, got.Data.Type)
	assert.Equal(t, 7, got.Data.SessionID)
	assert.Equal(t, []int{3}, got.Data.TimeslotIDs)

	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}))
	var pong ws.PongResponse
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.EventPong, pong.Event)
}

func TestBuildUpgraderOrigins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		ok      bool
	}{
		{"allow all when unset", nil, "https://evil.example", true},
		{"listed origin", []string{"https://registrar.example"}, "https://REGISTRAR.example", true},
		{"unlisted origin", []string{"https://registrar.example"}, "https://evil.example", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			up := buildUpgrader(tc.allowed)
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Origin", tc.origin)
			assert.Equal(t, tc.ok, up.CheckOrigin(req))
		})
	}
}
