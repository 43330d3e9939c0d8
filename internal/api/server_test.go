package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slsksticky/slsksticky/internal/config"
	"github.com/slsksticky/slsksticky/internal/health"
	"github.com/slsksticky/slsksticky/internal/pkg/logger"
)

func testServer(t *testing.T) (*Server, *health.State) {
	t.Helper()
	state := health.NewState()
	cfg := &config.APIConfig{Enabled: true, Port: 8080}
	return New(cfg, state, logger.New(logger.Config{Level: "error"})), state
}

func snapshot(healthy bool) health.Snapshot {
	now := time.Now().UTC()
	return health.Snapshot{
		Healthy: healthy,
		Services: health.Services{
			Gluetun: health.GluetunStatus{Connected: healthy, Port: 51820},
			Slskd:   health.SlskdStatus{Connected: healthy, PortSynced: healthy},
		},
		Uptime:    "5m0s",
		LastCheck: now,
		Timestamp: now,
	}
}

func TestHandleHealthHealthy(t *testing.T) {
	server, state := testServer(t)
	state.Update(snapshot(true))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope ApiResponse
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["healthy"])

	services := data["services"].(map[string]any)
	gluetun := services["gluetun"].(map[string]any)
	assert.Equal(t, float64(51820), gluetun["port"])
}

func TestHandleHealthUnhealthy(t *testing.T) {
	server, state := testServer(t)
	snap := snapshot(false)
	snap.LastError = "gluetun unreachable: timeout"
	state.Update(snap)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope ApiResponse
	require.NoError(t, json.Unmarshal(body, &envelope))
	data := envelope.Data.(map[string]any)
	assert.Equal(t, false, data["healthy"])
	assert.Equal(t, "gluetun unreachable: timeout", data["last_error"])
}

func TestUnknownRouteReturnsEnvelope(t *testing.T) {
	server, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	resp, err := server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope ApiResponse
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, http.StatusNotFound, envelope.Error.Code)
}
