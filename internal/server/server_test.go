package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiwei-liang/geofile-go/internal/agent"
	"github.com/zhiwei-liang/geofile-go/internal/geodata"
	"github.com/zhiwei-liang/geofile-go/internal/metrics"
	"github.com/zhiwei-liang/geofile-go/internal/notify"
)

type fakeModel struct {
	response string
}

func (m *fakeModel) GenerateWithSystem(context.Context, string, string) (string, error) {
	return m.response, nil
}

func (m *fakeModel) Stream(_ context.Context, _, _ string, fn func(chunk string) error) (string, error) {
	for _, c := range strings.Split(m.response, " ") {
		if err := fn(c); err != nil {
			return "", err
		}
	}
	return m.response, nil
}

func newTestServer(t *testing.T, model agent.Generator) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector := metrics.NewCollector()
	hub := notify.NewHub(logger)
	notifier := notify.Multi{hub}

	dispatcher := geodata.NewDispatcher(notifier, logger, collector)
	assistant := agent.New(nil, model, nil, dispatcher, notifier, collector, logger)

	s := New(":0", dispatcher, assistant, nil, hub, collector, logger)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decodeEnvelope(t *testing.T, resp *http.Response) geodata.Envelope {
	t.Helper()
	defer resp.Body.Close()
	var env geodata.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestProcessRoute(t *testing.T) {
	srv := newTestServer(t, nil)

	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("lng,lat,name\n116.4,39.9,A\n121.5,31.2,B\n"), 0644))

	payload, _ := json.Marshal(map[string]string{"file_path": path})
	resp, err := http.Post(srv.URL+"/process", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "success", env.Status)
	assert.Contains(t, env.Data, "- geodata processing complete: points.csv")
}

func TestProcessRouteErrorEnvelope(t *testing.T) {
	srv := newTestServer(t, nil)

	payload, _ := json.Marshal(map[string]string{
		"file_path": filepath.Join(t.TempDir(), "missing.shp"),
	})
	resp, err := http.Post(srv.URL+"/process", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "file_not_found", env.Code)
}

func TestProcessRouteValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/process", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "invalid_value", env.Code)
}

func TestChatRoute(t *testing.T) {
	srv := newTestServer(t, &fakeModel{response: "hello from the model"})

	resp, err := http.Get(srv.URL + "/chat?q=hi")
	require.NoError(t, err)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "hello from the model", env.Data)
}

func TestChatRouteWithoutModel(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/chat?q=hi")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.Equal(t, "chat_failure", env.Code)
}

func TestChatRouteRequiresQuery(t *testing.T) {
	srv := newTestServer(t, &fakeModel{response: "x"})

	resp, err := http.Get(srv.URL + "/chat")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestChatStreamRoute(t *testing.T) {
	srv := newTestServer(t, &fakeModel{response: "two chunks"})

	resp, err := http.Get(srv.URL + "/chat/stream?q=hi")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `data: {"content":"two"}`)
	assert.Contains(t, text, `data: {"content":"chunks"}`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "data: [DONE]"))
}

func TestMemoryRoutesUnavailable(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/memory", "application/json",
		strings.NewReader(`{"content":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/memory/query", "application/json",
		strings.NewReader(`{"question":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}

func TestStatsRoute(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap metrics.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestWebSocketReceivesPipelineMessages(t *testing.T) {
	srv := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Round-trip an echo so the connection is registered before the
	// pipeline starts broadcasting.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, echo, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "Response: ping", string(echo))

	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("lng,lat\n116.4,39.9\n"), 0644))

	payload, _ := json.Marshal(map[string]string{"file_path": path})
	resp, err := http.Post(srv.URL+"/process", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()

	// The first broadcast is the load milestone.
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "loaded points.csv")
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/chat", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
