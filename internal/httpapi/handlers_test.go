package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-dashboard/internal/agents"
	"voice-dashboard/internal/audit"
	"voice-dashboard/internal/calls"
	"voice-dashboard/internal/livecalls"
	"voice-dashboard/internal/liveusers"
	"voice-dashboard/internal/metrics"
	"voice-dashboard/internal/reporting"
	"voice-dashboard/internal/seed"
)

type harness struct {
	router    *gin.Engine
	handlers  Handlers
	calls     *calls.MemoryRepo
	auditRepo *audit.MemoryRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	agentRepo := agents.NewMemoryRepo()
	agentSvc := agents.NewService(agentRepo)
	callRepo := calls.NewMemoryRepo(agentRepo)
	auditRepo := audit.NewMemoryRepo()

	h := Handlers{
		Agents:    agentSvc,
		Calls:     calls.NewService(callRepo),
		Live:      livecalls.NewService(livecalls.NewMemoryRepo(), agentSvc),
		Reporting: reporting.NewService(reporting.NewMemoryRepo(callRepo)),
		LiveUsers: liveusers.NewClient("", time.Second),
		Seeder:    seed.NewService(seed.NewMemoryRepo(callRepo), ""),
		Audit:     audit.NewService(auditRepo),
		Metrics:   metrics.New(),
	}
	return &harness{handlers: h, calls: callRepo, auditRepo: auditRepo, router: h.router(nil)}
}

func (h Handlers) router(authMW gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	h.Register(r, authMW)
	return r
}

func (h *harness) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func TestUpsertAgent_CreateThenUpdate(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, http.MethodPost, "/agents/upsert", `{"agent_id":"a1","agent_name":"Ava","status":"inactive"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Agent created successfully", body["message"])
	assert.Equal(t, "a1", body["agent_id"])

	code, body = h.do(t, http.MethodPost, "/agents/upsert", `{"agent_id":"a1","agent_name":"Ava 2"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Agent updated successfully", body["message"])

	code, body = h.do(t, http.MethodGet, "/agents", "")
	require.Equal(t, http.StatusOK, code)
	list := body["agents"].([]any)
	require.Len(t, list, 1)
	a := list[0].(map[string]any)
	assert.Equal(t, "Ava 2", a["name"])
	// omitted status on update resets to active
	assert.Equal(t, "active", a["status"])
	assert.Equal(t, "Unknown", a["provider"])
	assert.Equal(t, "en-US", a["language"])
	assert.EqualValues(t, 1, a["maxConcurrentCalls"])

	evs := h.auditRepo.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, audit.EventTypeAgentCreated, evs[0].Type)
	assert.Equal(t, audit.EventTypeAgentUpdated, evs[1].Type)
}

func TestUpsertAgent_ValidationAndBadJSON(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, http.MethodPost, "/agents/upsert", `{"agent_id":"a1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]any{"error": "agent_id and agent_name are required"}, body)

	code, body = h.do(t, http.MethodPost, "/agents/upsert", `{"agent_id":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid json", body["error"])
}

func TestDeleteAgent(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, http.MethodDelete, "/agents", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "agent_id is required", body["error"])

	code, body = h.do(t, http.MethodDelete, "/agents?agent_id=ghost", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "agent not found", body["error"])

	h.do(t, http.MethodPost, "/agents/upsert", `{"agent_id":"a1","agent_name":"Ava"}`)
	code, body = h.do(t, http.MethodDelete, "/agents?agent_id=a1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Agent deleted successfully", body["message"])

	evs := h.auditRepo.Events()
	assert.Equal(t, audit.EventTypeAgentDeleted, evs[len(evs)-1].Type)
}

func TestCreateCall_AndHistory(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/agents/upsert", `{"agent_id":"a1","agent_name":"Ava"}`)

	code, body := h.do(t, http.MethodPost, "/calls/create", `{"call_id":"c1","agent_id":"a1","status":"completed","start_time":"2026-01-02T10:00:00Z","duration":120,"cost":0.1}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Call record created successfully", body["message"])
	assert.Equal(t, "c1", body["call_id"])

	code, body = h.do(t, http.MethodPost, "/calls/create", `{"call_id":"c2","agent_id":"zz","status":"failed","start_time":"2026-01-02T11:00:00Z"}`)
	require.Equal(t, http.StatusOK, code, body)

	code, body = h.do(t, http.MethodPost, "/calls/create", `{"call_id":"c3"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required fields: call_id, agent_id, status, start_time", body["error"])

	code, body = h.do(t, http.MethodGet, "/calls/history?limit=abc", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["total"])
	rows := body["calls"].([]any)
	first := rows[0].(map[string]any)
	second := rows[1].(map[string]any)
	assert.Equal(t, "c2", first["id"])
	assert.Equal(t, "zz", first["agent"])
	assert.Nil(t, first["direction"])
	assert.Equal(t, "Ava", second["agent"])
	assert.EqualValues(t, 0.1, second["cost"])

	code, body = h.do(t, http.MethodGet, "/calls/history?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["total"])
}

func TestUpdateCall_NullClearsOnlyThatField(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/calls/create", `{"call_id":"c1","agent_id":"a1","status":"completed","start_time":"2026-01-02T10:00:00Z","duration":60,"cost":0.05}`)

	code, body := h.do(t, http.MethodPatch, "/calls/update", `{"call_id":"c1","cost":null}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Call record updated successfully", body["message"])

	snap := h.calls.Snapshot()
	require.Len(t, snap, 1)
	assert.False(t, snap[0].Cost.Valid)
	require.NotNil(t, snap[0].Duration)
	assert.Equal(t, 60, *snap[0].Duration)

	code, body = h.do(t, http.MethodPatch, "/calls/update", `{"call_id":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No valid fields to update", body["error"])

	code, body = h.do(t, http.MethodPatch, "/calls/update", `{"status":"failed"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "call_id is required", body["error"])

	code, body = h.do(t, http.MethodPatch, "/calls/update", `{"call_id":"c1","drop_table":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "unknown field: drop_table", body["error"])

	code, _ = h.do(t, http.MethodPatch, "/calls/update", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLiveCalls_RoundTrip(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/agents/upsert", `{"agent_id":"a1","agent_name":"Ava"}`)

	code, body := h.do(t, http.MethodPost, "/calls/live/update", `{"call_id":"c1","agent_id":"a1","start_time":"2026-01-02T10:00:00Z"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Live call created successfully", body["message"])

	code, body = h.do(t, http.MethodPost, "/calls/live/update", `{"call_id":"c1","agent_id":"a1","start_time":"2026-01-02T10:00:00Z","current_duration":30}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Live call updated successfully", body["message"])

	code, body = h.do(t, http.MethodGet, "/calls/live", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
	lc := body["live_calls"].([]any)[0].(map[string]any)
	assert.Equal(t, "c1", lc["call_id"])
	assert.Equal(t, "Ava", lc["agent_name"])
	assert.EqualValues(t, 30, lc["current_duration"])

	for i := 0; i < 2; i++ {
		code, body = h.do(t, http.MethodPost, "/calls/live/end", `{"call_id":"c1"}`)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Live call ended and removed from tracking", body["message"])
	}

	code, body = h.do(t, http.MethodGet, "/calls/live", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []any{}, body["live_calls"])

	code, body = h.do(t, http.MethodPost, "/calls/live/update", `{"call_id":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "call_id, agent_id, and start_time are required", body["error"])
}

func TestStreamLiveCalls_SendsListing(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/calls/live/update", `{"call_id":"c1","agent_id":"a1","start_time":"2026-01-02T10:00:00Z"}`)
	h.handlers.StreamInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/calls/live/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	h.handlers.router(nil).ServeHTTP(w, req)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	out := w.Body.String()
	assert.Contains(t, out, "event:live_calls")
	assert.Contains(t, out, `"call_id":"c1"`)
	assert.Contains(t, out, `"agent_name":"Unknown Agent"`)
}

func TestStreamLiveCalls_OutlivesServerWriteTimeout(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/calls/live/update", `{"call_id":"c1","agent_id":"a1","start_time":"2026-01-02T10:00:00Z"}`)
	h.handlers.StreamInterval = 100 * time.Millisecond

	srv := httptest.NewUnstartedServer(h.handlers.router(nil))
	srv.Config.WriteTimeout = 300 * time.Millisecond
	srv.Start()
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/calls/live/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	start := time.Now()
	events := 0
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "event:live_calls") {
			events++
		}
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 800*time.Millisecond)
	assert.Greater(t, events, 5)
}

func TestDashboard_EmptyDayIsZero(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, http.MethodGet, "/dashboard/quick-stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"successRate": 0.0, "avgDuration": 0.0, "agentUtilization": 0.0}, body)

	code, body = h.do(t, http.MethodGet, "/dashboard/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["totalCalls"])

	code, body = h.do(t, http.MethodGet, "/dashboard/recent-activity", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["calls"])
}

func TestDashboard_RecentActivityCapsAtTen(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(t, http.MethodPost, "/seed", "")
	require.Equal(t, http.StatusOK, code)

	code, body := h.do(t, http.MethodGet, "/dashboard/recent-activity", "")
	require.Equal(t, http.StatusOK, code)
	rows := body["calls"].([]any)
	require.Len(t, rows, 10)

	prev := ""
	for _, r := range rows {
		st := r.(map[string]any)["start_time"].(string)
		if prev != "" {
			pt, _ := time.Parse(time.RFC3339Nano, prev)
			ct, _ := time.Parse(time.RFC3339Nano, st)
			assert.False(t, ct.After(pt), "not descending: %s after %s", st, prev)
		}
		prev = st
	}

	code, body = h.do(t, http.MethodGet, "/dashboard/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 100, body["totalCalls"])
}

func TestSeed_RequiresSecretWhenConfigured(t *testing.T) {
	h := newHarness(t)
	h.handlers.Seeder = seed.NewService(seed.NewMemoryRepo(h.calls), "s3cret")
	h.router = h.handlers.router(nil)

	code, body := h.do(t, http.MethodPost, "/seed?secret=nope", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, map[string]any{"error": "Unauthorized"}, body)

	code, body = h.do(t, http.MethodPost, "/seed?secret=s3cret", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Data seeded successfully", body["message"])
	assert.Equal(t, map[string]any{"calls": 100.0, "usageHistory": 50.0, "payments": 20.0}, body["summary"])
}

func TestLiveUsers_UnconfiguredFails(t *testing.T) {
	h := newHarness(t)
	code, body := h.do(t, http.MethodGet, "/live-users", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, 0, body["liveUsers"])
	assert.Equal(t, map[string]any{}, body["byAgent"])
	assert.Equal(t, liveusers.ErrNotConfigured.Error(), body["error"])
}

func TestLiveUsers_Proxies(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"liveUsers":3,"byAgent":{"a1":3}}`))
	}))
	defer backend.Close()

	h := newHarness(t)
	h.handlers.LiveUsers = liveusers.NewClient(backend.URL, time.Second)
	h.router = h.handlers.router(nil)

	code, body := h.do(t, http.MethodGet, "/live-users", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"success": true, "liveUsers": 3.0, "byAgent": map[string]any{"a1": 3.0}}, body)
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	code, body := h.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	h.handlers.Health = func(context.Context) error { return errors.New("db down") }
	h.router = h.handlers.router(nil)
	code, body = h.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, map[string]any{"status": "degraded", "error": "db down"}, body)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/calls/live", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "live_calls_tracked 0"))
}
