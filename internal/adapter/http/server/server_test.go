package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/govv-tracker/config"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/export"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/filestore"
	"github.com/Temutjin2k/govv-tracker/internal/adapter/http/handler"
	redisadapter "github.com/Temutjin2k/govv-tracker/internal/adapter/redis"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/internal/service/activity"
	"github.com/Temutjin2k/govv-tracker/internal/service/auth"
	"github.com/Temutjin2k/govv-tracker/internal/service/gamification"
	"github.com/Temutjin2k/govv-tracker/internal/service/tracker"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	ws "github.com/Temutjin2k/govv-tracker/pkg/wshub"
)

type testEnv struct {
	srv    *httptest.Server
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.New(io.Discard, "test", logger.LevelError)

	store, err := filestore.Open(filepath.Join(t.TempDir(), "activities.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	activities := activity.NewService(store, gamification.New(types.PolicyBonus), log,
		activity.WithExporter(export.New()))

	hub := ws.NewConnHub(log)
	t.Cleanup(hub.Close)

	manager := tracker.NewManager(tracker.Config{
		Simulated:      tracker.SimulatedConfig{Interval: time.Hour, BaseLat: 12.9716, BaseLng: 77.5946, MaxStep: 0.00025},
		LiveEnabled:    true,
		LiveAttachWait: time.Second,
	}, activities, redisadapter.NewBus(nil, hub, log), nil, log)
	t.Cleanup(manager.Close)
	tokens := auth.NewTokenService("secret")

	cfg := config.Config{Mode: types.TrackerService}
	api, err := New(cfg, &Handlers{
		Health:   handler.NewHealth("test", "file", log),
		Activity: handler.NewActivity(activities, log),
		Session:  handler.NewSession(manager, log),
		Live:     handler.NewLive(manager, hub, "test", log),
	}, tokens, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header http.Header) (*http.Response, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/health", "/api/health"} {
		resp, body := env.do(t, http.MethodGet, path, nil, nil)
		if resp.StatusCode != http.StatusOK || body["status"] != "available" {
			t.Fatalf("%s: status %d body %v", path, resp.StatusCode, body)
		}
		if resp.Header.Get("X-Request-ID") == "" {
			t.Fatalf("%s: missing request id", path)
		}
	}
}

func TestLiveRideLifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/sessions", map[string]any{"source": "live", "name": "Commute"}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %v", resp.StatusCode, body)
	}
	id := body["session"].(map[string]any)["id"].(string)

	// pushing before start is rejected
	resp, _ = env.do(t, http.MethodPost, "/api/sessions/"+id+"/samples", map[string]any{"lat": 12.9716, "lng": 77.5946, "t": 1700000000}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("push while idle: %d", resp.StatusCode)
	}

	resp, body = env.do(t, http.MethodPost, "/api/sessions/"+id+"/start", nil, nil)
	if resp.StatusCode != http.StatusOK || body["applied"] != true {
		t.Fatalf("start: %d %v", resp.StatusCode, body)
	}

	for i, lat := range []float64{12.9716, 12.9726, 12.9736} {
		sample := map[string]any{"lat": lat, "lng": 77.5946, "t": 1700000000 + 30*i}
		resp, body = env.do(t, http.MethodPost, "/api/sessions/"+id+"/samples", sample, nil)
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("push %d: %d %v", i, resp.StatusCode, body)
		}
	}

	// same timestamp again
	resp, _ = env.do(t, http.MethodPost, "/api/sessions/"+id+"/samples", map[string]any{"lat": 12.9740, "lng": 77.5946, "t": 1700000060}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("non monotonic push: %d", resp.StatusCode)
	}

	resp, body = env.do(t, http.MethodPost, "/api/sessions/"+id+"/stop", nil, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("stop: %d %v", resp.StatusCode, body)
	}
	record := body["activity"].(map[string]any)
	activityID := record["id"].(string)
	if km := record["distance_km"].(float64); km < 0.2 || km > 0.25 {
		t.Fatalf("distance_km = %v", km)
	}
	if record["notes"] != "" || record["name"] != "Commute" {
		t.Fatalf("unexpected record %v", record)
	}

	resp, body = env.do(t, http.MethodGet, "/api/activities", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d", resp.StatusCode)
	}
	items := body["data"].(map[string]any)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("list returned %d items", len(items))
	}

	resp, body = env.do(t, http.MethodGet, "/api/standing", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("standing: %d", resp.StatusCode)
	}
	st := body["data"].(map[string]any)["standing"].(map[string]any)
	if st["total_rides"].(float64) != 1 || st["total_points"].(float64) != 12 {
		t.Fatalf("standing = %v", st)
	}

	resp, _ = env.do(t, http.MethodGet, "/api/activities/"+activityID+"/export?format=csv", nil, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "text/csv" {
		t.Fatalf("export: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	resp, _ = env.do(t, http.MethodGet, "/api/activities/"+activityID+"/export?format=csv", nil, http.Header{"If-None-Match": {etag}})
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional export: %d", resp.StatusCode)
	}

	resp, _ = env.do(t, http.MethodDelete, "/api/sessions/"+id, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodGet, "/api/sessions/"+id, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: %d", resp.StatusCode)
	}
}

func TestStopWithoutSamplesDiscards(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/api/sessions", map[string]any{"source": "live"}, nil)
	id := body["session"].(map[string]any)["id"].(string)

	env.do(t, http.MethodPost, "/api/sessions/"+id+"/start", nil, nil)

	resp, body := env.do(t, http.MethodPost, "/api/sessions/"+id+"/stop", nil, nil)
	if resp.StatusCode != http.StatusOK || body["discarded"] != true {
		t.Fatalf("stop: %d %v", resp.StatusCode, body)
	}
	if state := body["session"].(map[string]any)["state"]; state != "idle" {
		t.Fatalf("state = %v, want idle", state)
	}

	resp, body = env.do(t, http.MethodPost, "/api/sessions/"+id+"/pause", nil, nil)
	if resp.StatusCode != http.StatusOK || body["applied"] != false {
		t.Fatalf("pause on idle: %d %v", resp.StatusCode, body)
	}

	resp, _ = env.do(t, http.MethodPost, "/api/sessions/"+id+"/save", nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("save with nothing pending: %d", resp.StatusCode)
	}
}

func TestSessionOwnership(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.tokens.Issue("rider-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	owner := http.Header{"Authorization": {"Bearer " + token}}

	_, body := env.do(t, http.MethodPost, "/api/sessions", nil, owner)
	id := body["session"].(map[string]any)["id"].(string)
	if rider := body["session"].(map[string]any)["rider_id"]; rider != "rider-1" {
		t.Fatalf("rider_id = %v", rider)
	}

	resp, _ := env.do(t, http.MethodGet, "/api/sessions/"+id, nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("anonymous get: %d, want 403", resp.StatusCode)
	}

	resp, _ = env.do(t, http.MethodGet, "/api/sessions/"+id, nil, owner)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner get: %d", resp.StatusCode)
	}

	resp, _ = env.do(t, http.MethodGet, "/api/sessions/"+id, nil, http.Header{"Authorization": {"Bearer nope"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", resp.StatusCode)
	}
}

func TestCreateActivityValidation(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/activities", map[string]any{
		"name":       "",
		"start_time": "yesterday",
	}, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	fields := body["error"].(map[string]any)
	for _, f := range []string{"name", "start_time"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("missing error for %s in %v", f, fields)
		}
	}

	resp, _ = env.do(t, http.MethodPost, "/api/activities", map[string]any{"unknown": 1}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field: %d", resp.StatusCode)
	}

	resp, body = env.do(t, http.MethodPost, "/api/activities", map[string]any{
		"name":         "Morning loop",
		"start_time":   "2024-03-01T07:00:00Z",
		"distance_km":  6,
		"duration_sec": 1800,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %v", resp.StatusCode, body)
	}
	// bonus policy: floor(6*10) + 50
	if body["points_earned"].(float64) != 110 {
		t.Fatalf("points = %v", body["points_earned"])
	}

	resp, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/activities/%s/export?format=kml", body["id"]), nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unsupported format: %d", resp.StatusCode)
	}

	resp, _ = env.do(t, http.MethodGet, "/api/activities/missing", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing: %d", resp.StatusCode)
	}
}

func TestLiveViewerReceivesSamples(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/api/sessions", map[string]any{"source": "live"}, nil)
	id := body["session"].(map[string]any)["id"].(string)
	env.do(t, http.MethodPost, "/api/sessions/"+id+"/start", nil, nil)

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/sessions/" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read state: %v", err)
	}
	if msg["type"] != "state" || msg["state"] != "recording" {
		t.Fatalf("first message = %v", msg)
	}

	// one position over HTTP, one over the socket
	resp, _ := env.do(t, http.MethodPost, "/api/sessions/"+id+"/samples", map[string]any{"lat": 12.9716, "lng": 77.5946, "t": 1700000000}, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("push: %d", resp.StatusCode)
	}
	if err := conn.WriteJSON(map[string]any{"lat": 12.9726, "lng": 77.5946, "t": 1700000005}); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	for want := 1; want <= 2; want++ {
		msg = nil
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read sample %d: %v", want, err)
		}
		if msg["type"] != "sample" || msg["samples"].(float64) != float64(want) {
			t.Fatalf("sample %d = %v", want, msg)
		}
	}

	// a stale frame is answered with an error message on the same socket
	if err := conn.WriteJSON(map[string]any{"lat": 12.9730, "lng": 77.5946, "t": 1700000001}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	msg = nil
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read error: %v", err)
	}
	if msg["type"] != "error" {
		t.Fatalf("expected error message, got %v", msg)
	}
}
