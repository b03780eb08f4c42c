package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// logEntry decodes the single access log line in buf.
func logEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not one JSON entry: %v\n%s", err, buf.String())
	}
	return entry
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"none":  LogLevelNone,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelTable_LongestPrefix(t *testing.T) {
	table := NewLevelTable(map[string]string{
		"/api":         "warn",
		"/api/heatmap": "debug",
		"/health":      "none",
	})

	tests := []struct {
		path string
		want slog.Level
	}{
		{"/api/arrivals", slog.LevelWarn},
		{"/api/heatmap", slog.LevelDebug},
		{"/health", LogLevelNone},
		{"/healthz", slog.LevelInfo},
		{"/", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := table.Level(tt.path); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLevelTable_Update(t *testing.T) {
	table := NewLevelTable(nil)
	if table.Level("/health") != slog.LevelInfo {
		t.Fatal("empty table should default to info")
	}
	table.Update(map[string]string{"/health": "none"})
	if table.Level("/health") != LogLevelNone {
		t.Error("update not applied")
	}
}

func TestLogging_EntryFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestID(Logging(logger, AccessLog{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	})))

	req := httptest.NewRequest("GET", "/api/nowhere", nil)
	req.RemoteAddr = "192.0.2.7:5123"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := logEntry(t, &buf)
	want := map[string]any{
		"msg":       "request",
		"level":     "INFO",
		"method":    "GET",
		"path":      "/api/nowhere",
		"endpoint":  "/api/nowhere",
		"status":    float64(404),
		"bytes":     float64(7),
		"client_ip": "192.0.2.7",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
	if _, ok := entry["latency_ms"]; !ok {
		t.Error("expected latency_ms")
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("expected request_id from the RequestID middleware")
	}
}

func TestLogging_FirstStatusWins(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logging(logger, AccessLog{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/road-closure-impact", nil))

	if got := logEntry(t, &buf)["status"]; got != float64(422) {
		t.Errorf("status = %v, want 422", got)
	}
}

func TestLogging_EndpointAndClientResolvers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logging(logger, AccessLog{
		Endpoint: func(string) string { return "unmatched" },
		ClientIP: func(r *http.Request) string { return r.Header.Get("X-Forwarded-For") },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/wp-admin/setup.php", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := logEntry(t, &buf)
	if entry["endpoint"] != "unmatched" {
		t.Errorf("endpoint = %v, want unmatched", entry["endpoint"])
	}
	if entry["client_ip"] != "203.0.113.9" {
		t.Errorf("client_ip = %v, want the resolved client", entry["client_ip"])
	}
}

func TestLogging_LevelPerEndpoint(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	table := NewLevelTable(map[string]string{"/health": "none", "/api/heatmap": "debug", "/api/road-closure-impact": "warn"})

	var served int
	handler := Logging(logger, AccessLog{Level: table.Level})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
	}))

	for _, path := range []string{"/health", "/api/heatmap"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for none and below-threshold levels, got %s", buf.String())
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/road-closure-impact", nil))
	if got := logEntry(t, &buf)["level"]; got != "WARN" {
		t.Errorf("level = %v, want WARN", got)
	}
	if served != 3 {
		t.Errorf("handler served %d requests, want 3", served)
	}
}

func TestLogging_BodyCapture(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	handler := Logging(logger, AccessLog{BodyLogging: true, MaxBodyLogBytes: 256})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen = string(b)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"road_id":"oxford_road"}`))
		}))

	body := `{"road_id":"oxford_road","duration_hours":2}`
	req := httptest.NewRequest("POST", "/api/road-closure-impact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != body {
		t.Errorf("handler read %q, want the full body", seen)
	}
	entry := logEntry(t, &buf)
	if entry["request_body"] != body {
		t.Errorf("request_body = %v", entry["request_body"])
	}
	if entry["response_body"] != `{"road_id":"oxford_road"}` {
		t.Errorf("response_body = %v", entry["response_body"])
	}
}

func TestLogging_BodyCaptureTruncates(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen int
	handler := Logging(logger, AccessLog{BodyLogging: true, MaxBodyLogBytes: 8})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen = len(b)
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("not json"))
		}))

	body := `{"road_id":"` + strings.Repeat("x", 64) + `"}`
	req := httptest.NewRequest("POST", "/api/road-closure-impact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != len(body) {
		t.Errorf("handler read %d bytes, want %d", seen, len(body))
	}
	entry := logEntry(t, &buf)
	if entry["request_body"] != `{"road_i...[truncated]` {
		t.Errorf("request_body = %v", entry["request_body"])
	}
	if _, ok := entry["response_body"]; ok {
		t.Error("non-JSON response bodies should not be logged")
	}
}
