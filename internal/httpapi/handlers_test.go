package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/platekit/cooksession/internal/engine"
	"github.com/platekit/cooksession/internal/logger"
	"github.com/platekit/cooksession/internal/notify"
	"github.com/platekit/cooksession/internal/recipe"
	"github.com/platekit/cooksession/internal/storage"
	"github.com/platekit/cooksession/internal/timer"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	clock := timer.NewFakeClock(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))
	reg := timer.New(clock, log)
	store := storage.NewMemoryStore(log)
	catalog := recipe.NewMemoryCatalog(log)
	catalog.Put("no-steps", nil)
	dispatcher := notify.NewDispatcher(notify.NewLogSender(log), log)

	eng := engine.New(catalog, store, reg, dispatcher, log, engine.WithClock(clock))
	return NewServer(":0", eng, log)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func TestStartSessionEndpoint(t *testing.T) {
	srv := setupServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/sessions",
		`{"userId":"42","recipeId":"tomato-soup"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", rec.Code, body)
	}
	if body["status"] != "active" {
		t.Fatalf("expected active session, got %v", body["status"])
	}
	if body["id"] == "" {
		t.Fatal("expected a session id")
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestStartSessionValidation(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing fields", `{}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown recipe", `{"userId":"42","recipeId":"nope"}`, http.StatusNotFound},
		{"empty recipe", `{"userId":"42","recipeId":"no-steps"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doJSON(t, srv, http.MethodPost, "/sessions", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	srv := setupServer(t)

	_, created := doJSON(t, srv, http.MethodPost, "/sessions",
		`{"userId":"42","recipeId":"tomato-soup"}`)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected a session id")
	}

	rec, body := doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/pause", "")
	if rec.Code != http.StatusOK || body["status"] != "paused" {
		t.Fatalf("pause: got %d %v", rec.Code, body)
	}

	// Advancing a paused session conflicts.
	rec, _ = doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/next", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("next while paused: expected 409, got %d", rec.Code)
	}

	rec, body = doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/resume", "")
	if rec.Code != http.StatusOK || body["status"] != "active" {
		t.Fatalf("resume: got %d %v", rec.Code, body)
	}

	rec, body = doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/next", "")
	if rec.Code != http.StatusOK || body["currentStepIndex"] != float64(1) {
		t.Fatalf("next: got %d %v", rec.Code, body)
	}

	rec, body = doJSON(t, srv, http.MethodPost, "/sessions/"+id+"/cancel", "")
	if rec.Code != http.StatusOK || body["status"] != "cancelled" {
		t.Fatalf("cancel: got %d %v", rec.Code, body)
	}

	rec, body = doJSON(t, srv, http.MethodGet, "/sessions/"+id, "")
	if rec.Code != http.StatusOK || body["status"] != "cancelled" {
		t.Fatalf("get: got %d %v", rec.Code, body)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	srv := setupServer(t)

	for _, path := range []string{
		"/sessions/nope",
	} {
		rec, _ := doJSON(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
	}

	rec, _ := doJSON(t, srv, http.MethodPost, "/sessions/nope/pause", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("pause: expected 404, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := setupServer(t)

	rec, body := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz: got %d %v", rec.Code, body)
	}
}
