package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dining_alerts/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.SQLite) {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, []string{"Baker House", "Simmons Hall"}, log), store
}

func postForm(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestSubscribe(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
	}{
		{
			name: "valid subscription",
			form: url.Values{
				"email":    {"a@mit.edu"},
				"keywords": {"jalapeno, shrimp tacos"},
				"halls":    {"Simmons Hall"},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "no halls means all halls",
			form: url.Values{
				"email":    {"b@mit.edu"},
				"keywords": {"tofu"},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "missing email",
			form: url.Values{
				"keywords": {"tofu"},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			form: url.Values{
				"email":    {"not-an-address"},
				"keywords": {"tofu"},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing keywords",
			form: url.Values{
				"email":    {"a@mit.edu"},
				"keywords": {" , , "},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown hall",
			form: url.Values{
				"email":    {"a@mit.edu"},
				"keywords": {"tofu"},
				"halls":    {"Walker Memorial"},
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rec := postForm(t, srv.Router(nil), "/subscribe", tt.form)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestSubscribeStoresAndMerges(t *testing.T) {
	srv, store := newTestServer(t)
	router := srv.Router(nil)
	ctx := context.Background()

	rec := postForm(t, router, "/subscribe", url.Values{
		"email":    {"a@mit.edu"},
		"keywords": {"jalapeno"},
		"halls":    {"Simmons Hall"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("first subscribe: status %d", rec.Code)
	}

	rec = postForm(t, router, "/subscribe", url.Values{
		"email":    {"a@mit.edu"},
		"keywords": {"jalapeno, shrimp"},
		"halls":    {"Baker House"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("second subscribe: status %d", rec.Code)
	}

	sub, err := store.Get(ctx, "a@mit.edu")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff([]string{"jalapeno", "shrimp"}, sub.Keywords); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Simmons Hall", "Baker House"}, sub.Halls); diff != "" {
		t.Errorf("halls mismatch (-want +got):\n%s", diff)
	}
}

func TestUnsubscribe(t *testing.T) {
	srv, store := newTestServer(t)
	router := srv.Router(nil)

	if err := store.Upsert(context.Background(), "a@mit.edu", []string{"tofu"}, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rec := postForm(t, router, "/unsubscribe", url.Values{"email": {"a@mit.edu"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["removed"] != true {
		t.Errorf("removed = %v, want true", body["removed"])
	}

	// Second unsubscribe finds nothing but still succeeds.
	rec = postForm(t, router, "/unsubscribe", url.Values{"email": {"a@mit.edu"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("second unsubscribe: status %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["removed"] != false {
		t.Errorf("removed = %v, want false", body["removed"])
	}
}

func TestHalls(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/halls", nil)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Halls []string `json:"halls"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"Baker House", "Simmons Hall"}, body.Halls); diff != "" {
		t.Errorf("halls mismatch (-want +got):\n%s", diff)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
