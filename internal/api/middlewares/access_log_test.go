package middlewares_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	mw "github.com/5w1tchy/bookshelf-api/internal/api/middlewares"
)

func TestAccessLog(t *testing.T) {
	var logs bytes.Buffer
	handler := mw.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"code":"conflict"}`))
		}),
		mw.RequestID(zerolog.New(&logs)),
		mw.AccessLog,
	)

	req := httptest.NewRequest("POST", "/users/u1/books", nil)
	req.Header.Set("X-Request-ID", "rid-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var line struct {
		Level     string `json:"level"`
		Method    string `json:"method"`
		Path      string `json:"path"`
		Status    int    `json:"status"`
		Bytes     int    `json:"bytes"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(logs.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", logs.String(), err)
	}
	if line.Method != "POST" || line.Path != "/users/u1/books" || line.Status != http.StatusConflict {
		t.Errorf("unexpected access log: %+v", line)
	}
	if line.RequestID != "rid-42" || line.Level != "info" || line.Bytes != len(`{"code":"conflict"}`) {
		t.Errorf("unexpected access log: %+v", line)
	}
}

func TestAccessLog_ImplicitOK(t *testing.T) {
	var logs bytes.Buffer
	handler := mw.Chain(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
		mw.RequestID(zerolog.New(&logs)),
		mw.AccessLog,
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	if !bytes.Contains(logs.Bytes(), []byte(`"status":200`)) {
		t.Errorf("expected status 200 in %s", logs.String())
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) mw.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := mw.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }),
		tag("a"), tag("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "handler" {
		t.Errorf("unexpected order %v", order)
	}
}
