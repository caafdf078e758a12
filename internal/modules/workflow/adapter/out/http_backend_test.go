package out_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	workflowout "segdesk/internal/modules/workflow/adapter/out"
	"segdesk/internal/modules/workflow/domain"
	apperrors "segdesk/internal/platform/errors"
)

type staticIDs struct{}

func (staticIDs) New() string { return "req-fixed" }

type recorded struct {
	method  string
	path    string
	auth    string
	request string
	body    map[string]any
}

type fakeServer struct {
	mu       sync.Mutex
	requests []recorded
	listKey  string
}

func (f *fakeServer) record(r *http.Request) {
	rec := recorded{
		method:  r.Method,
		path:    r.URL.Path,
		auth:    r.Header.Get("Authorization"),
		request: r.Header.Get("X-Request-ID"),
	}
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			rec.body = map[string]any{}
			_ = json.Unmarshal(raw, &rec.body)
		}
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
}

func (f *fakeServer) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/segments", func(w http.ResponseWriter, req *http.Request) {
		f.record(req)
		if req.URL.Query().Get("user_id") == "ghost" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		key := f.listKey
		if key == "" {
			key = "segments"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			key: []map[string]any{
				{"id": 11, "audio_id": 3, "audio_name": "call-a", "created_at": "2026-03-01T09:00:00Z", "file_path": "http://cdn/a.wav", "status": "done", "transcribe_option": nil},
				{"id": 12, "audio_id": 3, "audio_name": "call-a", "created_at": "2026-03-01 09:05:00", "file_path": "http://cdn/b.wav", "status": "ready", "transcribe_option": "verbatim"},
			},
			"count": 2,
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/segment_detail/{id:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		f.record(req)
		id, _ := strconv.Atoi(mux.Vars(req)["id"])
		if id == 404 {
			http.NotFound(w, req)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"segment_id": id, "audio_name": "call-a", "username": "rev", "ai_text": "machine",
			"transcribe_text": nil, "report_text": "", "emotion": "neutral", "status": "ready",
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/segment/{id:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		f.record(req)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPut)
	r.HandleFunc("/segment/{id:[0-9]+}/start", func(w http.ResponseWriter, req *http.Request) {
		f.record(req)
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPut)
	return r
}

func newBackend(t *testing.T, srv *fakeServer) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(srv.router())
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPBackendListSegments(t *testing.T) {
	t.Parallel()
	for _, key := range []string{"segments", "audio_segments"} {
		srv := &fakeServer{listKey: key}
		ts := newBackend(t, srv)
		backend := workflowout.NewHTTPBackend(workflowout.HTTPBackendOptions{BaseURL: ts.URL + "/", Token: "tok", IDs: staticIDs{}, Timeout: time.Second})

		segments, err := backend.ListSegments(context.Background(), "u1")
		if err != nil {
			t.Fatalf("%s: list: %v", key, err)
		}
		if len(segments) != 2 || segments[1].Status != domain.StatusReady || segments[0].TranscribeOption != nil {
			t.Fatalf("%s: unexpected segments %+v", key, segments)
		}
		if segments[1].TranscribeOption == nil || *segments[1].TranscribeOption != "verbatim" {
			t.Fatalf("%s: transcribe option lost", key)
		}
		if segments[1].CreatedAt.IsZero() || segments[0].CreatedAt.Hour() != 9 {
			t.Fatalf("%s: created_at not parsed: %+v", key, segments)
		}
		req := srv.requests[0]
		if req.auth != "Bearer tok" || req.request != "req-fixed" {
			t.Fatalf("%s: missing headers %+v", key, req)
		}
	}
}

func TestHTTPBackendDetail(t *testing.T) {
	t.Parallel()
	ts := newBackend(t, &fakeServer{})
	backend := workflowout.NewHTTPBackend(workflowout.HTTPBackendOptions{BaseURL: ts.URL})

	detail, err := backend.GetDetail(context.Background(), 12)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.SegmentID != 12 || detail.AIText != "machine" || detail.TranscribeText != "" || detail.Emotion != "neutral" {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if _, err := backend.GetDetail(context.Background(), 404); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHTTPBackendUpdateSendsExplicitNulls(t *testing.T) {
	t.Parallel()
	srv := &fakeServer{}
	ts := newBackend(t, srv)
	backend := workflowout.NewHTTPBackend(workflowout.HTTPBackendOptions{BaseURL: ts.URL})

	text := "hello"
	if err := backend.UpdateSegment(context.Background(), 12, domain.SegmentUpdate{TranscribeText: &text, IncludeEmotion: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	report := "noise"
	if err := backend.UpdateSegment(context.Background(), 13, domain.SegmentUpdate{ReportText: &report}); err != nil {
		t.Fatalf("report: %v", err)
	}

	commit := srv.requests[0].body
	if commit["transcribe_text"] != "hello" {
		t.Fatalf("unexpected commit body %v", commit)
	}
	if v, ok := commit["report_text"]; !ok || v != nil {
		t.Fatalf("report_text must be an explicit null, got %v", commit)
	}
	if v, ok := commit["emotion"]; !ok || v != nil {
		t.Fatalf("emotion must be sent as null, got %v", commit)
	}
	reportBody := srv.requests[1].body
	if _, ok := reportBody["emotion"]; ok {
		t.Fatalf("report must not carry emotion, got %v", reportBody)
	}
	if v, ok := reportBody["transcribe_text"]; !ok || v != nil {
		t.Fatalf("transcribe_text must be an explicit null, got %v", reportBody)
	}
}

func TestHTTPBackendRejectsEmptyUpdateWithoutRequest(t *testing.T) {
	t.Parallel()
	srv := &fakeServer{}
	ts := newBackend(t, srv)
	backend := workflowout.NewHTTPBackend(workflowout.HTTPBackendOptions{BaseURL: ts.URL})
	if err := backend.UpdateSegment(context.Background(), 12, domain.SegmentUpdate{}); !errors.Is(err, apperrors.ErrEmptyUpdate) {
		t.Fatalf("expected empty update, got %v", err)
	}
	if len(srv.requests) != 0 {
		t.Fatalf("no request expected, got %d", len(srv.requests))
	}
}

func TestHTTPBackendStartAndFailures(t *testing.T) {
	t.Parallel()
	srv := &fakeServer{}
	ts := newBackend(t, srv)
	backend := workflowout.NewHTTPBackend(workflowout.HTTPBackendOptions{BaseURL: ts.URL})

	if err := backend.StartSegment(context.Background(), 12); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := srv.requests[0]; got.method != http.MethodPut || got.path != "/segment/12/start" {
		t.Fatalf("unexpected start request %+v", got)
	}
	if _, err := backend.ListSegments(context.Background(), "ghost"); !errors.Is(err, apperrors.ErrBackend) {
		t.Fatalf("expected backend error for 500, got %v", err)
	}

	ts.Close()
	if _, err := backend.ListSegments(context.Background(), "u1"); !errors.Is(err, apperrors.ErrBackend) {
		t.Fatalf("expected backend error for closed server, got %v", err)
	}
}
