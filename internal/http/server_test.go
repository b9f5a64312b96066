package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luachlabs/extractd/internal/extraction"
)

// stubExtractor records the call and returns a canned result.
type stubExtractor struct {
	result    extraction.Result
	err       error
	gotText   string
	gotTZ     string
	gotIntent extraction.Intent
}

func (s *stubExtractor) Extract(ctx context.Context, text string, intent extraction.Intent, timezone string) (extraction.Result, error) {
	s.gotText = text
	s.gotIntent = intent
	s.gotTZ = timezone
	if s.err != nil {
		return extraction.Result{}, s.err
	}
	return s.result, nil
}

func newTestServer(t *testing.T, stub *stubExtractor) *Server {
	t.Helper()
	srv, err := NewServer(stub, zap.NewNop(), nil)
	require.NoError(t, err)
	return srv
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, zap.NewNop(), nil)
	assert.Error(t, err)

	_, err = NewServer(&stubExtractor{}, nil, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{})

	rec := doRequest(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestExtract(t *testing.T) {
	date := time.Date(2025, 10, 18, 15, 0, 0, 0, time.UTC)
	stub := &stubExtractor{
		result: extraction.Result{
			Entities: extraction.Entities{
				Title: "פגישה",
				Date:  &date,
				Time:  "15:00",
				Confidence: extraction.Confidence{
					Title:   0.8,
					Date:    0.98,
					Time:    0.95,
					Overall: 0.804,
				},
			},
			ModelUsed:   false,
			EntityCount: 3,
		},
	}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodPost, "/api/v1/extract",
		`{"text": "פגישה ב 18.10 בשעה 15:00", "intent": "create_event", "timezone": "Asia/Jerusalem"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "פגישה ב 18.10 בשעה 15:00", stub.gotText)
	assert.Equal(t, extraction.IntentCreateEvent, stub.gotIntent)
	assert.Equal(t, "Asia/Jerusalem", stub.gotTZ)

	var resp extraction.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "פגישה", resp.Entities.Title)
	assert.Equal(t, "15:00", resp.Entities.Time)
	assert.Equal(t, 3, resp.EntityCount)
	assert.False(t, resp.ModelUsed)
}

func TestExtract_DefaultTimezone(t *testing.T) {
	stub := &stubExtractor{}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodPost, "/api/v1/extract",
		`{"text": "פגישה מחר", "intent": "create_event"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asia/Jerusalem", stub.gotTZ)
}

func TestExtract_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"text": `},
		{"missing text", `{"intent": "create_event"}`},
		{"unknown intent", `{"text": "פגישה", "intent": "schedule_meeting"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubExtractor{})
			rec := doRequest(srv, http.MethodPost, "/api/v1/extract", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestExtract_ExtractorError(t *testing.T) {
	stub := &stubExtractor{err: fmt.Errorf("unknown timezone %q", "Mars/Olympus")}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodPost, "/api/v1/extract",
		`{"text": "פגישה", "intent": "create_event", "timezone": "Mars/Olympus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{})
	srv.Use(NewHTTPMetrics(zap.NewNop()).MetricsMiddleware())

	// The default meter provider is a no-op; the middleware must still
	// pass requests through untouched.
	rec := doRequest(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
