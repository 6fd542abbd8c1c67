package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/observability"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
)

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/ping", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("request id header: want=req-123 got=%q", got)
	}
	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("trace data: %+v", seen)
	}
	if rec.Header().Get(headerTraceID) != seen.TraceID {
		t.Fatalf("trace id header: want=%q got=%q", seen.TraceID, rec.Header().Get(headerTraceID))
	}
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/days/:day/skill-trees", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, day := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/days/"+day+"/skill-trees", nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `journey_api_requests_total{method="GET",route="/api/days/:day/skill-trees",status="200"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("exposition missing %q", want)
	}
}

func TestMetricsNilIsPassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status: want=%d got=%d", http.StatusTeapot, rec.Code)
	}
}

func TestCorrelationIDReplacesUnusableValues(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		keep bool
	}{
		{"plain", "req-42", true},
		{"trimmed", "  abc  ", true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", maxCorrelationIDLen+1), false},
		{"control char", "abc\ndef", false},
		{"non ascii", "réq", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := correlationID(tc.raw)
			if tc.keep && got != strings.TrimSpace(tc.raw) {
				t.Fatalf("want kept %q, got %q", tc.raw, got)
			}
			if !tc.keep && (got == tc.raw || got == "") {
				t.Fatalf("want replacement for %q, got %q", tc.raw, got)
			}
		})
	}
}

func TestMetricsSkipsScrapeEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if strings.Contains(rec.Body.String(), `route="/metrics"`) {
		t.Fatalf("scrapes were counted:\n%s", rec.Body.String())
	}
}
