package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/patro/bsdate"
	"github.com/tsawler/patro/internal/config"
	"github.com/tsawler/patro/monthgrid"
)

var fixedNow = time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, config.Validate(cfg))
	return New(Options{Config: cfg, Now: func() time.Time { return fixedNow }})
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestConvertAD(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/api/v1/convert/ad/2024-01-15", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[Conversion](t, rec)
	assert.Equal(t, "2024-01-15", got.AD)
	assert.Equal(t, BSDate{Year: 2080, Month: 10, Day: 2, MonthName: "Magh", Weekday: "Monday", ISO: "2080-10-02"}, got.BS)
	assert.True(t, got.Exact)

	rec = do(s, http.MethodGet, "/api/v1/convert/ad/yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertBS(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/api/v1/convert/bs/2080/10/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[Conversion](t, rec)
	assert.Equal(t, "2024-01-15", got.AD)
	assert.True(t, got.Exact)
	assert.GreaterOrEqual(t, got.Iterations, 1)

	for _, target := range []string{
		"/api/v1/convert/bs/2080/13/1",
		"/api/v1/convert/bs/2080/1/40",
		"/api/v1/convert/bs/x/1/1",
	} {
		assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, target, "").Code, target)
	}
}

func TestMonthGrid(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/api/v1/grid/2081/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[Grid](t, rec)

	require.Len(t, g.Cells, monthgrid.Size)
	assert.Equal(t, bsdate.MonthLength(1, 2081), g.Days)
	assert.Equal(t, int(bsdate.ToAD(1, 1, 2081).Time.Weekday()), g.LeadingBlanks)

	days, today := 0, 0
	for i, c := range g.Cells {
		assert.Equal(t, i%monthgrid.Columns == monthgrid.SaturdayColumn, c.Saturday, "cell %d", i)
		if c.Kind == "day" {
			days++
		}
		if c.Today {
			today++
		}
	}
	assert.Equal(t, g.Days, days)
	assert.Equal(t, 1, today)

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/v1/grid/2081/0", "").Code)
}

func TestCalendarPDF(t *testing.T) {
	s := newTestServer(t, nil)

	body := `{"months":[1,2],"events":[{"id":"1","title":"New Year","date":"2024-04-13"}]}`
	rec := do(s, http.MethodPost, "/api/v1/calendar/2081.pdf?paper=A5", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "calendar-2081.pdf")
	assert.NotEmpty(t, rec.Header().Get(HeaderWarnings))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestCalendarPDFWithoutBody(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodPost, "/api/v1/calendar/2081.pdf", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestCalendarPDFRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		target string
		body   string
		code   int
	}{
		{"not a pdf", "/api/v1/calendar/2081.png", "", http.StatusNotFound},
		{"year", "/api/v1/calendar/0.pdf", "", http.StatusBadRequest},
		{"paper", "/api/v1/calendar/2081.pdf?paper=Letter", "", http.StatusBadRequest},
		{"month", "/api/v1/calendar/2081.pdf", `{"months":[13]}`, http.StatusBadRequest},
		{"event date", "/api/v1/calendar/2081.pdf", `{"events":[{"title":"x","date":"soon"}]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestChapterPDF(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodPost, "/api/v1/chapter.pdf",
		`{"id":"walk","title":"A Walk","body":"<p>We left before dawn.</p>","imageUrls":["missing.png"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "chapter-walk.pdf")
	assert.Equal(t, "1", rec.Header().Get(HeaderWarnings), "missing image becomes a placeholder")

	rec = do(s, http.MethodPost, "/api/v1/chapter.pdf", `{"title":"No body"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerationTimeoutExcludesQueueing(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Server.GenerateTimeout = time.Second })

	s.generate.Lock()
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- do(s, http.MethodPost, "/api/v1/chapter.pdf", `{"id":"q","title":"Queued","body":"<p>Waited.</p>"}`)
	}()
	time.Sleep(1500 * time.Millisecond)
	s.generate.Unlock()

	select {
	case rec := <-done:
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	case <-time.After(10 * time.Second):
		t.Fatal("queued request never finished")
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/v1/calendar/2081.pdf", `{"months":[1]}`).Code)

	rec := do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	text := rec.Body.String()
	assert.Contains(t, text, `patro_documents_generated_total{kind="calendar",outcome="ok"} 1`)
	assert.Contains(t, text, `http_requests_total{method="POST",path="/api/v1/calendar/:file",status="200"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Metrics.Enabled = false })
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/metrics", "").Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Server.RateLimitRequests = 2
		c.Server.RateLimitWindow = time.Hour
	})

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/v1/convert/ad/2024-01-15", "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(s, http.MethodGet, "/api/v1/convert/ad/2024-01-15", "").Code)

	// Health checks are not limited.
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/healthz", "").Code)
}
