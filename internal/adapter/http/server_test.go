package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/storm-dashboard/internal/adapter/charts"
	httpadapter "github.com/couchcryptid/storm-dashboard/internal/adapter/http"
	"github.com/couchcryptid/storm-dashboard/internal/dashboard"
	"github.com/couchcryptid/storm-dashboard/internal/domain"
	"github.com/couchcryptid/storm-dashboard/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `storm_name,datetime,latitude,longitude,storm_type,pressure
 Amy ,01/01/2000 00:00,10.1,140.2,TS,990
Amy,02/15/2000 00:00,11.3,139.8,TS,
Bart,07/20/2000 06:00,15.0,135.5,TY,950
Cleo,08/03/2001 12:00,20.5,130.0,TD,1004
Dan,09/10/2001 00:00,18.8,128.0,TY,NA
`

var loadedAt = time.Date(2024, time.April, 27, 5, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, csv string) *httpadapter.Server {
	t.Helper()
	return newTestServerWithLogger(t, csv, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestServerWithLogger(t *testing.T, csv string, logger *slog.Logger) *httpadapter.Server {
	t.Helper()
	obs, err := domain.LoadObservations(strings.NewReader(csv))
	require.NoError(t, err)

	svc := dashboard.NewService(
		domain.NewDataset(obs, loadedAt),
		clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)),
		observability.NewMetricsForTesting(),
		logger,
	)
	return httpadapter.NewServer(":0", svc, charts.NewRenderer(320, 240), logger)
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(t, testCSV), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestReadyzReturns200WhenLoaded(t *testing.T) {
	rec := get(t, newTestServer(t, testCSV), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[map[string]string](t, rec)["status"])
}

func TestReadyzReturns503WhenEmpty(t *testing.T) {
	rec := get(t, newTestServer(t, "storm_name,datetime,latitude,longitude,storm_type,pressure\n"), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.NotEmpty(t, body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, testCSV), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestYears(t *testing.T) {
	rec := get(t, newTestServer(t, testCSV), "/api/v1/years")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Years    []domain.YearOption `json:"years"`
		Default  *int                `json:"default"`
		LoadedAt time.Time           `json:"loaded_at"`
	}](t, rec)
	assert.Equal(t, []domain.YearOption{{Label: "2000", Value: "2000"}, {Label: "2001", Value: "2001"}}, body.Years)
	require.NotNil(t, body.Default)
	assert.Equal(t, 2000, *body.Default)
	assert.True(t, loadedAt.Equal(body.LoadedAt))
}

func TestYears_EmptyDatasetHasNoDefault(t *testing.T) {
	rec := get(t, newTestServer(t, "storm_name,datetime,latitude,longitude,storm_type,pressure\n"), "/api/v1/years")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Empty(t, body["years"])
	assert.Nil(t, body["default"])
}

func TestDashboard(t *testing.T) {
	rec := get(t, newTestServer(t, testCSV), "/api/v1/years/2000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	d := decode[dashboard.Dashboard](t, rec)
	assert.Equal(t, 2000, d.Year)

	require.Len(t, d.Map, 2)
	assert.Equal(t, "Amy", d.Map[0].Name)
	assert.Equal(t, []float64{10.1, 11.3}, d.Map[0].Lat)

	assert.Equal(t, []domain.ClassCount{{Type: "TS", Count: 2}, {Type: "TY", Count: 1}}, d.Class)

	require.Len(t, d.Monthly, 2)
	assert.Equal(t, []int{1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, d.Monthly[0].Counts())
	assert.Len(t, d.MonthNames, 12)

	require.Len(t, d.Pressure, 2)
	assert.Equal(t, []domain.Pressure{domain.ValidPressure(990), domain.MissingPressure}, d.Pressure[0].Values)
}

func TestSingleViews(t *testing.T) {
	srv := newTestServer(t, testCSV)

	t.Run("map", func(t *testing.T) {
		rec := get(t, srv, "/api/v1/years/2001/map")
		require.Equal(t, http.StatusOK, rec.Code)
		tracks := decode[[]domain.StormTrack](t, rec)
		require.Len(t, tracks, 2)
		assert.Equal(t, "Cleo", tracks[0].Name)
		assert.Equal(t, "Dan", tracks[1].Name)
	})

	t.Run("class", func(t *testing.T) {
		rec := get(t, srv, "/api/v1/years/2001/class")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []domain.ClassCount{{Type: "TD", Count: 1}, {Type: "TY", Count: 1}}, decode[[]domain.ClassCount](t, rec))
	})

	t.Run("monthly", func(t *testing.T) {
		rec := get(t, srv, "/api/v1/years/2001/monthly")
		require.Equal(t, http.StatusOK, rec.Code)
		series := decode[[]domain.MonthlySeries](t, rec)
		require.Len(t, series, 2)
		assert.Len(t, series[0].Months, 12)
		assert.Equal(t, 1, series[0].Months[7].Count)
	})

	t.Run("pressure keeps missing values as null", func(t *testing.T) {
		rec := get(t, srv, "/api/v1/years/2001/pressure")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"values":[null]`)
	})
}

func TestYearErrors(t *testing.T) {
	srv := newTestServer(t, testCSV)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "not an integer", path: "/api/v1/years/abc", status: http.StatusBadRequest},
		{name: "leading plus", path: "/api/v1/years/+2000", status: http.StatusBadRequest},
		{name: "leading zero", path: "/api/v1/years/02000/map", status: http.StatusBadRequest},
		{name: "below range", path: "/api/v1/years/1700/map", status: http.StatusBadRequest},
		{name: "above range", path: "/api/v1/years/3000/class", status: http.StatusBadRequest},
		{name: "unknown year", path: "/api/v1/years/1999", status: http.StatusNotFound},
		{name: "unknown year chart", path: "/api/v1/years/1999/charts/class.png", status: http.StatusNotFound},
		{name: "unknown year export", path: "/api/v1/years/2005/export.xlsx", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, tt.path)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestCharts(t *testing.T) {
	srv := newTestServer(t, testCSV)

	for _, chart := range []string{"map", "class", "monthly", "pressure"} {
		t.Run(chart, func(t *testing.T) {
			rec := get(t, srv, "/api/v1/years/2000/charts/"+chart+".png")

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
		})
	}
}

func TestPressureChartWithoutReadings(t *testing.T) {
	csv := "storm_name,datetime,latitude,longitude,storm_type,pressure\nEve,03/01/2002 00:00,1,2,TS,NA\n"
	rec := get(t, newTestServer(t, csv), "/api/v1/years/2002/charts/pressure.png")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, charts.ErrNoData.Error(), decode[map[string]string](t, rec)["error"])
}

func TestExport(t *testing.T) {
	rec := get(t, newTestServer(t, testCSV), "/api/v1/years/2000/export.xlsx")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "storms-2000.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, testCSV)

	t.Run("generated", func(t *testing.T) {
		rec := get(t, srv, "/healthz")
		_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
		assert.NoError(t, err)
	})

	t.Run("propagated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		srv.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	srv := newTestServerWithLogger(t, testCSV, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/years/1999/class", nil)
	req.Header.Set("X-Request-ID", "req-42")
	srv.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		if e["msg"] == "http request" {
			entry = e
		}
	}
	require.NotNil(t, entry, "request log line missing: %s", buf.String())

	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, http.MethodGet, entry["method"])
	assert.Equal(t, "/api/v1/years/1999/class", entry["path"])
	assert.InDelta(t, http.StatusNotFound, entry["status"], 0)
	assert.Contains(t, entry, "duration")
}
