package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-dashboard/internal/adapter/charts"
	"github.com/couchcryptid/storm-dashboard/internal/adapter/xlsx"
	"github.com/couchcryptid/storm-dashboard/internal/dashboard"
	"github.com/couchcryptid/storm-dashboard/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var validate = validator.New()

// ChartRenderer draws the chart images.
type ChartRenderer interface {
	Map(w io.Writer, tracks []domain.StormTrack) error
	Class(w io.Writer, counts []domain.ClassCount) error
	Monthly(w io.Writer, series []domain.MonthlySeries) error
	Pressure(w io.Writer, series []domain.PressureSeries) error
}

// yearRequest is the {year} path segment after integer parsing.
type yearRequest struct {
	Year int `validate:"gte=1800,lte=2200"`
}

type yearsResponse struct {
	Years    []domain.YearOption `json:"years"`
	Default  *int                `json:"default"`
	LoadedAt time.Time           `json:"loaded_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// parseYear accepts only the canonical decimal form, so "+2000" and "02000"
// are rejected rather than aliased to 2000.
func parseYear(r *http.Request) (int, error) {
	raw := r.PathValue("year")
	n, err := strconv.Atoi(raw)
	if err != nil || strconv.Itoa(n) != raw {
		return 0, fmt.Errorf("invalid year %q: must be an integer", raw)
	}
	if err := validate.Struct(yearRequest{Year: n}); err != nil {
		return 0, fmt.Errorf("invalid year %q: must be between 1800 and 2200", raw)
	}
	return n, nil
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	resp := yearsResponse{Years: s.service.Years(), LoadedAt: s.service.LoadedAt()}
	if year, ok := s.service.DefaultYear(); ok {
		resp.Default = &year
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

// handleView serves one JSON view for the {year} path segment.
func handleView[T any](s *Server, build func(context.Context, int) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := parseYear(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		view, err := build(r.Context(), year)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, view)
	}
}

// handleChart renders a view to PNG. The image is buffered so a render
// failure can still be reported as JSON.
func handleChart[T any](s *Server, build func(context.Context, int) (T, error), render func(io.Writer, T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := parseYear(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		view, err := build(r.Context(), year)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := render(&buf, view); err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w) //nolint:errcheck // client went away
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	d, err := s.service.Build(r.Context(), year)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf, d); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"storms-%d.xlsx\"", year))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client went away
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dashboard.ErrYearNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, charts.ErrNoData):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, errorResponse{Error: err.Error()})
}
