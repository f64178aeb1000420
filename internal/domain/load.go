package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the CSV datetime format. Month, day and hour may be one
// or two digits.
const DateTimeLayout = "1/2/2006 15:04"

// Column names in the CSV header.
const (
	ColumnName     = "storm_name"
	ColumnDateTime = "datetime"
	ColumnLat      = "latitude"
	ColumnLon      = "longitude"
	ColumnType     = "storm_type"
	ColumnPressure = "pressure"
)

var requiredColumns = []string{ColumnName, ColumnDateTime, ColumnLat, ColumnLon, ColumnType, ColumnPressure}

var (
	// ErrNoHeader is returned when the input has no header row.
	ErrNoHeader = errors.New("csv has no header row")

	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
)

// ParseError reports a malformed field in a CSV row.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %s: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadObservations reads every row of a storm CSV. The first malformed row
// aborts the load; no partial result is returned.
func LoadObservations(r io.Reader) ([]StormObservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var observations []StormObservation
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		obs, err := parseRow(rec, cols, line)
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}

	return observations, nil
}

// indexColumns maps each required column to its position in the header.
// Header names are matched case-insensitively after trimming.
func indexColumns(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	cols := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		i, ok := positions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		cols[name] = i
	}
	return cols, nil
}

func parseRow(rec []string, cols map[string]int, line int) (StormObservation, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(rec) {
			return "", &ParseError{Line: line, Column: name, Err: errors.New("field missing from row")}
		}
		return rec[i], nil
	}

	var obs StormObservation
	var err error
	var raw string

	if raw, err = field(ColumnName); err != nil {
		return obs, err
	}
	obs.Name = strings.TrimSpace(raw)

	if raw, err = field(ColumnType); err != nil {
		return obs, err
	}
	obs.Type = strings.TrimSpace(raw)

	if raw, err = field(ColumnDateTime); err != nil {
		return obs, err
	}
	if obs.Time, err = time.Parse(DateTimeLayout, strings.TrimSpace(raw)); err != nil {
		return obs, &ParseError{Line: line, Column: ColumnDateTime, Value: raw, Err: err}
	}

	if raw, err = field(ColumnLat); err != nil {
		return obs, err
	}
	if obs.Lat, err = parseCoordinate(raw); err != nil {
		return obs, &ParseError{Line: line, Column: ColumnLat, Value: raw, Err: err}
	}

	if raw, err = field(ColumnLon); err != nil {
		return obs, err
	}
	if obs.Lon, err = parseCoordinate(raw); err != nil {
		return obs, &ParseError{Line: line, Column: ColumnLon, Value: raw, Err: err}
	}

	if raw, err = field(ColumnPressure); err != nil {
		return obs, err
	}
	if obs.Pressure, err = parsePressure(raw); err != nil {
		return obs, &ParseError{Line: line, Column: ColumnPressure, Value: raw, Err: err}
	}

	return obs, nil
}

func parseCoordinate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

// parsePressure returns MissingPressure for blank cells and the source's
// missing markers. Any other non-numeric value is an error.
func parsePressure(s string) (Pressure, error) {
	s = strings.TrimSpace(s)
	if isMissingMarker(s) {
		return MissingPressure, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return MissingPressure, err
	}
	if math.IsInf(v, 0) {
		return MissingPressure, errors.New("not a finite number")
	}
	return ValidPressure(v), nil
}

func isMissingMarker(s string) bool {
	switch strings.ToUpper(s) {
	case "", "NA", "N/A", "NAN", "-":
		return true
	default:
		return false
	}
}
