package domain

import (
	"slices"
	"time"
)

// StormTrack is one storm's path for the map view.
type StormTrack struct {
	Name string    `json:"name"`
	Lat  []float64 `json:"lat"`
	Lon  []float64 `json:"lon"`
}

// MapView groups observations by storm name. Points keep CSV order within
// each track so the rendered line follows the file, not a time sort.
func MapView(observations []StormObservation) []StormTrack {
	groups := groupOrdered(observations, byName)
	tracks := make([]StormTrack, 0, len(groups))
	for _, g := range groups {
		t := StormTrack{
			Name: g.key,
			Lat:  make([]float64, 0, len(g.items)),
			Lon:  make([]float64, 0, len(g.items)),
		}
		for _, o := range g.items {
			t.Lat = append(t.Lat, o.Lat)
			t.Lon = append(t.Lon, o.Lon)
		}
		tracks = append(tracks, t)
	}
	return tracks
}

// ClassCount is the number of observations of one storm type.
type ClassCount struct {
	Type  string `json:"storm_type"`
	Count int    `json:"count"`
}

// ClassView counts observations per storm type.
func ClassView(observations []StormObservation) []ClassCount {
	groups := groupOrdered(observations, byType)
	counts := make([]ClassCount, 0, len(groups))
	for _, g := range groups {
		counts = append(counts, ClassCount{Type: g.key, Count: len(g.items)})
	}
	return counts
}

// MonthCount is the observation count for one calendar month.
type MonthCount struct {
	Month int    `json:"month"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthlySeries is one storm type's count per month, January to December.
type MonthlySeries struct {
	Type   string       `json:"storm_type"`
	Months []MonthCount `json:"months"`
}

// Counts returns the monthly counts in month order.
func (s MonthlySeries) Counts() []int {
	out := make([]int, len(s.Months))
	for i, m := range s.Months {
		out[i] = m.Count
	}
	return out
}

// MonthNames returns the x-axis labels for the monthly view.
func MonthNames() []string {
	names := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		names = append(names, m.String())
	}
	return names
}

// MonthlyView counts observations per storm type per month. Months with no
// observations are filled with zero so every series has 12 points.
func MonthlyView(observations []StormObservation) []MonthlySeries {
	groups := groupOrdered(observations, byType)
	series := make([]MonthlySeries, 0, len(groups))
	for _, g := range groups {
		series = append(series, MonthlySeries{
			Type:   g.key,
			Months: fillMonths(countByMonth(g.items)),
		})
	}
	return series
}

// countByMonth returns one entry per month that has observations.
func countByMonth(observations []StormObservation) []MonthCount {
	groups := groupOrdered(observations, func(o StormObservation) string {
		return o.Time.Month().String()
	})
	counts := make([]MonthCount, 0, len(groups))
	for _, g := range groups {
		m := g.items[0].Time.Month()
		counts = append(counts, MonthCount{Month: int(m), Name: m.String(), Count: len(g.items)})
	}
	return counts
}

// fillMonths adds a zero entry for each month absent from sparse and sorts
// the result by month number.
func fillMonths(sparse []MonthCount) []MonthCount {
	full := make([]MonthCount, 0, 12)
	full = append(full, sparse...)
	for m := time.January; m <= time.December; m++ {
		present := slices.ContainsFunc(sparse, func(c MonthCount) bool { return c.Month == int(m) })
		if !present {
			full = append(full, MonthCount{Month: int(m), Name: m.String()})
		}
	}
	slices.SortFunc(full, func(a, b MonthCount) int { return a.Month - b.Month })
	return full
}

// PressureSeries is one storm type's pressures in CSV order, with missing
// readings left in place.
type PressureSeries struct {
	Type    string      `json:"storm_type"`
	Values  []Pressure  `json:"values"`
	Summary *BoxSummary `json:"summary,omitempty"`
}

// PressureView groups pressures by storm type.
func PressureView(observations []StormObservation) []PressureSeries {
	groups := groupOrdered(observations, byType)
	series := make([]PressureSeries, 0, len(groups))
	for _, g := range groups {
		values := make([]Pressure, 0, len(g.items))
		for _, o := range g.items {
			values = append(values, o.Pressure)
		}
		series = append(series, PressureSeries{
			Type:    g.key,
			Values:  values,
			Summary: Summarize(values),
		})
	}
	return series
}
