package domain

import "github.com/go-gota/gota/series"

// BoxSummary is the five-number summary of a pressure series, computed over
// valid readings only.
type BoxSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// Summarize returns nil when values has no valid reading.
func Summarize(values []Pressure) *BoxSummary {
	valid := ValidValues(values)
	if len(valid) == 0 {
		return nil
	}

	s := series.Floats(valid)
	return &BoxSummary{
		Count:  len(valid),
		Min:    s.Min(),
		Q1:     s.Quantile(0.25),
		Median: s.Median(),
		Q3:     s.Quantile(0.75),
		Max:    s.Max(),
		Mean:   s.Mean(),
	}
}

// ValidValues drops missing readings.
func ValidValues(values []Pressure) []float64 {
	out := make([]float64, 0, len(values))
	for _, p := range values {
		if p.Valid {
			out = append(out, p.Value)
		}
	}
	return out
}
