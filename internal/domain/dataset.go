package domain

import (
	"slices"
	"strconv"
	"time"
)

// Dataset is the read-only set of observations loaded at startup. It is
// safe for concurrent use because nothing mutates it after construction.
type Dataset struct {
	observations []StormObservation
	loadedAt     time.Time
}

// NewDataset copies observations into a new Dataset stamped with loadedAt.
func NewDataset(observations []StormObservation, loadedAt time.Time) *Dataset {
	return &Dataset{
		observations: slices.Clone(observations),
		loadedAt:     loadedAt,
	}
}

// Len returns the number of observations.
func (d *Dataset) Len() int { return len(d.observations) }

// LoadedAt returns when the dataset was constructed.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Observations returns a copy of every observation in CSV order.
func (d *Dataset) Observations() []StormObservation {
	return slices.Clone(d.observations)
}

// Years returns the distinct observation years in ascending order.
func (d *Dataset) Years() []int {
	seen := make(map[int]struct{})
	var years []int
	for _, o := range d.observations {
		y := o.Time.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// HasYear reports whether any observation falls in year.
func (d *Dataset) HasYear(year int) bool {
	return slices.ContainsFunc(d.observations, func(o StormObservation) bool {
		return o.Time.Year() == year
	})
}

// FilterByYear returns the observations whose timestamp falls in year, in
// CSV order. The result is a new slice.
func (d *Dataset) FilterByYear(year int) []StormObservation {
	var out []StormObservation
	for _, o := range d.observations {
		if o.Time.Year() == year {
			out = append(out, o)
		}
	}
	return out
}

// YearOption is one entry of the year selector.
type YearOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// YearOptions converts years into selector options.
func YearOptions(years []int) []YearOption {
	opts := make([]YearOption, 0, len(years))
	for _, y := range years {
		s := strconv.Itoa(y)
		opts = append(opts, YearOption{Label: s, Value: s})
	}
	return opts
}
