// Command validate performs data integrity checks on a storm CSV: it loads
// the file, rebuilds every year's views, and verifies that the year
// partition, grouping, counting, gap-filling and pressure series agree with
// each other and with the raw rows. An exported dashboard JSON can be
// cross-checked against a fresh rebuild.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/storms_scraped_cleaned.csv \
//	  -charset utf-8 \
//	  -dashboard-json data/dashboard_2000.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/couchcryptid/storm-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-dashboard/internal/dashboard"
	"github.com/couchcryptid/storm-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// yearViews holds every view rebuilt for one year.
type yearViews struct {
	year     int
	rows     []domain.StormObservation
	tracks   []domain.StormTrack
	classes  []domain.ClassCount
	monthly  []domain.MonthlySeries
	pressure []domain.PressureSeries
}

func main() {
	csvPath := flag.String("csv", "", "path to the storm CSV")
	charset := flag.String("charset", "utf-8", "CSV character set (utf-8, latin1, windows-1252)")
	dashboardJSON := flag.String("dashboard-json", "", "optional exported dashboard JSON to cross-check")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *charset, *dashboardJSON); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, charset, dashboardJSONPath string) int {
	fmt.Println("=== Storm Dataset Integrity Validation ===")
	fmt.Println()

	ds, err := csvfile.Open(csvPath, charset, clockwork.NewRealClock())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load storm CSV: %v\n", err)
		return 1
	}

	views := buildAll(ds)

	phases := []*phase{
		validateYearPartition(ds),
		validateTracks(views),
		validateClassCounts(views),
		validateMonthlySeries(views),
		validatePressureSeries(views),
	}

	if dashboardJSONPath != "" {
		exported, err := loadDashboard(dashboardJSONPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load dashboard JSON: %v\n", err)
			return 1
		}
		phases = append(phases, validateExport(exported, views))
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d observations across %d years\n", ds.Len(), len(views))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func buildAll(ds *domain.Dataset) []yearViews {
	years := ds.Years()
	out := make([]yearViews, 0, len(years))
	for _, y := range years {
		rows := ds.FilterByYear(y)
		out = append(out, yearViews{
			year:     y,
			rows:     rows,
			tracks:   domain.MapView(rows),
			classes:  domain.ClassView(rows),
			monthly:  domain.MonthlyView(rows),
			pressure: domain.PressureView(rows),
		})
	}
	return out
}

func loadDashboard(path string) (dashboard.Dashboard, error) {
	var d dashboard.Dashboard
	data, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

// ── Phase 1: Year Partition ──

func validateYearPartition(ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 1: Year Partition"}

	total := 0
	for _, y := range ds.Years() {
		rows := ds.FilterByYear(y)
		if len(rows) == 0 {
			p.errorf("year %d listed but has no rows", y)
		}
		for i, o := range rows {
			if o.Time.Year() != y {
				p.errorf("year %d row %d has timestamp %s", y, i, o.Time)
			}
		}
		total += len(rows)
	}

	if total != ds.Len() {
		p.errorf("years cover %d rows, dataset has %d", total, ds.Len())
	}
	return p
}

// ── Phase 2: Map Tracks ──

func validateTracks(views []yearViews) *phase {
	p := &phase{name: "Phase 2: Map Tracks (grouping)"}

	for _, v := range views {
		seen := make(map[string]bool, len(v.tracks))
		points := 0
		for _, t := range v.tracks {
			if seen[t.Name] {
				p.errorf("%d: storm %q appears in more than one track", v.year, t.Name)
			}
			seen[t.Name] = true

			if t.Name != strings.TrimSpace(t.Name) {
				p.errorf("%d: storm name %q is not trimmed", v.year, t.Name)
			}
			if len(t.Lat) != len(t.Lon) {
				p.errorf("%d: storm %q has %d latitudes and %d longitudes", v.year, t.Name, len(t.Lat), len(t.Lon))
			}
			points += len(t.Lat)
		}
		if points != len(v.rows) {
			p.errorf("%d: tracks hold %d points, year has %d rows", v.year, points, len(v.rows))
		}
	}
	return p
}

// ── Phase 3: Class Counts ──

func validateClassCounts(views []yearViews) *phase {
	p := &phase{name: "Phase 3: Class Counts (conservation)"}

	for _, v := range views {
		sum := 0
		for _, c := range v.classes {
			if c.Count <= 0 {
				p.errorf("%d: class %q has count %d", v.year, c.Type, c.Count)
			}
			sum += c.Count
		}
		if sum != len(v.rows) {
			p.errorf("%d: class counts sum to %d, year has %d rows", v.year, sum, len(v.rows))
		}
	}
	return p
}

// ── Phase 4: Monthly Series ──

func validateMonthlySeries(views []yearViews) *phase {
	p := &phase{name: "Phase 4: Monthly Series (gap-fill)"}

	for _, v := range views {
		counts := classCounts(v.classes)
		if len(v.monthly) != len(v.classes) {
			p.errorf("%d: %d monthly series for %d classes", v.year, len(v.monthly), len(v.classes))
		}
		for _, s := range v.monthly {
			if len(s.Months) != 12 {
				p.errorf("%d: %q has %d months", v.year, s.Type, len(s.Months))
				continue
			}
			sum := 0
			for i, m := range s.Months {
				if m.Month != i+1 {
					p.errorf("%d: %q entry %d is month %d", v.year, s.Type, i, m.Month)
				}
				sum += m.Count
			}
			if sum != counts[s.Type] {
				p.errorf("%d: %q monthly total %d, class count %d", v.year, s.Type, sum, counts[s.Type])
			}
		}
	}
	return p
}

// ── Phase 5: Pressure Series ──

func validatePressureSeries(views []yearViews) *phase {
	p := &phase{name: "Phase 5: Pressure Series (box plot)"}

	for _, v := range views {
		counts := classCounts(v.classes)
		for _, s := range v.pressure {
			if len(s.Values) != counts[s.Type] {
				p.errorf("%d: %q has %d pressures, class count %d", v.year, s.Type, len(s.Values), counts[s.Type])
			}
			checkSummary(p, v.year, s)
		}
	}
	return p
}

func checkSummary(p *phase, year int, s domain.PressureSeries) {
	valid := domain.ValidValues(s.Values)
	if s.Summary == nil {
		if len(valid) > 0 {
			p.errorf("%d: %q has %d readings but no summary", year, s.Type, len(valid))
		}
		return
	}
	sum := s.Summary
	if sum.Count != len(valid) {
		p.errorf("%d: %q summary counts %d, series has %d readings", year, s.Type, sum.Count, len(valid))
	}
	ordered := []float64{sum.Min, sum.Q1, sum.Median, sum.Q3, sum.Max}
	for i := 1; i < len(ordered); i++ {
		if ordered[i] < ordered[i-1] {
			p.errorf("%d: %q summary is not ordered: %v", year, s.Type, ordered)
			break
		}
	}
	if sum.Mean < sum.Min || sum.Mean > sum.Max || math.IsNaN(sum.Mean) {
		p.errorf("%d: %q mean %.2f outside [%.2f, %.2f]", year, s.Type, sum.Mean, sum.Min, sum.Max)
	}
}

// ── Phase 6: Exported Dashboard ──

func validateExport(exported dashboard.Dashboard, views []yearViews) *phase {
	p := &phase{name: fmt.Sprintf("Phase 6: Exported Dashboard (%d)", exported.Year)}

	var fresh *yearViews
	for i := range views {
		if views[i].year == exported.Year {
			fresh = &views[i]
		}
	}
	if fresh == nil {
		p.errorf("exported year %d is not in the CSV", exported.Year)
		return p
	}

	if !reflect.DeepEqual(exported.Map, fresh.tracks) {
		p.errorf("map view differs from rebuild")
	}
	if !reflect.DeepEqual(exported.Class, fresh.classes) {
		p.errorf("class view differs: exported %v, rebuilt %v", exported.Class, fresh.classes)
	}
	if !reflect.DeepEqual(exported.Monthly, fresh.monthly) {
		p.errorf("monthly view differs from rebuild")
	}
	if len(exported.Pressure) != len(fresh.pressure) {
		p.errorf("pressure view has %d series, rebuilt %d", len(exported.Pressure), len(fresh.pressure))
		return p
	}
	for i := range fresh.pressure {
		if !reflect.DeepEqual(exported.Pressure[i].Values, fresh.pressure[i].Values) {
			p.errorf("pressure series %q differs from rebuild", fresh.pressure[i].Type)
		}
	}
	return p
}

func classCounts(classes []domain.ClassCount) map[string]int {
	m := make(map[string]int, len(classes))
	for _, c := range classes {
		m[c.Type] = c.Count
	}
	return m
}
