// Package domain models historical Western Pacific storm observations and
// the chart-ready views derived from them.
//
// # Data Source
//
// Observations come from a static CSV scraped from wunderground.com storm
// archives. Each row is one position fix of one storm at one timestamp. The
// file is read once at startup by [LoadObservations] and wrapped in an
// immutable [Dataset]; nothing writes to it afterwards.
//
// # CSV Conventions
//
// Required columns (header row, any order, extra columns ignored):
//
//	storm_name, datetime, latitude, longitude, storm_type, pressure
//
// Time format:
//
//	MM/DD/YYYY HH:MM in 24-hour notation, e.g. "08/14/2004 18:00".
//	Single-digit month, day and hour are accepted ("8/4/2004 6:00").
//	No zone is given; values are read as UTC.
//
// Names and types:
//
//	The scraper leaves padding around storm names (" Amy "). Names and types
//	are trimmed at load time so grouping compares the trimmed values.
//
// Pressure:
//
//	Central pressure in millibars. Empty cells and the markers NA, N/A, NaN
//	and "-" load as a missing [Pressure] that stays in place in the
//	pressure view. Anything else that is not a number fails the load.
//
// # Views
//
// Every view is a pure function of a year-filtered observation slice:
//
//	Map      [MapView]       storm name -> ordered lat/lon track
//	Pie      [ClassView]     storm type -> observation count
//	Line     [MonthlyView]   storm type -> 12 monthly counts, Jan..Dec
//	Box      [PressureView]  storm type -> ordered pressures + summary
//
// Grouping keeps the order in which keys are first seen in the CSV, and
// items within a group keep CSV order. Chart colors are assigned by series
// position, so this order keeps colors stable between years.
package domain
