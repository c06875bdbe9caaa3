// Package dashboard computes the claims dashboard views: filtered
// aggregates, period comparisons, report presets, Slack messages and exports.
package dashboard

import (
	"sort"

	"claims-dashboard/internal/claims"
)

// defaultWindow is the number of most recent distinct dates selected on load.
const defaultWindow = 30

// Filter selects records by inclusive date range and insurer.
type Filter struct {
	Start    string // YYYY-MM-DD, inclusive
	End      string // YYYY-MM-DD, inclusive
	Insurers map[string]bool
}

// NewFilter builds a filter over the given insurers.
func NewFilter(start, end string, insurers []string) Filter {
	set := make(map[string]bool, len(insurers))
	for _, ins := range insurers {
		set[ins] = true
	}
	return Filter{Start: start, End: end, Insurers: set}
}

// Match reports whether r passes the filter.
func (f Filter) Match(r claims.Record) bool {
	return r.Date >= f.Start && r.Date <= f.End && f.Insurers[r.Insurer]
}

// Apply returns the records that pass the filter, in input order.
func (f Filter) Apply(records []claims.Record) []claims.Record {
	out := make([]claims.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// SelectedInsurers returns the selected insurers in sorted order.
func (f Filter) SelectedInsurers() []string {
	out := make([]string, 0, len(f.Insurers))
	for ins, ok := range f.Insurers {
		if ok {
			out = append(out, ins)
		}
	}
	sort.Strings(out)
	return out
}

// AllInsurers returns every distinct insurer, sorted.
func AllInsurers(records []claims.Record) []string {
	seen := map[string]bool{}
	for _, r := range records {
		seen[r.Insurer] = true
	}
	return sortedKeys(seen)
}

// DistinctDates returns every distinct date, sorted.
func DistinctDates(records []claims.Record) []string {
	seen := map[string]bool{}
	for _, r := range records {
		seen[r.Date] = true
	}
	return sortedKeys(seen)
}

// DefaultFilter selects the last 30 distinct dates and every insurer.
func DefaultFilter(records []claims.Record) Filter {
	dates := DistinctDates(records)
	f := NewFilter("", "", AllInsurers(records))
	if len(dates) > 0 {
		f.Start = dates[max(0, len(dates)-defaultWindow)]
		f.End = dates[len(dates)-1]
	}
	return f
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
