package dashboard

import (
	"math"
	"sort"
	"strings"

	"claims-dashboard/internal/claims"
)

// DailyTotal is the claim count summed over insurers for one date.
type DailyTotal struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
}

// DailyTotals sums counts per date, sorted by date.
func DailyTotals(records []claims.Record) []DailyTotal {
	sums := map[string]int{}
	for _, r := range records {
		sums[r.Date] += r.ClaimsCount
	}
	out := make([]DailyTotal, 0, len(sums))
	for date, total := range sums {
		out = append(out, DailyTotal{Date: date, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// InsurerTotal is one insurer's claims over a filter. Days counts records
// with a positive count.
type InsurerTotal struct {
	Insurer string `json:"insurer"`
	Total   int    `json:"total"`
	Days    int    `json:"days"`
}

// SortKey orders insurer totals.
type SortKey string

const (
	SortByClaims SortKey = "claims"
	SortByName   SortKey = "name"
)

// InsurerTotals sums counts per insurer and sorts them by key, descending
// unless ascending is set. Ties keep insurer name order.
func InsurerTotals(records []claims.Record, key SortKey, ascending bool) []InsurerTotal {
	byInsurer := map[string]*InsurerTotal{}
	for _, r := range records {
		t, ok := byInsurer[r.Insurer]
		if !ok {
			t = &InsurerTotal{Insurer: r.Insurer}
			byInsurer[r.Insurer] = t
		}
		t.Total += r.ClaimsCount
		if r.ClaimsCount > 0 {
			t.Days++
		}
	}
	out := make([]InsurerTotal, 0, len(byInsurer))
	for _, t := range byInsurer {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Insurer < out[j].Insurer })

	less := func(a, b InsurerTotal) bool { return a.Total < b.Total }
	if key == SortByName {
		less = func(a, b InsurerTotal) bool { return strings.Compare(a.Insurer, b.Insurer) < 0 }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}

// Summary is the headline numbers for a filtered set.
type Summary struct {
	Total   int         `json:"total"`
	Average int         `json:"average"`
	Days    int         `json:"days"`
	Peak    *DailyTotal `json:"peak,omitempty"`
}

// Summarize computes the total, the rounded average per distinct date and
// the peak day. Peak is nil when no day has a positive total.
func Summarize(records []claims.Record) Summary {
	daily := DailyTotals(records)
	s := Summary{Days: len(daily)}
	for _, r := range records {
		s.Total += r.ClaimsCount
	}
	s.Average = average(s.Total, s.Days)
	for i := range daily {
		if daily[i].Total > 0 && (s.Peak == nil || daily[i].Total > s.Peak.Total) {
			peak := daily[i]
			s.Peak = &peak
		}
	}
	return s
}

func average(total, days int) int {
	if days == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(days)))
}

// TrendPoint holds each insurer's count on one date.
type TrendPoint struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

// Trend returns per-date insurer counts, sorted by date. A later record for
// the same date and insurer replaces an earlier one.
func Trend(records []claims.Record) []TrendPoint {
	byDate := map[string]map[string]int{}
	for _, r := range records {
		m, ok := byDate[r.Date]
		if !ok {
			m = map[string]int{}
			byDate[r.Date] = m
		}
		m[r.Insurer] = r.ClaimsCount
	}
	out := make([]TrendPoint, 0, len(byDate))
	for date, counts := range byDate {
		out = append(out, TrendPoint{Date: date, Counts: counts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Pivot is a date by insurer grid of claim counts.
type Pivot struct {
	Dates    []string
	Insurers []string
	cells    map[string]map[string]int
}

// BuildPivot lays records out by date and insurer. Dates come from the
// records; insurers are the given selection, sorted.
func BuildPivot(records []claims.Record, insurers []string) Pivot {
	p := Pivot{
		Dates:    DistinctDates(records),
		Insurers: append([]string(nil), insurers...),
		cells:    map[string]map[string]int{},
	}
	sort.Strings(p.Insurers)
	for _, r := range records {
		row, ok := p.cells[r.Insurer]
		if !ok {
			row = map[string]int{}
			p.cells[r.Insurer] = row
		}
		row[r.Date] = r.ClaimsCount
	}
	return p
}

// Cell returns the count for insurer on date, 0 when absent.
func (p Pivot) Cell(insurer, date string) int {
	return p.cells[insurer][date]
}

// DateTotal sums a date column over the pivot's insurers.
func (p Pivot) DateTotal(date string) int {
	sum := 0
	for _, ins := range p.Insurers {
		sum += p.Cell(ins, date)
	}
	return sum
}

// InsurerTotal sums an insurer row over the pivot's dates.
func (p Pivot) InsurerTotal(insurer string) int {
	sum := 0
	for _, d := range p.Dates {
		sum += p.Cell(insurer, d)
	}
	return sum
}

// GrandTotal sums every cell.
func (p Pivot) GrandTotal() int {
	sum := 0
	for _, ins := range p.Insurers {
		sum += p.InsurerTotal(ins)
	}
	return sum
}
