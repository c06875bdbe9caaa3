package dashboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"claims-dashboard/internal/claims"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	// defaultMonths is how many trailing months a month comparison starts with.
	defaultMonths = 3

	// maxMonthDays bounds the month overlay rows.
	maxMonthDays = 31
)

// Period is a labelled inclusive date range.
type Period struct {
	Label string `json:"label"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// NewPeriod orders from and to and fills in the default label when label
// is empty.
func NewPeriod(label, from, to string) Period {
	if to < from {
		from, to = to, from
	}
	if label == "" {
		label = PeriodLabel(from, to)
	}
	return Period{Label: label, From: from, To: to}
}

// PeriodLabel formats a range as "Jan 2 → Jan 8". Unparsable dates are
// used verbatim.
func PeriodLabel(from, to string) string {
	return shortDate(from) + " → " + shortDate(to)
}

func shortDate(s string) string {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2")
}

// PeriodStats aggregates one period of a comparison. Daily is keyed by day
// of month for month comparisons and by day offset from From (starting at
// 1) for custom periods. Delta and AvgDelta are nil for the first period.
type PeriodStats struct {
	Period
	Total     int            `json:"total"`
	Average   int            `json:"average"`
	Days      int            `json:"days"`
	ByInsurer map[string]int `json:"by_insurer"`
	Daily     map[int]int    `json:"daily"`
	Delta     *float64       `json:"delta,omitempty"`
	AvgDelta  *float64       `json:"avg_delta,omitempty"`
}

// DateBounds returns the minimum and maximum record dates, or empty
// strings when there are none.
func DateBounds(records []claims.Record) (minDate, maxDate string) {
	for _, r := range records {
		if r.Date == "" {
			continue
		}
		if minDate == "" || r.Date < minDate {
			minDate = r.Date
		}
		if r.Date > maxDate {
			maxDate = r.Date
		}
	}
	return minDate, maxDate
}

// AvailableMonths returns the distinct YYYY-MM prefixes of record dates,
// sorted.
func AvailableMonths(records []claims.Record) []string {
	seen := map[string]bool{}
	for _, r := range records {
		if len(r.Date) >= len(monthLayout) {
			seen[r.Date[:len(monthLayout)]] = true
		}
	}
	return sortedKeys(seen)
}

// DefaultMonths returns the last three available months.
func DefaultMonths(records []claims.Record) []string {
	months := AvailableMonths(records)
	return months[max(0, len(months)-defaultMonths):]
}

// DefaultCustomPeriods returns two consecutive 7-day windows, the later
// one ending at the latest record date.
func DefaultCustomPeriods(records []claims.Record) []Period {
	_, maxDate := DateBounds(records)
	end, err := time.Parse(dateLayout, maxDate)
	if err != nil {
		return nil
	}
	currentStart := end.AddDate(0, 0, -6)
	previousEnd := currentStart.AddDate(0, 0, -1)
	previousStart := previousEnd.AddDate(0, 0, -6)
	return []Period{
		{Label: "Previous Period", From: previousStart.Format(dateLayout), To: previousEnd.Format(dateLayout)},
		{Label: "Current Period", From: currentStart.Format(dateLayout), To: end.Format(dateLayout)},
	}
}

// CompareMonths aggregates each YYYY-MM month over the selected insurers.
// Months are compared in ascending order.
func CompareMonths(records []claims.Record, insurers, months []string) []PeriodStats {
	selected := insurerSet(insurers)
	sorted := append([]string(nil), months...)
	sort.Strings(sorted)

	out := make([]PeriodStats, 0, len(sorted))
	for _, month := range sorted {
		p := Period{Label: month, From: month + "-01", To: monthEnd(month)}
		stats := newStats(p)
		dates := map[string]bool{}
		for _, r := range records {
			if !selected[r.Insurer] || !strings.HasPrefix(r.Date, month) {
				continue
			}
			stats.add(r, dates)
			if day, err := strconv.Atoi(strings.TrimPrefix(r.Date, month+"-")); err == nil {
				stats.Daily[day] += r.ClaimsCount
			}
		}
		stats.finish(dates)
		out = append(out, stats)
	}
	return withDeltas(out)
}

// ComparePeriods aggregates arbitrary periods over the selected insurers.
// Periods are compared in order of their start date.
func ComparePeriods(records []claims.Record, insurers []string, periods []Period) []PeriodStats {
	selected := insurerSet(insurers)
	sorted := SortPeriods(periods)
	out := make([]PeriodStats, 0, len(sorted))
	for _, p := range sorted {
		if p.Label == "" {
			p.Label = PeriodLabel(p.From, p.To)
		}
		stats := newStats(p)
		from, fromErr := time.Parse(dateLayout, p.From)
		dates := map[string]bool{}
		for _, r := range records {
			if !selected[r.Insurer] || r.Date < p.From || r.Date > p.To {
				continue
			}
			stats.add(r, dates)
			if d, err := time.Parse(dateLayout, r.Date); err == nil && fromErr == nil {
				stats.Daily[int(d.Sub(from).Hours()/24)+1] += r.ClaimsCount
			}
		}
		stats.finish(dates)
		out = append(out, stats)
	}
	return withDeltas(out)
}

func newStats(p Period) PeriodStats {
	return PeriodStats{Period: p, ByInsurer: map[string]int{}, Daily: map[int]int{}}
}

func (s *PeriodStats) add(r claims.Record, dates map[string]bool) {
	s.Total += r.ClaimsCount
	s.ByInsurer[r.Insurer] += r.ClaimsCount
	dates[r.Date] = true
}

func (s *PeriodStats) finish(dates map[string]bool) {
	s.Days = len(dates)
	s.Average = average(s.Total, s.Days)
}

func withDeltas(stats []PeriodStats) []PeriodStats {
	for i := 1; i < len(stats); i++ {
		delta := PercentChange(stats[i].Total, stats[i-1].Total)
		avgDelta := PercentChange(stats[i].Average, stats[i-1].Average)
		stats[i].Delta = &delta
		stats[i].AvgDelta = &avgDelta
	}
	return stats
}

func monthEnd(month string) string {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return month + "-31"
	}
	return t.AddDate(0, 1, -1).Format(dateLayout)
}

func insurerSet(insurers []string) map[string]bool {
	set := make(map[string]bool, len(insurers))
	for _, ins := range insurers {
		set[ins] = true
	}
	return set
}

// PercentChange returns the change from prev to cur in percent. A rise from
// zero counts as 100.
func PercentChange(cur, prev int) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return float64(cur-prev) / float64(prev) * 100
}

// OverlayRow holds each period's daily count for one day number, in
// comparison order.
type OverlayRow struct {
	Day    int   `json:"day"`
	Values []int `json:"values"`
}

// Label is the chart axis label for the row.
func (r OverlayRow) Label() string {
	return fmt.Sprintf("Day %d", r.Day)
}

// MonthOverlay lines months up by day of month, dropping days on which no
// month has claims.
func MonthOverlay(stats []PeriodStats) []OverlayRow {
	var rows []OverlayRow
	for day := 1; day <= maxMonthDays; day++ {
		row := overlayRow(stats, day)
		for _, v := range row.Values {
			if v > 0 {
				rows = append(rows, row)
				break
			}
		}
	}
	return rows
}

// PeriodOverlay lines custom periods up by day offset. It has as many rows
// as the longest period has days with data, and at least one.
func PeriodOverlay(stats []PeriodStats) []OverlayRow {
	days := 1
	for _, s := range stats {
		days = max(days, s.Days)
	}
	rows := make([]OverlayRow, 0, days)
	for day := 1; day <= days; day++ {
		rows = append(rows, overlayRow(stats, day))
	}
	return rows
}

func overlayRow(stats []PeriodStats, day int) OverlayRow {
	row := OverlayRow{Day: day, Values: make([]int, len(stats))}
	for i, s := range stats {
		row.Values[i] = s.Daily[day]
	}
	return row
}

// InsurerRow is one insurer's count in each compared period. Deltas[i] is
// nil for the first period.
type InsurerRow struct {
	Insurer string     `json:"insurer"`
	Values  []int      `json:"values"`
	Deltas  []*float64 `json:"deltas"`
}

// InsurerComparison tabulates each insurer across the compared periods,
// sorted by the last period's count, highest first.
func InsurerComparison(stats []PeriodStats, insurers []string) []InsurerRow {
	names := append([]string(nil), insurers...)
	sort.Strings(names)

	rows := make([]InsurerRow, 0, len(names))
	for _, ins := range names {
		row := InsurerRow{Insurer: ins, Values: make([]int, len(stats)), Deltas: make([]*float64, len(stats))}
		for i, s := range stats {
			row.Values[i] = s.ByInsurer[ins]
			if i > 0 {
				d := PercentChange(row.Values[i], row.Values[i-1])
				row.Deltas[i] = &d
			}
		}
		rows = append(rows, row)
	}
	if last := len(stats) - 1; last >= 0 {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Values[last] > rows[j].Values[last] })
	}
	return rows
}
