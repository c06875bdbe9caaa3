package dashboard

import (
	"testing"

	"claims-dashboard/internal/claims"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		cur, prev int
		want      float64
	}{
		{cur: 150, prev: 100, want: 50},
		{cur: 50, prev: 100, want: -50},
		{cur: 5, prev: 0, want: 100},
		{cur: 0, prev: 0, want: 0},
		{cur: 0, prev: 10, want: -100},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, PercentChange(tt.cur, tt.prev), 0.0001, "cur=%d prev=%d", tt.cur, tt.prev)
	}
}

func TestMonthsAndBounds(t *testing.T) {
	records := []claims.Record{
		rec("2026-01-10", "Avon", 1),
		rec("2025-11-02", "Avon", 1),
		rec("2026-02-01", "Avon", 1),
		rec("2025-12-31", "Avon", 1),
		{Insurer: "Avon"},
	}
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, AvailableMonths(records))
	assert.Equal(t, []string{"2025-12", "2026-01", "2026-02"}, DefaultMonths(records))

	minDate, maxDate := DateBounds(records)
	assert.Equal(t, "2025-11-02", minDate)
	assert.Equal(t, "2026-02-01", maxDate)
}

func TestDefaultCustomPeriods(t *testing.T) {
	got := DefaultCustomPeriods([]claims.Record{rec("2026-01-14", "Avon", 1), rec("2026-01-02", "Avon", 1)})
	assert.Equal(t, []Period{
		{Label: "Previous Period", From: "2026-01-01", To: "2026-01-07"},
		{Label: "Current Period", From: "2026-01-08", To: "2026-01-14"},
	}, got)

	assert.Nil(t, DefaultCustomPeriods(nil))
}

func TestNewPeriod(t *testing.T) {
	p := NewPeriod("", "2026-01-08", "2026-01-02")
	assert.Equal(t, Period{Label: "Jan 2 → Jan 8", From: "2026-01-02", To: "2026-01-08"}, p)

	assert.Equal(t, "Q1", NewPeriod("Q1", "2026-01-01", "2026-03-31").Label)
}

func monthRecords() []claims.Record {
	return []claims.Record{
		rec("2026-01-05", "Avon", 10),
		rec("2026-01-06", "Avon", 20),
		rec("2026-02-05", "Avon", 15),
		rec("2026-02-05", "Bupa", 15),
		rec("2026-02-28", "Avon", 0),
	}
}

func TestCompareMonths(t *testing.T) {
	stats := CompareMonths(monthRecords(), []string{"Avon", "Bupa"}, []string{"2026-02", "2026-01"})
	require.Len(t, stats, 2)

	jan, feb := stats[0], stats[1]
	assert.Equal(t, Period{Label: "2026-01", From: "2026-01-01", To: "2026-01-31"}, jan.Period)
	assert.Equal(t, 30, jan.Total)
	assert.Equal(t, 2, jan.Days)
	assert.Equal(t, 15, jan.Average)
	assert.Equal(t, map[int]int{5: 10, 6: 20}, jan.Daily)
	assert.Nil(t, jan.Delta)
	assert.Nil(t, jan.AvgDelta)

	assert.Equal(t, "2026-02-28", feb.To)
	assert.Equal(t, map[string]int{"Avon": 15, "Bupa": 15}, feb.ByInsurer)
	require.NotNil(t, feb.Delta)
	assert.InDelta(t, 0, *feb.Delta, 0.0001)
}

func TestCompareMonthsInsurerSubset(t *testing.T) {
	stats := CompareMonths(monthRecords(), []string{"Avon"}, []string{"2026-01", "2026-02"})
	feb := stats[1]
	assert.Equal(t, 15, feb.Total)
	// 7.5 rounds half away from zero.
	assert.Equal(t, 8, feb.Average)
	require.NotNil(t, feb.Delta)
	assert.InDelta(t, -50, *feb.Delta, 0.0001)
	assert.InDelta(t, PercentChange(8, 15), *feb.AvgDelta, 0.0001)
}

func TestMonthOverlay(t *testing.T) {
	stats := CompareMonths(monthRecords(), []string{"Avon", "Bupa"}, []string{"2026-01", "2026-02"})
	rows := MonthOverlay(stats)
	assert.Equal(t, []OverlayRow{
		{Day: 5, Values: []int{10, 30}},
		{Day: 6, Values: []int{20, 0}},
	}, rows)
	assert.Equal(t, "Day 5", rows[0].Label())
}

func periodRecords() []claims.Record {
	return []claims.Record{
		rec("2026-01-01", "Avon", 1200),
		rec("2026-01-03", "Avon", 800),
		rec("2026-01-08", "Avon", 1000),
		rec("2026-01-09", "Bupa", 1500),
	}
}

func periodStats() []PeriodStats {
	return ComparePeriods(periodRecords(), []string{"Avon", "Bupa"}, []Period{
		{Label: "Wk2", From: "2026-01-08", To: "2026-01-14"},
		{Label: "Wk1", From: "2026-01-01", To: "2026-01-07"},
	})
}

func TestComparePeriods(t *testing.T) {
	stats := periodStats()
	require.Len(t, stats, 2)

	assert.Equal(t, "Wk1", stats[0].Label)
	assert.Equal(t, 2000, stats[0].Total)
	assert.Equal(t, 1000, stats[0].Average)
	assert.Equal(t, map[int]int{1: 1200, 3: 800}, stats[0].Daily)

	assert.Equal(t, "Wk2", stats[1].Label)
	assert.Equal(t, map[int]int{1: 1000, 2: 1500}, stats[1].Daily)
	require.NotNil(t, stats[1].Delta)
	assert.InDelta(t, 25, *stats[1].Delta, 0.0001)
}

func TestComparePeriodsDefaultLabel(t *testing.T) {
	stats := ComparePeriods(periodRecords(), []string{"Avon"}, []Period{{From: "2026-01-01", To: "2026-01-07"}})
	require.Len(t, stats, 1)
	assert.Equal(t, "Jan 1 → Jan 7", stats[0].Label)
}

func TestPeriodOverlay(t *testing.T) {
	rows := PeriodOverlay(periodStats())
	// Rows follow the largest count of days with data, so day 3 of Wk1 is
	// not charted.
	assert.Equal(t, []OverlayRow{
		{Day: 1, Values: []int{1200, 1000}},
		{Day: 2, Values: []int{0, 1500}},
	}, rows)

	empty := PeriodOverlay(nil)
	require.Len(t, empty, 1)
	assert.Equal(t, 1, empty[0].Day)
}

func TestInsurerComparison(t *testing.T) {
	rows := InsurerComparison(periodStats(), []string{"Avon", "Bupa"})
	require.Len(t, rows, 2)

	assert.Equal(t, "Bupa", rows[0].Insurer)
	assert.Equal(t, []int{0, 1500}, rows[0].Values)
	assert.Nil(t, rows[0].Deltas[0])
	require.NotNil(t, rows[0].Deltas[1])
	assert.InDelta(t, 100, *rows[0].Deltas[1], 0.0001)

	assert.Equal(t, "Avon", rows[1].Insurer)
	assert.InDelta(t, -50, *rows[1].Deltas[1], 0.0001)
}
