package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"claims-dashboard/internal/claims"
	"claims-dashboard/internal/naming"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	messageTrailer = "_Sent from Claims Intelligence Dashboard_"
	topInsurers    = 10
)

var printer = message.NewPrinter(language.English)

func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatChange(pct float64) string {
	sign := ""
	if pct > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, pct)
}

func share(n, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(n)/float64(total)*100)
}

type insurerCount struct {
	name  string
	count int
}

// rankInsurers sorts by count descending, then by name.
func rankInsurers(byInsurer map[string]int) []insurerCount {
	out := make([]insurerCount, 0, len(byInsurer))
	for name, count := range byInsurer {
		out = append(out, insurerCount{name: name, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

// ReportMessage renders a multi-period Slack report. Stats are expected
// in comparison order, as returned by ComparePeriods. The top insurers of
// the last period are listed with their change against the period before.
func ReportMessage(stats []PeriodStats) string {
	lines := []string{"📋 *Claims Intelligence Report*", ""}
	for i, p := range stats {
		lines = append(lines,
			fmt.Sprintf("*%s* (%s → %s)", p.Label, p.From, p.To),
			fmt.Sprintf("  🏥 Total Claims: *%s*", formatCount(p.Total)),
			fmt.Sprintf("  📊 Daily Avg: *%s* | %s", formatCount(p.Average), naming.Counted(p.Days, "day")),
		)
		if i > 0 {
			prev := stats[i-1]
			delta := PercentChange(p.Total, prev.Total)
			arrow := "➡️"
			switch {
			case delta > 0:
				arrow = "📈"
			case delta < 0:
				arrow = "📉"
			}
			lines = append(lines, fmt.Sprintf("  %s Change: *%s* vs %s", arrow, formatChange(delta), prev.Label))
		}
		lines = append(lines, "")
	}

	if n := len(stats); n > 0 {
		last := stats[n-1]
		lines = append(lines, fmt.Sprintf("*Top Insurers (%s):*", last.Label))
		ranked := rankInsurers(last.ByInsurer)
		for i, ic := range ranked[:min(topInsurers, len(ranked))] {
			delta := ""
			if n > 1 {
				delta = " (" + formatChange(PercentChange(ic.count, stats[n-2].ByInsurer[ic.name])) + ")"
			}
			lines = append(lines, fmt.Sprintf("%d. %s: *%s*%s", i+1, ic.name, formatCount(ic.count), delta))
		}
	}

	lines = append(lines, "", messageTrailer)
	return strings.Join(lines, "\n")
}

// SummaryMessage renders the single-period Slack summary for the records
// matching f, with each insurer's share of the total.
func SummaryMessage(records []claims.Record, f Filter) string {
	matched := f.Apply(records)
	summary := Summarize(matched)
	byInsurer := map[string]int{}
	for _, r := range matched {
		byInsurer[r.Insurer] += r.ClaimsCount
	}

	peak := "—"
	if summary.Peak != nil {
		peak = fmt.Sprintf("%s (%s)", formatCount(summary.Peak.Total), summary.Peak.Date)
	}

	lines := []string{
		"📊 *Claims Intelligence Report*",
		fmt.Sprintf("📅 Period: %s → %s", f.Start, f.End),
		"",
		fmt.Sprintf("🏥 Total Claims: *%s*", formatCount(summary.Total)),
		fmt.Sprintf("📈 Daily Average: *%s*", formatCount(summary.Average)),
		fmt.Sprintf("🔥 Peak Day: *%s*", peak),
		fmt.Sprintf("🏢 Insurers: *%d* selected", len(f.SelectedInsurers())),
		"",
		"*Breakdown:*",
	}
	for i, ic := range rankInsurers(byInsurer) {
		lines = append(lines, fmt.Sprintf("%d. %s: *%s* (%s%%)", i+1, ic.name, formatCount(ic.count), share(ic.count, summary.Total)))
	}
	lines = append(lines, "", messageTrailer)
	return strings.Join(lines, "\n")
}
