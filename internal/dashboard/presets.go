package dashboard

import (
	"fmt"
	"sort"
	"time"
)

// Preset names a canned report period selection.
type Preset string

const (
	PresetWeekly    Preset = "weekly"
	PresetWoW       Preset = "wow"
	PresetMonthly   Preset = "monthly"
	PresetMoM       Preset = "mom"
	PresetMonthWeek Preset = "monthweek"
)

// Presets lists the preset names in display order.
var Presets = []Preset{PresetWeekly, PresetWoW, PresetMonthly, PresetMoM, PresetMonthWeek}

// PresetPeriods resolves a preset relative to the latest record date.
// Weeks run Monday to Sunday; "last week" is the most recent week that
// ended before the week containing latest.
func PresetPeriods(p Preset, latest string) ([]Period, error) {
	today, err := time.Parse(dateLayout, latest)
	if err != nil {
		return nil, fmt.Errorf("invalid reference date %q: %w", latest, err)
	}

	offset := int(today.Weekday()) - 1
	if today.Weekday() == time.Sunday {
		offset = 6
	}
	thisMonday := today.AddDate(0, 0, -offset)
	lastMonday := thisMonday.AddDate(0, 0, -7)
	lastWeek := period("Last Week", lastMonday, thisMonday.AddDate(0, 0, -1))
	twoWeeksAgo := period("2 Weeks Ago", lastMonday.AddDate(0, 0, -7), lastMonday.AddDate(0, 0, -1))

	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := monthPeriod(firstOfMonth.AddDate(0, -1, 0))
	prevMonth := monthPeriod(firstOfMonth.AddDate(0, -2, 0))

	switch p {
	case PresetWeekly:
		return []Period{lastWeek}, nil
	case PresetWoW:
		return []Period{twoWeeksAgo, lastWeek}, nil
	case PresetMonthly:
		return []Period{lastMonth}, nil
	case PresetMoM:
		return []Period{prevMonth, lastMonth}, nil
	case PresetMonthWeek:
		return []Period{lastMonth, lastWeek}, nil
	default:
		return nil, fmt.Errorf("unknown report preset %q", p)
	}
}

// SortPeriods orders periods by start date.
func SortPeriods(periods []Period) []Period {
	out := append([]Period(nil), periods...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

func period(label string, from, to time.Time) Period {
	return Period{Label: label, From: from.Format(dateLayout), To: to.Format(dateLayout)}
}

func monthPeriod(first time.Time) Period {
	return period(first.Format("January 2006"), first, first.AddDate(0, 1, -1))
}
