// Package safety classifies template queries that risk scanning very large
// tables and decides whether a row limit is injected.
package safety

import (
	"strings"

	"claims-dashboard/internal/sqlutil"
	"claims-dashboard/internal/templates"
)

// DefaultLimit is the row limit applied to heavy templates while the limit
// toggle is on.
const DefaultLimit = 1000

const (
	// WarnUnfiltered is shown for a heavy template run without an HMO or date filter.
	WarnUnfiltered = "No HMO or date filter — this may return millions of rows and be very slow."
	// WarnLimitOff is shown for a filtered heavy template with the limit toggle off.
	WarnLimitOff = "LIMIT is off — large result set possible. Use with caution."
)

// Assessment is the outcome of classifying a template and its filters.
type Assessment struct {
	Expensive bool
	// LimitToggle is true when the caller should offer a limit switch.
	LimitToggle bool
	// Limit is nil when no LIMIT should be rendered.
	Limit   *int
	Warning string
}

// IsExpensive reports whether a heavy template would run without a concrete
// HMO or a complete date range. Filters the template does not read do not
// count as narrowing it.
func IsExpensive(t templates.Template, f templates.Filters) bool {
	if !t.Heavy {
		return false
	}
	return !hasHMO(t, f) && !hasDateRange(t, f)
}

// Assess classifies t under f. limitOn is the state of the user's limit
// toggle and only matters for heavy templates.
func Assess(t templates.Template, f templates.Filters, limitOn bool) Assessment {
	a := Assessment{
		Expensive:   IsExpensive(t, f),
		LimitToggle: t.Heavy,
	}
	if t.Heavy && limitOn {
		n := DefaultLimit
		a.Limit = &n
	}

	switch {
	case a.Expensive:
		a.Warning = WarnUnfiltered
	case t.Heavy && !limitOn:
		a.Warning = WarnLimitOff
	}
	return a
}

func hasHMO(t templates.Template, f templates.Filters) bool {
	if !t.AcceptsField(templates.FieldHMOID) {
		return false
	}
	v, _ := f.Get(templates.FieldHMOID)
	_, ok := sqlutil.NormalizeHMOID(v)
	return ok
}

func hasDateRange(t templates.Template, f templates.Filters) bool {
	if !t.AcceptsField(templates.FieldDateRange) {
		return false
	}
	return present(f, templates.FieldDateFrom) && present(f, templates.FieldDateTo)
}

func present(f templates.Filters, field templates.Field) bool {
	v, _ := f.Get(field)
	return strings.TrimSpace(v) != ""
}
