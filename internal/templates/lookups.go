package templates

import (
	"claims-dashboard/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

func caresAnalysis() []Template {
	return []Template{
		{
			Key:         "v1_cares",
			Name:        "Non-V2 Cares",
			Description: "All cares not yet on CVE version 2",
			Category:    "cares_analysis",
			BaseTable:   "cares",
			build: func(Filters, string) sq.SelectBuilder {
				version := sqlutil.QuoteIdentifier("cve_version")
				return sq.Select(quoted("id", "name", "type", "active", "type_id", "cve_version")...).
					From(sqlutil.QuoteIdentifier("cares")).
					Where(version + " IS NULL OR " + version + " <> 2").
					OrderBy(sqlutil.QuoteIdentifier("name"))
			},
		},
		{
			Key:         "cve_version_summary",
			Name:        "CVE Version Summary",
			Description: "Count of cares grouped by CVE version",
			Category:    "cares_analysis",
			Aggregate:   true,
			BaseTable:   "cares",
			build: func(Filters, string) sq.SelectBuilder {
				return countBy("cares", "cve_version", "total_cares")
			},
		},
	}
}

func referenceLookups() []Template {
	return []Template{
		{
			Key:         "distinct_hmo_status",
			Name:        "Distinct HMO Statuses",
			Description: "All unique hmo_status values",
			Category:    "reference",
			Aggregate:   true,
			BaseTable:   "claims",
			build: func(Filters, string) sq.SelectBuilder {
				status := sqlutil.QuoteIdentifier("hmo_status")
				return sq.Select(status).Distinct().From(sqlutil.QuoteIdentifier("claims")).OrderBy(status)
			},
		},
		{
			Key:         "distinct_provider_status",
			Name:        "Provider Status Breakdown",
			Description: "Provider status values with counts",
			Category:    "reference",
			Aggregate:   true,
			BaseTable:   "claims",
			build: func(Filters, string) sq.SelectBuilder {
				return countBy("claims", "provider_status", "total")
			},
		},
		{
			Key:         "item_status_breakdown",
			Name:        "Claim Item Status",
			Description: "All item_status values with counts",
			Category:    "reference",
			Aggregate:   true,
			BaseTable:   "claim_items",
			build: func(Filters, string) sq.SelectBuilder {
				return countBy("claim_items", "item_status", "total")
			},
		},
	}
}

// countBy counts rows of table per distinct value of column.
func countBy(table, column, countAlias string) sq.SelectBuilder {
	c := sqlutil.QuoteIdentifier(column)
	return sq.Select(c, as("COUNT(*)", countAlias)).
		From(sqlutil.QuoteIdentifier(table)).
		GroupBy(c).
		OrderBy(c)
}

func quoted(names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = sqlutil.QuoteIdentifier(n)
	}
	return out
}
