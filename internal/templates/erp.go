package templates

import (
	"strconv"
	"unicode/utf8"

	"claims-dashboard/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

func claimsERP() []Template {
	return []Template{
		{
			Key:         "erp_range",
			Name:        "ERP ID Range",
			Description: "First and last ERP IDs in a date range",
			Category:    "claims_erp",
			Aggregate:   true,
			Accepts:     []Field{FieldHMOID, FieldDateRange, FieldERPPrefix},
			BaseTable:   "claims",
			build:       buildERPRange,
		},
		{
			Key:         "erp_detail_list",
			Name:        "ERP Detail List",
			Description: "Claims with ERP IDs sorted chronologically",
			Category:    "claims_erp",
			Heavy:       true,
			Accepts:     []Field{FieldHMOID, FieldDateRange, FieldERPPrefix},
			BaseTable:   "claims",
			build:       buildERPDetailList,
		},
	}
}

// erpNumber extracts the numeric part of an ERP id after the prefix.
func erpNumber(column, prefix string) string {
	return "CAST(SUBSTRING(" + column + ", " + strconv.Itoa(utf8.RuneCountInString(prefix)+1) + ") AS UNSIGNED)"
}

func buildERPRange(f Filters, _ string) sq.SelectBuilder {
	px := erpPrefix(f)
	erp := sqlutil.QuoteIdentifier("hmo_erp_id")
	date := sqlutil.QuoteIdentifier("encounter_date")

	var w conditions
	w.hmo(sqlutil.QuoteIdentifier("hmo_id"), f)
	w.dateRange(date, f)
	w.add(erp + " LIKE " + prefixPattern(px))

	return w.apply(sq.Select(
		as("CONCAT("+sqlutil.Literal(px)+", MIN("+erpNumber(erp, px)+"))", "first_erp_id"),
		as("CONCAT("+sqlutil.Literal(px)+", MAX("+erpNumber(erp, px)+"))", "last_erp_id"),
	).From(sqlutil.QuoteIdentifier("claims")))
}

func buildERPDetailList(f Filters, _ string) sq.SelectBuilder {
	px := erpPrefix(f)
	c, e, p := col("c"), col("e"), col("p")

	var w conditions
	w.hmo(c("hmo_id"), f)
	w.dateRange(c("encounter_date"), f)
	w.add(c("hmo_erp_id") + " LIKE " + prefixPattern(px))

	return w.apply(sq.Select(
		c("hmo_erp_id"),
		c("encounter_date"),
		as(fullName(e), "enrollee_name"),
		e("insurance_no"),
		as(p("name"), "provider_name"),
		c("total_amount"),
	).
		From(sqlutil.TableAs("claims", "c")).
		Join(on("enrollees", "e", eq(e("id"), c("enrollee_id")))).
		Join(on("providers", "p", eq(p("id"), c("provider_id")))).
		OrderBy(c("encounter_date")+" ASC", erpNumber(c("hmo_erp_id"), px)+" ASC"))
}
