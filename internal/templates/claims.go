package templates

import (
	"claims-dashboard/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

func claimsReports() []Template {
	return []Template{
		{
			Key:              "full_claims_extract",
			Name:             "Full Claims Extract",
			Description:      "Detailed claims with items, enrollees, and provider info",
			Category:         "claims_reports",
			Heavy:            true,
			Accepts:          []Field{FieldHMOID, FieldDateRange, FieldDateField, FieldHMOStatus, FieldProviderStatus, FieldProviderName, FieldVettedOnly, FieldHasUnmatchedTariff},
			BaseTable:        "claims",
			DefaultDateField: "created_at",
			build:            buildFullClaimsExtract,
		},
		{
			Key:              "claims_summary",
			Name:             "Claims Summary (Grouped)",
			Description:      "Aggregated claim counts and amounts per claim",
			Category:         "claims_reports",
			Heavy:            true,
			Accepts:          []Field{FieldHMOID, FieldDateRange, FieldDateField, FieldProviderStatus, FieldProviderName},
			BaseTable:        "claims",
			DefaultDateField: "encounter_date",
			build:            buildClaimsSummary,
		},
		{
			Key:              "claim_count",
			Name:             "Claim Count",
			Description:      "Count of claims with filters",
			Category:         "claims_reports",
			Aggregate:        true,
			Accepts:          []Field{FieldHMOID, FieldDateRange, FieldDateField, FieldProviderStatus, FieldHMOStatus},
			BaseTable:        "claims",
			DefaultDateField: "submitted_at",
			Note:             "Aggregate: returns a single row",
			build:            buildClaimCount,
		},
		{
			Key:              "claims_status_breakdown",
			Name:             "Status Breakdown",
			Description:      "Claims grouped by hmo_status with amounts",
			Category:         "claims_reports",
			Aggregate:        true,
			Accepts:          []Field{FieldHMOID, FieldDateRange, FieldDateField},
			BaseTable:        "claims",
			DefaultDateField: "created_at",
			Note:             "hmo_status: -1=Rejected, 0=Pending, 1=Approved",
			build:            buildStatusBreakdown,
		},
		{
			Key:         "todays_claims",
			Name:        "Today's Claims",
			Description: "Claims created today for a specific HMO",
			Category:    "claims_reports",
			Heavy:       true,
			Accepts:     []Field{FieldHMOID},
			BaseTable:   "claims",
			build:       buildTodaysClaims,
		},
	}
}

func buildFullClaimsExtract(f Filters, dateField string) sq.SelectBuilder {
	c, p, e, ci := col("claims"), col("providers"), col("enrollees"), col("claim_items")

	var w conditions
	w.hmo(c("hmo_id"), f)
	w.number(c("hmo_status"), f, FieldHMOStatus)
	w.number(c("provider_status"), f, FieldProviderStatus)
	if name, ok := f.text(FieldProviderName); ok {
		w.add(p("name") + " LIKE " + sqlutil.Literal("%"+name+"%"))
	}
	if f.enabled(FieldVettedOnly) {
		w.add(c("vetted_at") + " IS NOT NULL")
	}
	if f.enabled(FieldHasUnmatchedTariff) {
		w.add(c("has_unmatched_tariff") + " = 1")
	}
	w.dateRange(c(dateField), f)

	q := sq.Select(
		c("id"),
		c("hmo_id"),
		as(p("name"), "Provider_Name"),
		as(fullName(e), "Enrollee_Name"),
		as("TIMESTAMPDIFF(YEAR, "+e("birthdate")+", CURDATE())", "Enrollee_Age"),
		c("encounter_date"),
		e("insurance_no"),
		as(c("total_amount"), "Amount_Submitted"),
		as(c("approved_amount"), "Amount_Approved"),
		c("submitted_at"),
		c("provider_status"),
		c("hmo_status"),
		c("hmo_pile_id"),
		c("approval_code"),
		c("vetted_at"),
		c("hmo_erp_id"),
		c("entry_point"),
		as(ci("description"), "Item_Name"),
		as(ci("id"), "Item_ID"),
		as(ci("qty"), "Item_Qty"),
		as(ci("amount"), "Item_Billed"),
		as(ci("approved_amount"), "Item_Approved"),
		ci("approved_qty"),
		as(col("claim_item_comments")("name"), "Item_Comment"),
	).
		From(sqlutil.QuoteIdentifier("claims")).
		LeftJoin(on("providers", "", eq(c("provider_id"), p("id")))).
		LeftJoin(on("enrollees", "", eq(c("enrollee_id"), e("id")))).
		LeftJoin(on("claim_items", "", eq(c("id"), ci("claim_id")))).
		LeftJoin(on("claim_item_comments", "", eq(ci("comment_id"), col("claim_item_comments")("id")))).
		OrderBy(c("created_at") + " DESC")
	return w.apply(q)
}

func buildClaimsSummary(f Filters, dateField string) sq.SelectBuilder {
	c, p, e, ci := col("claims"), col("providers"), col("enrollees"), col("claim_items")

	var w conditions
	w.hmo(c("hmo_id"), f)
	w.number(c("provider_status"), f, FieldProviderStatus)
	if name, ok := f.text(FieldProviderName); ok {
		w.add(p("name") + " = " + sqlutil.Literal(name))
	}
	w.dateRange(c(dateField), f)

	q := sq.Select(
		as(c("id"), "Claim_ID"),
		c("hmo_id"),
		as(p("name"), "Provider_Name"),
		as(fullName(e), "Enrollee_Name"),
		c("encounter_date"),
		c("total_amount"),
		c("approved_amount"),
		as("COUNT(DISTINCT "+ci("id")+")", "Item_Count"),
		as("SUM("+ci("amount")+")", "Total_Item_Billed"),
		as("SUM("+ci("approved_amount")+")", "Total_Item_Approved"),
	).
		From(sqlutil.QuoteIdentifier("claims")).
		LeftJoin(on("providers", "", eq(c("provider_id"), p("id")))).
		LeftJoin(on("enrollees", "", eq(c("enrollee_id"), e("id")))).
		LeftJoin(on("claim_items", "", eq(c("id"), ci("claim_id")))).
		GroupBy(c("id")).
		OrderBy(c("encounter_date") + " DESC")
	return w.apply(q)
}

func buildClaimCount(f Filters, dateField string) sq.SelectBuilder {
	c := col("claims")

	var w conditions
	w.hmo(c("hmo_id"), f)
	w.number(c("hmo_status"), f, FieldHMOStatus)
	w.number(c("provider_status"), f, FieldProviderStatus)
	w.dateRange(c(dateField), f)

	return w.apply(sq.Select(as("COUNT(DISTINCT "+c("id")+")", "claim_count")).
		From(sqlutil.QuoteIdentifier("claims")))
}

func buildStatusBreakdown(f Filters, dateField string) sq.SelectBuilder {
	c := col("claims")

	var w conditions
	w.hmo(c("hmo_id"), f)
	w.dateRange(c(dateField), f)

	status := sqlutil.QuoteIdentifier("hmo_status")
	return w.apply(sq.Select(
		status,
		as("COUNT(*)", "total"),
		as("SUM("+sqlutil.QuoteIdentifier("approved_amount")+")", "total_approved_amount"),
		as("COUNT("+sqlutil.QuoteIdentifier("vetted_at")+")", "vetted_count"),
	).
		From(sqlutil.QuoteIdentifier("claims")).
		GroupBy(status).
		OrderBy(status))
}

func buildTodaysClaims(f Filters, _ string) sq.SelectBuilder {
	c, p, e := col("c"), col("p"), col("e")

	var w conditions
	w.today(c("created_at"))
	w.hmo(c("hmo_id"), f)

	return w.apply(sq.Select(
		c("id"),
		c("hmo_id"),
		as(p("name"), "provider_name"),
		as(fullName(e), "enrollee_name"),
		c("encounter_date"),
		as(c("total_amount"), "amount_submitted"),
		as(c("approved_amount"), "amount_approved"),
		c("submitted_at"),
		c("provider_status"),
		c("hmo_status"),
	).
		From(sqlutil.TableAs("claims", "c")).
		Join(on("providers", "p", eq(c("provider_id"), p("id")))).
		Join(on("enrollees", "e", eq(c("enrollee_id"), e("id")))).
		OrderBy(c("created_at") + " DESC"))
}
