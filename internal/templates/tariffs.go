package templates

import (
	"claims-dashboard/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

func tariffCounts() []Template {
	return []Template{
		{
			Key:         "unflagged_by_hmo",
			Name:        "Unflagged Mapped by HMO",
			Description: "Count unflagged, mapped tariffs per HMO",
			Category:    "tariff_counts",
			Aggregate:   true,
			Accepts:     []Field{FieldCareTypeMedication},
			BaseTable:   "provider_tariffs",
			build:       buildUnflaggedByHMO,
		},
		{
			Key:         "unmapped_by_hmo",
			Name:        "Unmapped by HMO",
			Description: "Count unmapped, unflagged tariffs per HMO",
			Category:    "tariff_counts",
			Aggregate:   true,
			BaseTable:   "provider_tariffs",
			build:       buildUnmappedByHMO,
		},
		{
			Key:         "new_tariffs_today",
			Name:        "New Tariffs Today",
			Description: "Count of new tariffs created today",
			Category:    "tariff_counts",
			Aggregate:   true,
			Accepts:     []Field{FieldHMOID},
			BaseTable:   "provider_tariffs",
			build:       buildNewTariffsToday,
		},
	}
}

func tariffExports() []Template {
	return []Template{
		{
			Key:              "tariff_full_export",
			Name:             "Full Tariff Export",
			Description:      "Tariffs with HMO, provider, care details",
			Category:         "tariff_exports",
			Heavy:            true,
			Accepts:          []Field{FieldHMOID, FieldDateRange, FieldDateField, FieldFlaggedStatus, FieldCareTypeMedication, FieldVariationFilter},
			BaseTable:        "provider_tariffs",
			DefaultDateField: "created_at",
			build:            buildTariffFullExport,
		},
		{
			Key:         "tariff_with_variations",
			Name:        "Tariffs + Variations",
			Description: "Medication tariffs with strength and drug form",
			Category:    "tariff_exports",
			Heavy:       true,
			Accepts:     []Field{FieldHMOID, FieldDateRange, FieldFlaggedStatus},
			BaseTable:   "provider_tariffs",
			build:       buildTariffWithVariations,
		},
	}
}

// tariffsPerHMO counts unflagged tariffs per HMO, either mapped to a care or not.
func tariffsPerHMO(mapped bool, countAlias string, medicationsOnly bool) sq.SelectBuilder {
	pt, h, c := col("pt"), col("h"), col("c")

	var w conditions
	if mapped {
		w.add(pt("care_id") + " IS NOT NULL")
	} else {
		w.add(pt("care_id") + " IS NULL")
	}
	w.add(pt("flagged_as_correct_at") + " IS NULL")

	q := sq.Select(
		as(h("name"), "hmo_name"),
		as("COUNT(DISTINCT "+pt("id")+")", countAlias),
	).
		From(sqlutil.TableAs("provider_tariffs", "pt")).
		Join(on("hmos", "h", eq(pt("hmo_id"), h("id"))))
	if medicationsOnly {
		q = q.Join(on("cares", "c", eq(pt("care_id"), c("id"))))
		w.add(c("type_id")+" = 1", pt("care_variation_id")+" IS NULL")
	}
	return w.apply(q).
		GroupBy(h("id"), h("name")).
		OrderBy(sqlutil.QuoteIdentifier(countAlias) + " DESC")
}

func buildUnflaggedByHMO(f Filters, _ string) sq.SelectBuilder {
	return tariffsPerHMO(true, "total_unflagged_mapped", f.enabled(FieldCareTypeMedication))
}

func buildUnmappedByHMO(_ Filters, _ string) sq.SelectBuilder {
	return tariffsPerHMO(false, "total_unmapped_unflagged", false)
}

func buildNewTariffsToday(f Filters, _ string) sq.SelectBuilder {
	pt := col("pt")

	var w conditions
	w.today(pt("created_at"))
	w.hmo(pt("hmo_id"), f)

	return w.apply(sq.Select(as("COUNT(DISTINCT "+pt("id")+")", "total_new_provider_tariffs_today")).
		From(sqlutil.TableAs("provider_tariffs", "pt")))
}

func buildTariffFullExport(f Filters, dateField string) sq.SelectBuilder {
	pt, h, p, c := col("pt"), col("h"), col("p"), col("c")

	var w conditions
	w.hmo(pt("hmo_id"), f)
	switch v, _ := f.text(FieldFlaggedStatus); v {
	case "unflagged":
		w.add(pt("flagged_as_correct_at") + " IS NULL")
	case "flagged":
		w.add(pt("flagged_as_correct_at") + " IS NOT NULL")
	}
	if f.enabled(FieldCareTypeMedication) {
		w.add(c("type_id") + " = 1")
	}
	switch v, _ := f.text(FieldVariationFilter); v {
	case "with":
		w.add(pt("care_variation_id") + " IS NOT NULL")
	case "without":
		w.add(pt("care_variation_id") + " IS NULL")
	}
	w.add(pt("care_id") + " IS NOT NULL")
	w.dateRange(pt(dateField), f)

	return w.apply(sq.Select(
		pt("id"),
		pt("care_id"),
		as(h("name"), "hmo_name"),
		as(p("name"), "provider_name"),
		as(c("name"), "care_name"),
		pt("desc"),
		pt("amount"),
		pt("created_at"),
	).
		From(sqlutil.TableAs("provider_tariffs", "pt")).
		Join(on("cares", "c", eq(pt("care_id"), c("id")))).
		Join(on("hmos", "h", eq(pt("hmo_id"), h("id")))).
		LeftJoin(on("providers", "p", eq(pt("provider_id"), p("id")))).
		OrderBy(pt("created_at") + " DESC"))
}

func buildTariffWithVariations(f Filters, _ string) sq.SelectBuilder {
	pt, h, c, cv, df := col("pt"), col("h"), col("c"), col("cv"), col("df")

	var w conditions
	w.add(c("type_id") + " = 1")
	w.hmo(pt("hmo_id"), f)
	if v, _ := f.text(FieldFlaggedStatus); v == "unflagged" {
		w.add(pt("flagged_as_correct_at") + " IS NULL")
	}
	w.dateRange(pt("created_at"), f)

	meta := func(path string) string {
		return "JSON_UNQUOTE(JSON_EXTRACT(" + cv("meta") + ", " + sqlutil.Literal(path) + "))"
	}

	return w.apply(sq.Select(
		pt("id"),
		pt("care_id"),
		as(c("name"), "care_name"),
		as(h("name"), "hmo_name"),
		as(meta("$.strength"), "strength"),
		as(df("name"), "drug_form"),
		pt("amount"),
		pt("desc"),
		pt("care_variation_id"),
		pt("created_at"),
	).
		From(sqlutil.TableAs("provider_tariffs", "pt")).
		Join(on("cares", "c", eq(pt("care_id"), c("id")))).
		Join(on("hmos", "h", eq(pt("hmo_id"), h("id")))).
		LeftJoin(on("care_variations", "cv", eq(pt("care_variation_id"), cv("id")))).
		LeftJoin(on("drug_forms", "df", eq(df("id"), "CAST("+meta("$.drug_form_id")+" AS UNSIGNED)"))).
		OrderBy(pt("created_at") + " DESC"))
}
