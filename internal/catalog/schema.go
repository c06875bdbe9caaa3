package catalog

var defaultTables = []TableDescriptor{
	{Name: "claims", Alias: "c", Label: "Claims", Size: "5.3M rows", Columns: []string{
		"id", "hmo_id", "provider_id", "enrollee_id", "encounter_date", "total_amount", "approved_amount",
		"auto_vet_amount", "hmo_status", "provider_status", "hmo_erp_id", "approval_code", "entry_point",
		"hmo_pile_id", "has_unmatched_tariff", "vetted_at", "submitted_at", "created_at", "updated_at", "paid_at",
	}},
	{Name: "claim_items", Alias: "ci", Label: "Claim Items", Size: "24.7M rows", Columns: []string{
		"id", "claim_id", "care_id", "tariff_id", "description", "qty", "amount", "unit_price_billed",
		"unit_price_approved", "approved_amount", "approved_qty", "hmo_approved", "comment_id", "provider_comment",
	}},
	{Name: "providers", Alias: "p", Label: "Providers", Size: "9.8K rows", Columns: []string{
		"id", "name", "email", "phone", "address", "state", "nhis_code", "category_id",
	}},
	{Name: "enrollees", Alias: "e", Label: "Enrollees", Size: "2M rows", Columns: []string{
		"id", "hmo_id", "insurance_no", "firstname", "lastname", "middle_name", "sex", "birthdate", "status",
		"hmo_plan_id", "hmo_client_id", "state", "lga",
	}},
	{Name: "hmos", Alias: "h", Label: "HMOs", Size: "167 rows", Columns: []string{
		"id", "name", "code", "email", "currency", "country_id", "is_active",
	}},
	{Name: "provider_tariffs", Alias: "pt", Label: "Provider Tariffs", Size: "18.9M rows", Columns: []string{
		"id", "hmo_id", "provider_id", "care_id", "care_variation_id", "desc", "amount", "amount_max",
		"flagged_as_correct_at", "is_approved", "created_at", "updated_at",
	}},
	{Name: "cares", Alias: "ca", Label: "Cares", Size: "398K rows", Columns: []string{
		"id", "name", "base_name", "type", "type_id", "active", "cve_version", "gender_limit", "age_min", "age_max",
	}},
	{Name: "care_variations", Alias: "cv", Label: "Care Variations", Size: "30K rows", Columns: []string{
		"id", "care_id", "age_min", "age_max", "meta",
	}},
}

var defaultJoins = []JoinEdge{
	{From: "claims", To: "providers", On: "`c`.`provider_id` = `p`.`id`", Label: "Provider details"},
	{From: "claims", To: "enrollees", On: "`c`.`enrollee_id` = `e`.`id`", Label: "Enrollee details"},
	{From: "claims", To: "hmos", On: "`c`.`hmo_id` = `h`.`id`", Label: "HMO name"},
	{From: "claims", To: "claim_items", On: "`c`.`id` = `ci`.`claim_id`", Label: "Line items"},

	{From: "claim_items", To: "claims", On: "`ci`.`claim_id` = `c`.`id`", Label: "Parent claim"},
	{From: "claim_items", To: "cares", On: "`ci`.`care_id` = `ca`.`id`", Label: "Care catalog"},
	{From: "claim_items", To: "provider_tariffs", On: "`ci`.`tariff_id` = `pt`.`id`", Label: "Tariff pricing"},

	{From: "provider_tariffs", To: "hmos", On: "`pt`.`hmo_id` = `h`.`id`", Label: "HMO name"},
	{From: "provider_tariffs", To: "providers", On: "`pt`.`provider_id` = `p`.`id`", Label: "Provider name"},
	{From: "provider_tariffs", To: "cares", On: "`pt`.`care_id` = `ca`.`id`", Label: "Care catalog"},
	{From: "provider_tariffs", To: "care_variations", On: "`pt`.`care_variation_id` = `cv`.`id`", Label: "Variation details"},

	{From: "enrollees", To: "hmos", On: "`e`.`hmo_id` = `h`.`id`", Label: "HMO name"},

	{From: "cares", To: "care_variations", On: "`cv`.`care_id` = `ca`.`id`", Label: "Variations"},
}

// Default returns the built-in claims warehouse catalog.
func Default() *Catalog {
	c, err := New(defaultTables, defaultJoins)
	if err != nil {
		panic("catalog: invalid default schema: " + err.Error())
	}
	return c
}
