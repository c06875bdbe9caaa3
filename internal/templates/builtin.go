package templates

import "claims-dashboard/internal/catalog"

var builtinCategories = []Category{
	{Key: "claims_reports", Name: "Claims Reports", Description: "Pre-built queries for claims data with provider, enrollee, and item details"},
	{Key: "claims_erp", Name: "Claims ERP/ID", Description: "Lookup and validate ERP IDs for reconciliation"},
	{Key: "tariff_counts", Name: "Tariff Analysis", Description: "Analyze tariff mappings, gaps, and counts"},
	{Key: "tariff_exports", Name: "Tariff Exports", Description: "Export tariff data with care, provider and HMO details"},
	{Key: "cares_analysis", Name: "Cares / CVE", Description: "Care catalog analysis and V1/V2 migration status"},
	{Key: "reference", Name: "Reference", Description: "Quick lookups for status codes and system values"},
}

// Builtin returns the registry of report templates shipped with the dashboard.
func Builtin(cat *catalog.Catalog) (*Registry, error) {
	var all []Template
	all = append(all, claimsReports()...)
	all = append(all, claimsERP()...)
	all = append(all, tariffCounts()...)
	all = append(all, tariffExports()...)
	all = append(all, caresAnalysis()...)
	all = append(all, referenceLookups()...)
	return NewRegistry(cat, builtinCategories, all...)
}
