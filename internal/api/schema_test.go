package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"claims-dashboard/internal/catalog"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, s *Service, query string, vars map[string]interface{}) *graphql.Result {
	t.Helper()
	schema, err := NewSchema(s)
	require.NoError(t, err)
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        context.Background(),
	})
}

// data runs query, fails on GraphQL errors, and returns the data as a
// JSON-decoded map.
func data(t *testing.T, s *Service, query string, vars map[string]interface{}) map[string]interface{} {
	t.Helper()
	res := run(t, s, query, vars)
	require.Empty(t, res.Errors)
	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestSchemaBuilds(t *testing.T) {
	_, err := NewSchema(newTestService(t, nil))
	require.NoError(t, err)
}

func TestCatalogQueries(t *testing.T) {
	s := newTestService(t, nil)
	out := data(t, s, `{
		tables { name alias columns }
		joins(from: "claims") { to on }
		statusMaps { column values { code label } }
		hmoPartners { id name }
	}`, nil)

	tables := out["tables"].([]interface{})
	require.Len(t, tables, len(s.Catalog.Tables()))
	first := tables[0].(map[string]interface{})
	assert.Equal(t, "claims", first["name"])
	assert.Equal(t, "c", first["alias"])

	joins := out["joins"].([]interface{})
	require.NotEmpty(t, joins)
	assert.Equal(t, "providers", joins[0].(map[string]interface{})["to"])

	maps := out["statusMaps"].([]interface{})
	assert.Equal(t, "hmo_status", maps[0].(map[string]interface{})["column"])
	assert.Len(t, out["hmoPartners"], len(catalog.HMOPartners()))
}

func TestCategoriesListTemplates(t *testing.T) {
	out := data(t, newTestService(t, nil), `{ categories { key templates { key heavy accepts } } }`, nil)
	cats := out["categories"].([]interface{})
	require.NotEmpty(t, cats)
	first := cats[0].(map[string]interface{})
	assert.Equal(t, "claims_reports", first["key"])
	tpl := first["templates"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "full_claims_extract", tpl["key"])
	assert.Equal(t, true, tpl["heavy"])
	assert.Contains(t, tpl["accepts"], "date_range")
}

func TestRenderTemplate(t *testing.T) {
	s := newTestService(t, nil)
	const q = `query($filters: [FilterInput!], $limitOn: Boolean) {
		renderTemplate(key: "full_claims_extract", filters: $filters, limitOn: $limitOn) {
			sql countSql expensive limitToggle warning limit
		}
	}`

	out := data(t, s, q, nil)["renderTemplate"].(map[string]interface{})
	assert.Equal(t, true, out["expensive"])
	assert.Equal(t, true, out["limitToggle"])
	assert.EqualValues(t, 1000, out["limit"])
	assert.Equal(t, "No HMO or date filter — this may return millions of rows and be very slow.", out["warning"])
	assert.Contains(t, out["sql"], "LIMIT 1000")
	assert.NotNil(t, out["countSql"])

	out = data(t, s, q, map[string]interface{}{
		"filters": []interface{}{map[string]interface{}{"field": "hmo_id", "value": "73"}},
		"limitOn": false,
	})["renderTemplate"].(map[string]interface{})
	assert.Equal(t, false, out["expensive"])
	assert.Nil(t, out["limit"])
	assert.Equal(t, "LIMIT is off — large result set possible. Use with caution.", out["warning"])
	assert.Contains(t, out["sql"], "73")
	assert.NotContains(t, out["sql"], "LIMIT")
}

func TestRenderTemplateErrors(t *testing.T) {
	s := newTestService(t, nil)
	res := run(t, s, `{ renderTemplate(key: "nope") { sql } }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "unknown template")

	res = run(t, s, `{ renderTemplate(key: "claim_count", filters: [{field: "colour", value: "red"}]) { sql } }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, `unknown filter field "colour"`)
}

func TestBuildQueryDefault(t *testing.T) {
	out := data(t, newTestService(t, nil), `{ buildQuery { sql countSql errors state { baseTable columns limit } } }`, nil)
	built := out["buildQuery"].(map[string]interface{})
	assert.Equal(t, "SELECT `c`.`id`\n"+
		"FROM `claims` `c`\n"+
		"ORDER BY `c`.`created_at` DESC\n"+
		"LIMIT 1000;", built["sql"])
	assert.Equal(t, []interface{}{}, built["errors"])
	state := built["state"].(map[string]interface{})
	assert.Equal(t, "claims", state["baseTable"])
	assert.Equal(t, []interface{}{"c.id"}, state["columns"])
}

func TestBuildQueryAppliesOpsInOrder(t *testing.T) {
	s := newTestService(t, nil)
	out := data(t, s, `{
		buildQuery(ops: [
			{op: "addJoin", table: "providers"},
			{op: "toggleColumn", column: "p.name"},
			{op: "addJoin", table: "tariffs_nowhere"},
			{op: "addWhere"},
			{op: "updateWhere", index: 0, field: "column", value: "p.name"},
			{op: "updateWhere", index: 0, field: "value", value: "Acme"},
			{op: "launch"}
		]) { sql errors state { joins { table on } wheres { column operator value } } }
	}`, nil)
	built := out["buildQuery"].(map[string]interface{})

	errs := built["errors"].([]interface{})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "op 2 (addJoin)")
	assert.Contains(t, errs[1], `unknown builder op "launch"`)

	assert.Contains(t, built["sql"], "LEFT JOIN `providers` `p` ON `c`.`provider_id` = `p`.`id`")
	assert.Contains(t, built["sql"], "`p`.`name` = 'Acme'")

	state := built["state"].(map[string]interface{})
	joins := state["joins"].([]interface{})
	require.Len(t, joins, 1)
	assert.Equal(t, "`c`.`provider_id` = `p`.`id`", joins[0].(map[string]interface{})["on"])
}

func TestBuildQueryRowOpsNeedIndex(t *testing.T) {
	s := newTestService(t, nil)
	out := data(t, s, `{
		buildQuery(ops: [
			{op: "addWhere"},
			{op: "updateWhere", index: 0, field: "value", value: "keep"},
			{op: "updateWhere", field: "value", value: "clobber"},
			{op: "removeWhere"}
		]) { errors state { wheres { value } } }
	}`, nil)
	built := out["buildQuery"].(map[string]interface{})

	errs := built["errors"].([]interface{})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "op 2 (updateWhere): updateWhere requires an index")
	assert.Contains(t, errs[1], "op 3 (removeWhere): removeWhere requires an index")

	wheres := built["state"].(map[string]interface{})["wheres"].([]interface{})
	require.Len(t, wheres, 1)
	assert.Equal(t, "keep", wheres[0].(map[string]interface{})["value"])
}

func TestBuildQueryRestoresState(t *testing.T) {
	s := newTestService(t, nil)
	out := data(t, s, `{
		buildQuery(state: {baseTable: "claims", columns: ["c.id"], joins: [{table: "hmos"}], limit: "50"},
			ops: [{op: "setLimit", limit: ""}]) { sql state { limit } availableJoins { to } }
	}`, nil)
	built := out["buildQuery"].(map[string]interface{})
	assert.Contains(t, built["sql"], "LEFT JOIN `hmos` `h`")
	assert.NotContains(t, built["sql"], "LIMIT")
	assert.Equal(t, "", built["state"].(map[string]interface{})["limit"])
	assert.NotEmpty(t, built["availableJoins"])

	res := run(t, s, `{ buildQuery(state: {baseTable: "nope"}) { sql } }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "unknown table")
}

func TestDeriveCountQuery(t *testing.T) {
	s := newTestService(t, nil)
	out := data(t, s, `{ deriveCount(sql: "SELECT c.id FROM claims c LIMIT 10") { sql available } }`, nil)
	dc := out["deriveCount"].(map[string]interface{})
	assert.Equal(t, true, dc["available"])
	assert.Contains(t, dc["sql"], "COUNT")

	out = data(t, s, `{ deriveCount(sql: "SHOW TABLES") { sql available } }`, nil)
	dc = out["deriveCount"].(map[string]interface{})
	assert.Equal(t, false, dc["available"])
	assert.Nil(t, dc["sql"])
}

func TestSavedQueryMutations(t *testing.T) {
	s := newTestService(t, nil)
	for _, name := range []string{"first", "second"} {
		out := data(t, s, `mutation($in: SavedQueryInput!) { saveQuery(input: $in) { id name date } }`,
			map[string]interface{}{"in": map[string]interface{}{"name": name, "sql": "SELECT 1;"}})
		saved := out["saveQuery"].(map[string]interface{})
		assert.Equal(t, name, saved["name"])
		assert.NotEmpty(t, saved["id"])
	}

	list := data(t, s, `{ savedQueries { name } }`, nil)["savedQueries"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].(map[string]interface{})["name"])

	out := data(t, s, `mutation { deleteQuery(index: 0) }`, nil)
	assert.Equal(t, true, out["deleteQuery"])
	list = data(t, s, `{ savedQueries { name } }`, nil)["savedQueries"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].(map[string]interface{})["name"])

	res := run(t, s, `mutation { saveQuery(input: {name: "x", sql: ""}) { id } }`, nil)
	assert.NotEmpty(t, res.Errors)
	res = run(t, s, `mutation { deleteQuery(index: 9) }`, nil)
	assert.NotEmpty(t, res.Errors)
}

func TestDashboardQuery(t *testing.T) {
	s := newTestService(t, sampleRecords())
	out := data(t, s, `query($f: DashboardFilterInput) {
		dashboard(filter: $f) {
			start end insurers allInsurers
			summary { total average days peak { date total } }
			daily { date total }
			insurerTotals { insurer total days }
			trend { date counts { insurer count } }
			slackMessage
		}
	}`, map[string]interface{}{"f": map[string]interface{}{
		"start": "2026-09-01", "end": "2026-09-30", "sortBy": "name",
	}})
	d := out["dashboard"].(map[string]interface{})

	assert.Equal(t, "2026-09-01", d["start"])
	assert.Equal(t, []interface{}{"AXA", "Jubilee"}, d["insurers"])
	summary := d["summary"].(map[string]interface{})
	assert.EqualValues(t, 50, summary["total"])
	assert.EqualValues(t, 25, summary["average"])
	assert.EqualValues(t, 2, summary["days"])
	assert.Equal(t, map[string]interface{}{"date": "2026-09-02", "total": float64(35)}, summary["peak"])

	totals := d["insurerTotals"].([]interface{})
	assert.Equal(t, "AXA", totals[0].(map[string]interface{})["insurer"])
	assert.Len(t, d["trend"], 2)
	assert.Contains(t, d["slackMessage"], "Claims Intelligence Report")
}

func TestDashboardEmpty(t *testing.T) {
	out := data(t, newTestService(t, nil), `{ dashboard { summary { total peak { date } } daily { date } } }`, nil)
	d := out["dashboard"].(map[string]interface{})
	summary := d["summary"].(map[string]interface{})
	assert.EqualValues(t, 0, summary["total"])
	assert.Nil(t, summary["peak"])
	assert.Equal(t, []interface{}{}, d["daily"])
}

func TestComparisonMonths(t *testing.T) {
	out := data(t, newTestService(t, sampleRecords()), `{
		comparison(months: ["2026-09", "2026-10"]) {
			mode
			periods { label from to total delta }
			overlay { day label values }
			insurers { insurer values deltas }
		}
	}`, nil)
	c := out["comparison"].(map[string]interface{})
	assert.Equal(t, "month", c["mode"])

	periods := c["periods"].([]interface{})
	require.Len(t, periods, 2)
	sep := periods[0].(map[string]interface{})
	oct := periods[1].(map[string]interface{})
	assert.Equal(t, "2026-09-01", sep["from"])
	assert.Equal(t, "2026-09-30", sep["to"])
	assert.EqualValues(t, 50, sep["total"])
	assert.Nil(t, sep["delta"])
	assert.EqualValues(t, 70, oct["total"])
	assert.InDelta(t, 40.0, oct["delta"], 0.001)

	overlay := c["overlay"].([]interface{})
	require.Len(t, overlay, 2)
	assert.Equal(t, "Day 1", overlay[0].(map[string]interface{})["label"])

	rows := c["insurers"].([]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, "Jubilee", rows[0].(map[string]interface{})["insurer"])
	assert.Equal(t, []interface{}{nil, 100.0}, rows[0].(map[string]interface{})["deltas"])
}

func TestComparisonCustomDefaultsAndBadMode(t *testing.T) {
	s := newTestService(t, sampleRecords())
	out := data(t, s, `{ comparison(mode: "custom") { periods { label } overlay { day } } }`, nil)
	periods := out["comparison"].(map[string]interface{})["periods"].([]interface{})
	require.Len(t, periods, 2)
	assert.Equal(t, "Previous Period", periods[0].(map[string]interface{})["label"])

	res := run(t, s, `{ comparison(mode: "yearly") { mode } }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "unknown comparison mode")
}

func TestReportQuery(t *testing.T) {
	s := newTestService(t, sampleRecords())
	out := data(t, s, `{ report(periods: [{label: "Sep", from: "2026-09-01", to: "2026-09-30"}, {label: "Oct", from: "2026-10-01", to: "2026-10-31"}]) { periods { label total } message } }`, nil)
	r := out["report"].(map[string]interface{})
	assert.Len(t, r["periods"], 2)
	assert.Contains(t, r["message"], "Oct")

	out = data(t, s, `{ report(preset: "mom") { periods { label } } }`, nil)
	assert.NotEmpty(t, out["report"].(map[string]interface{})["periods"])

	res := run(t, s, `{ report(preset: "yearly") { message } }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "unknown report preset")

	res = run(t, s, `{ report { message } }`, nil)
	require.NotEmpty(t, res.Errors)
}

func TestSchemaDrift(t *testing.T) {
	s := newTestService(t, nil)
	d := data(t, s, `{ schemaDrift { checked missingTables checkedAt } }`, nil)["schemaDrift"].(map[string]interface{})
	assert.Equal(t, false, d["checked"])
	assert.Nil(t, d["checkedAt"])

	s.SetDrift(DriftReport{
		Checked:   true,
		Drift:     catalog.Drift{MissingTables: []string{"hmos"}, MissingColumns: map[string][]string{"claims": {"erp_id"}}},
		CheckedAt: time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
	})
	d = data(t, s, `{ schemaDrift { checked missingTables missingColumns { table columns } checkedAt error } }`, nil)["schemaDrift"].(map[string]interface{})
	assert.Equal(t, true, d["checked"])
	assert.Equal(t, []interface{}{"hmos"}, d["missingTables"])
	assert.Equal(t, []interface{}{map[string]interface{}{"table": "claims", "columns": []interface{}{"erp_id"}}}, d["missingColumns"])
	assert.Equal(t, "2026-10-15T08:00:00Z", d["checkedAt"])
	assert.Nil(t, d["error"])
}

func TestGenerateAndNotifyMutations(t *testing.T) {
	s := newTestService(t, nil)
	res := run(t, s, `mutation { generateSQL(prompt: "x") { sql } }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, msgAIDisabled, res.Errors[0].Message)

	s.Generator = &fakeGenerator{sql: "SELECT 1;"}
	out := data(t, s, `mutation { generateSQL(prompt: "one") { sql provider } }`, nil)
	assert.Equal(t, map[string]interface{}{"sql": "SELECT 1;", "provider": "anthropic"}, out["generateSQL"])

	out = data(t, s, `mutation { notify(channels: ["ops"], message: "hello") { success results { channel success error } } }`, nil)
	assert.Equal(t, map[string]interface{}{
		"success": true,
		"results": []interface{}{map[string]interface{}{"channel": "ops", "success": true, "error": nil}},
	}, out["notify"])

	res = run(t, s, `mutation { notify(channels: [], message: "hello") { success } }`, nil)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, msgNoChannels, res.Errors[0].Message)
}
