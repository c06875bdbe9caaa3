package sqlgen

import (
	"fmt"
	"strings"

	"claims-dashboard/internal/catalog"
)

const promptPreamble = "You are a MySQL query generator for a health insurance claims platform. " +
	"Generate ONLY the SQL query, no explanation."

var queryRules = []string{
	"Always use backticks for reserved words and column names",
	"Use LEFT JOINs unless inner join is explicitly needed",
	`Do NOT add LIMIT unless the user explicitly asks for a limit or says "top N" or "first N"`,
	"Use the table aliases listed above",
	"Date filters: use >= start AND < end pattern (never BETWEEN, never 23:59:59)",
	"Wrap datetime and timestamp columns in SELECT with DATE_FORMAT(column, '%Y-%m-%d %H:%i:%s')",
	"For medications: cares.type_id = 1",
	"For V2 cares: cares.cve_version = 2",
	"Unflagged tariffs: provider_tariffs.flagged_as_correct_at IS NULL",
	"Enrollee age: TIMESTAMPDIFF(YEAR, enrollees.birthdate, CURDATE())",
	"ERP IDs for Uganda: hmo_erp_id LIKE 'UG%', sort by CAST(SUBSTRING(hmo_erp_id, 3) AS UNSIGNED)",
	"Always include a sensible ORDER BY (newest first by default)",
	"For JSON extraction: JSON_UNQUOTE(JSON_EXTRACT(column, '$.path'))",
}

var commentRules = []string{
	`"vetting comments", "auto-vet comments", "AI comments": claim_items.auto_vet_comments (JSON). ` +
		`Search with LOWER(CAST(ci.auto_vet_comments AS CHAR)) LIKE '%keyword%' and add ci.auto_vet_comments IS NOT NULL`,
	`"provider comment", "provider's note": LOWER(ci.provider_comment) LIKE '%keyword%'`,
	`"dispute", "appeal": LOWER(ci.dispute) LIKE '%keyword%'`,
	`"HMO comment", "reviewer comment", "item comment": claim_item_comments.name joined on claim_items.comment_id = claim_item_comments.id`,
	`Plain "comments" means claim_items.auto_vet_comments`,
}

var hmoRules = []string{
	"ALWAYS filter HMO via claims.hmo_id, even when the base table is claim_items or another child table. Join to claims first.",
	"NEVER filter HMO via claim_item_comments.hmo_id or any other related table's hmo_id column.",
	"hmo_id values are ALWAYS positive integers. Use the absolute value of a negative id such as -73.",
}

var dateRules = []string{
	`"beginning of this year", "since January": DATE_FORMAT(CURDATE(), '%Y-01-01')`,
	`"this month": DATE_FORMAT(CURDATE(), '%Y-%m-01')`,
	`"today": CURDATE()`,
	`"yesterday": DATE_SUB(CURDATE(), INTERVAL 1 DAY)`,
	`"last N days": DATE_SUB(CURDATE(), INTERVAL N DAY)`,
	"NEVER hardcode a specific year. Always use CURDATE()-based expressions.",
}

// SystemPrompt renders the model instructions for cat: its tables, join
// paths and reference codes, followed by the query-writing rules.
func SystemPrompt(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nDATABASE SCHEMA:\n")
	for i, t := range cat.Tables() {
		fmt.Fprintf(&b, "%d. %s AS %s (%s) - %s\n", i+1, t.Name, t.Alias, t.Size, t.Label)
		fmt.Fprintf(&b, "   - %s\n", strings.Join(t.Columns, ", "))
	}

	b.WriteString("\nJOIN PATTERNS:\n")
	for _, t := range cat.Tables() {
		for _, j := range cat.JoinsFrom(t.Name) {
			fmt.Fprintf(&b, "- %s → %s: %s\n", j.From, j.To, j.On)
		}
	}

	b.WriteString("\nSTATUS CODES:\n")
	for _, m := range catalog.StatusMaps() {
		codes := make([]string, 0, len(m.Values))
		for _, v := range m.Values {
			codes = append(codes, fmt.Sprintf("%d=%s", v.Code, v.Label))
		}
		fmt.Fprintf(&b, "- %s: %s\n", m.Column, strings.Join(codes, ", "))
	}

	b.WriteString("\nKNOWN HMO PARTNERS:\n")
	for _, h := range catalog.HMOPartners() {
		fmt.Fprintf(&b, "- %d: %s\n", h.ID, h.Name)
	}

	writeRules(&b, "RULES", queryRules)
	writeRules(&b, "COMMENT FIELD RULES", commentRules)
	writeRules(&b, "HMO FILTERING RULES", hmoRules)
	writeRules(&b, "DYNAMIC DATE RULES", dateRules)

	b.WriteString("\nIMPORTANT: Return ONLY the SQL query. No markdown, no explanation, no backtick fences.")
	return b.String()
}

func writeRules(b *strings.Builder, title string, rules []string) {
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, r := range rules {
		fmt.Fprintf(b, "- %s\n", r)
	}
}
