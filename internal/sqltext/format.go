package sqltext

import "strings"

const indent = "  "

// Format lays out a statement one clause per line. Select lists and WHERE
// conjunctions with more than one entry get one entry per line. Only
// whitespace is changed, and the result always ends with a single ";".
func Format(sql string) string {
	return layout(trimTerminator(sql)) + ";"
}

func layout(sql string) string {
	lead, clauses := Split(sql)

	var lines []string
	if lead != "" {
		lines = append(lines, lead)
	}
	for _, c := range clauses {
		lines = append(lines, layoutClause(c))
	}
	return strings.Join(lines, "\n")
}

func layoutClause(c Clause) string {
	switch c.Keyword {
	case "SELECT":
		keyword, body := "SELECT", c.Body
		if rest, ok := cutDistinct(body); ok {
			keyword, body = "SELECT DISTINCT", rest
		}
		return layoutList(keyword, splitTopLevel(body, ","), ",\n"+indent)
	case "WHERE", "HAVING":
		return layoutList(c.Keyword, splitTopLevel(c.Body, "AND"), "\n"+indent+"AND ")
	default:
		return c.String()
	}
}

func layoutList(keyword string, items []string, sep string) string {
	switch len(items) {
	case 0:
		return keyword
	case 1:
		return keyword + " " + items[0]
	default:
		return keyword + "\n" + indent + strings.Join(items, sep)
	}
}

func cutDistinct(body string) (string, bool) {
	const kw = "DISTINCT"
	if len(body) <= len(kw) || !strings.EqualFold(body[:len(kw)], kw) || !isSpace(body[len(kw)]) {
		return body, false
	}
	return strings.TrimSpace(body[len(kw):]), true
}

func indentLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}
