// Package sqltext works on generated SQL as text: it finds the top-level
// clauses of a SELECT, lays statements out one clause per line and derives
// row-count companions.
//
// The scanner understands only what the generators emit: single and double
// quoted strings with doubled quotes, backtick identifiers, line and block
// comments, and parentheses. It is not a general SQL parser.
package sqltext

import "strings"

// Clause is one top-level clause of a statement.
type Clause struct {
	// Keyword is the canonical upper-case keyword, e.g. "LEFT JOIN".
	Keyword string
	// Body is the trimmed text between the keyword and the next clause.
	Body string
}

// String renders the clause on one line.
func (c Clause) String() string {
	if c.Body == "" {
		return c.Keyword
	}
	return c.Keyword + " " + c.Body
}

// clause keywords, longest first so "LEFT JOIN" wins over "JOIN".
var clauseKeywords = []string{
	"LEFT OUTER JOIN",
	"RIGHT OUTER JOIN",
	"LEFT JOIN",
	"RIGHT JOIN",
	"INNER JOIN",
	"CROSS JOIN",
	"GROUP BY",
	"ORDER BY",
	"SELECT",
	"FROM",
	"JOIN",
	"WHERE",
	"HAVING",
	"LIMIT",
}

type lexState int

const (
	stCode lexState = iota
	stSingle
	stDouble
	stBacktick
	stLineComment
	stBlockComment
)

// classify walks s once. top[i] is true when byte i is plain code at
// parenthesis depth zero; comment[i] is true when it belongs to a comment.
func classify(s string) (top, comment []bool) {
	top = make([]bool, len(s))
	comment = make([]bool, len(s))
	state := stCode
	depth := 0

	closeQuote := func(i int, q byte) int {
		if i+1 < len(s) && s[i+1] == q {
			return i + 1
		}
		state = stCode
		return i
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch state {
		case stCode:
			switch {
			case ch == '-' && i+1 < len(s) && s[i+1] == '-':
				state = stLineComment
				comment[i] = true
			case ch == '/' && i+1 < len(s) && s[i+1] == '*':
				state = stBlockComment
				comment[i], comment[i+1] = true, true
				i++
			case ch == '\'':
				state = stSingle
			case ch == '"':
				state = stDouble
			case ch == '`':
				state = stBacktick
			case ch == '(':
				depth++
			case ch == ')':
				if depth > 0 {
					depth--
				}
			default:
				top[i] = depth == 0
			}
		case stSingle:
			if ch == '\'' {
				i = closeQuote(i, '\'')
			}
		case stDouble:
			if ch == '"' {
				i = closeQuote(i, '"')
			}
		case stBacktick:
			if ch == '`' {
				i = closeQuote(i, '`')
			}
		case stLineComment:
			if ch == '\n' {
				state = stCode
				top[i] = depth == 0
			} else {
				comment[i] = true
			}
		case stBlockComment:
			comment[i] = true
			if ch == '*' && i+1 < len(s) && s[i+1] == '/' {
				comment[i+1] = true
				i++
				state = stCode
			}
		}
	}
	return top, comment
}

// StripComments removes line and block comments that sit outside string
// literals and identifiers.
func StripComments(sql string) string {
	_, comment := classify(sql)
	var b strings.Builder
	b.Grow(len(sql))
	for i := 0; i < len(sql); i++ {
		if !comment[i] {
			b.WriteByte(sql[i])
		}
	}
	return b.String()
}

type keywordMatch struct {
	keyword    string
	start, end int
}

func findKeywords(s string, top []bool) []keywordMatch {
	var matches []keywordMatch
	for i := 0; i < len(s); i++ {
		if !top[i] || (i > 0 && isWordByte(s[i-1])) {
			continue
		}
		for _, kw := range clauseKeywords {
			if end, ok := matchKeyword(s, top, i, kw); ok {
				matches = append(matches, keywordMatch{keyword: kw, start: i, end: end})
				i = end - 1
				break
			}
		}
	}
	return matches
}

// matchKeyword matches kw at s[i:], case-insensitively, allowing any run of
// whitespace between its words.
func matchKeyword(s string, top []bool, i int, kw string) (int, bool) {
	j := i
	for n, word := range strings.Fields(kw) {
		if n > 0 {
			k := j
			for k < len(s) && top[k] && isSpace(s[k]) {
				k++
			}
			if k == j {
				return 0, false
			}
			j = k
		}
		if j+len(word) > len(s) || !strings.EqualFold(s[j:j+len(word)], word) {
			return 0, false
		}
		for k := j; k < j+len(word); k++ {
			if !top[k] {
				return 0, false
			}
		}
		j += len(word)
	}
	if j < len(s) && isWordByte(s[j]) {
		return 0, false
	}
	return j, true
}

// Split returns the text before the first clause keyword (usually empty or a
// comment) and the top-level clauses in order.
func Split(sql string) (string, []Clause) {
	top, _ := classify(sql)
	matches := findKeywords(sql, top)
	if len(matches) == 0 {
		return strings.TrimSpace(sql), nil
	}

	clauses := make([]Clause, len(matches))
	for n, m := range matches {
		end := len(sql)
		if n+1 < len(matches) {
			end = matches[n+1].start
		}
		clauses[n] = Clause{Keyword: m.keyword, Body: strings.TrimSpace(sql[m.end:end])}
	}
	return strings.TrimSpace(sql[:matches[0].start]), clauses
}

// splitTopLevel splits s at every top-level occurrence of sep, which is either
// a single punctuation byte or a keyword such as "AND".
func splitTopLevel(s, sep string) []string {
	top, _ := classify(s)
	word := isWordByte(sep[0])

	var parts []string
	last := 0
	for i := 0; i < len(s); i++ {
		if !top[i] {
			continue
		}
		if !word {
			if s[i] == sep[0] {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
			continue
		}
		if i > 0 && isWordByte(s[i-1]) {
			continue
		}
		if end, ok := matchKeyword(s, top, i, sep); ok {
			parts = append(parts, strings.TrimSpace(s[last:i]))
			last = end
			i = end - 1
		}
	}
	parts = append(parts, strings.TrimSpace(s[last:]))

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func trimTerminator(sql string) string {
	sql = strings.TrimSpace(sql)
	for strings.HasSuffix(sql, ";") {
		sql = strings.TrimSpace(strings.TrimSuffix(sql, ";"))
	}
	return sql
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
