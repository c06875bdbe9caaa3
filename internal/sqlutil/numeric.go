package sqlutil

import (
	"math"
	"strconv"
	"strings"
)

// IsNumeric reports whether v is non-blank and parses as a finite number.
func IsNumeric(v string) bool {
	_, ok := parseFinite(v)
	return ok
}

// Number returns the canonical text of a numeric value ("01" -> "1",
// "-1.50" -> "-1.5"). ok is false when v is not numeric.
func Number(v string) (string, bool) {
	f, ok := parseFinite(v)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// NormalizeHMOID turns a user supplied HMO id into the integer text used in
// generated SQL. HMO ids are never negative, so the sign is dropped. A
// fraction is accepted only when it is all zeros ("73.0"). Zero is the
// "custom id not entered yet" sentinel and, like non-integers and ids beyond
// the int64 range, yields ok=false.
func NormalizeHMOID(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v != "" && (v[0] == '-' || v[0] == '+') {
		v = v[1:]
	}
	whole, frac, _ := strings.Cut(v, ".")
	if strings.Trim(frac, "0") != "" || !allDigits(whole) {
		return "", false
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || n == 0 {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseFinite(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
