package index

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCount groups digits in thousands: 1234567 -> "1,234,567".
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// LanguageSummary lists languages by descending file count, e.g.
// "python(3), go(1)", or "none".
func (s Stats) LanguageSummary() string {
	counts := s.SortedLanguages()
	if len(counts) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(counts))
	for _, lc := range counts {
		parts = append(parts, fmt.Sprintf("%s(%d)", lc.Language, lc.Files))
	}
	return strings.Join(parts, ", ")
}
