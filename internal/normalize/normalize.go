// Package normalize converts raw extracted strings into canonical forms:
// money as "####.##", dates as "YYYY-MM-DD", and SSN/EIN identifiers in
// their dashed shapes. Every function returns nil when the input cannot be
// canonicalized; callers keep the raw value for audit.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"fieldlens/internal/domain"
)

var (
	moneyStripRe = regexp.MustCompile(`[^0-9.\-]`)
	moneyRe      = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	dateRe       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	digitsRe     = regexp.MustCompile(`\D`)
)

// Money strips currency symbols and separators and re-renders the amount as
// a fixed two-decimal string. Values wrapped in parentheses are negative.
func Money(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = moneyStripRe.ReplaceAllString(s, "")
	if !moneyRe.MatchString(s) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if negative {
		v = -v
	}
	out := strconv.FormatFloat(v, 'f', 2, 64)
	return &out
}

// Date accepts only unambiguous YYYY-MM-DD input. Anything else, including
// MM/DD/YYYY, is rejected rather than guessed: a flagged gap is preferable
// to a silently wrong date.
func Date(raw string) *string {
	s := strings.TrimSpace(raw)
	if !dateRe.MatchString(s) {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return nil
	}
	out := s
	return &out
}

// SSN renders a nine-digit social security number as ###-##-####.
func SSN(raw string) *string {
	digits := digitsRe.ReplaceAllString(raw, "")
	if len(digits) != 9 {
		return nil
	}
	out := digits[:3] + "-" + digits[3:5] + "-" + digits[5:]
	return &out
}

// EIN renders a nine-digit employer identification number as ##-#######.
func EIN(raw string) *string {
	digits := digitsRe.ReplaceAllString(raw, "")
	if len(digits) != 9 {
		return nil
	}
	out := digits[:2] + "-" + digits[2:]
	return &out
}

// Text trims whitespace; empty strings normalize to nil.
func Text(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// Value dispatches on the field kind.
func Value(kind domain.FieldKind, raw string) *string {
	switch kind {
	case domain.KindMoney:
		return Money(raw)
	case domain.KindDate:
		return Date(raw)
	case domain.KindSSN:
		return SSN(raw)
	case domain.KindEIN:
		return EIN(raw)
	default:
		return Text(raw)
	}
}

// Apply sets fv.Normalized from fv.Raw according to fv.Kind and clamps the
// confidence into [0,1].
func Apply(fv *domain.FieldValue) {
	fv.Normalized = Value(fv.Kind, fv.Raw)
	if fv.Confidence < 0 {
		fv.Confidence = 0
	}
	if fv.Confidence > 1 {
		fv.Confidence = 1
	}
}

// MoneyAmount parses a canonical money string back into a float64 for
// arithmetic checks and deduplication.
func MoneyAmount(canonical string) (float64, bool) {
	v, err := strconv.ParseFloat(canonical, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
