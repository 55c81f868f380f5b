// Package duration parses LinkedIn-style tenure phrases ("2 yrs 6 mos") and
// renders them back in a canonical form.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	yearsPattern  = regexp.MustCompile(`(?i)(\d+)\s*y(?:ears?|rs?)`)
	monthsPattern = regexp.MustCompile(`(?i)(\d+)\s*m(?:onths?|os?)`)

	// fragmentPattern matches one tenure fragment: years with optional months,
	// or months alone.
	fragmentPattern = regexp.MustCompile(`(?i)(\d+)\s*y(?:ears?|rs?)(?:\s*(\d+)\s*m(?:onths?|os?))?|(\d+)\s*m(?:onths?|os?)`)
)

// Duration is a tenure expressed in whole years and months. Months may exceed
// 11 until Normalize is applied.
type Duration struct {
	Years  int
	Months int
}

// Parse extracts the first years and the first months component from text.
// It returns false when neither component is present.
func Parse(text string) (Duration, bool) {
	var d Duration
	found := false
	if m := yearsPattern.FindStringSubmatch(text); m != nil {
		d.Years = atoi(m[1])
		found = true
	}
	if m := monthsPattern.FindStringSubmatch(text); m != nil {
		d.Months = atoi(m[1])
		found = true
	}
	return d, found
}

// FirstMatch returns the first tenure fragment in text together with the byte
// offset at which it starts.
func FirstMatch(text string) (Duration, int, bool) {
	loc := fragmentPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return Duration{}, -1, false
	}
	group := func(i int) string {
		if loc[2*i] < 0 {
			return ""
		}
		return text[loc[2*i]:loc[2*i+1]]
	}
	var d Duration
	if y := group(1); y != "" {
		d.Years = atoi(y)
		d.Months = atoi(group(2))
	} else {
		d.Months = atoi(group(3))
	}
	return d, loc[0], true
}

// Format renders years and months as "1 yr", "3 mos" or "2 yrs 1 mo".
// It returns an empty string when both are zero.
func Format(years, months int) string {
	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "yr"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "mo"))
	}
	return strings.Join(parts, " ")
}

// FromMonths converts a month total into a normalized Duration.
func FromMonths(total int) Duration {
	if total < 0 {
		total = 0
	}
	return Duration{Years: total / 12, Months: total % 12}
}

// TotalMonths returns the duration expressed in months.
func (d Duration) TotalMonths() int {
	return d.Years*12 + d.Months
}

// Normalize carries whole years out of the months component.
func (d Duration) Normalize() Duration {
	return FromMonths(d.TotalMonths())
}

// IsZero reports whether the duration has no years and no months.
func (d Duration) IsZero() bool {
	return d.Years == 0 && d.Months == 0
}

// Add returns the normalized sum of d and other.
func (d Duration) Add(other Duration) Duration {
	return FromMonths(d.TotalMonths() + other.TotalMonths())
}

func (d Duration) String() string {
	return Format(d.Years, d.Months)
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
