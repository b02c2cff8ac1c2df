package fill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateParts is a parsed calendar date. Day or Month stay zero for
// month-only or year-only inputs.
type dateParts struct {
	Year  int
	Month int
	Day   int
}

// ISO renders the date as YYYY-MM-DD, the value native date inputs accept.
func (d dateParts) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// dateLayouts are tried in order. Slash layouts are month-first: the
// mapping service emits US-style dates, and ambiguous day-first input is
// indistinguishable from month-first anyway.
var dateLayouts = []struct {
	layout   string
	hasMonth bool
	hasDay   bool
}{
	{"2006-01-02", true, true},
	{"2006/01/02", true, true},
	{"01/02/2006", true, true},
	{"1/2/2006", true, true},
	{"01-02-2006", true, true},
	{"January 2, 2006", true, true},
	{"Jan 2, 2006", true, true},
	{"2 January 2006", true, true},
	{"2 Jan 2006", true, true},
	{"January 2006", true, false},
	{"Jan 2006", true, false},
	{"01/2006", true, false},
}

var yearOnlyRe = regexp.MustCompile(`^(19|20)\d{2}$`)

// parseDate normalizes a date string into {year, month, day}.
func parseDate(s string) (dateParts, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return dateParts{}, fmt.Errorf("fill: empty date")
	}

	if yearOnlyRe.MatchString(s) {
		y, _ := strconv.Atoi(s)
		return dateParts{Year: y}, nil
	}

	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		p := dateParts{Year: t.Year()}
		if l.hasMonth {
			p.Month = int(t.Month())
		}
		if l.hasDay {
			p.Day = t.Day()
		}
		return p, nil
	}

	return dateParts{}, fmt.Errorf("fill: unparseable date %q", s)
}
