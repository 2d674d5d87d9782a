package timestamp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rob-gra/gridsim-core/kernelerr"
)

// Rule is a POSIX-style "Mm.w.d/HH:MM" DST transition rule: month m
// (1-12), week w (1-5, 5 meaning "last"), weekday d (0=Sunday), and a
// local wall-clock time of day.
type Rule struct {
	Month, Week, Weekday int
	Hour, Minute         int
}

// ParseRule parses "M3.2.0/2" or "M3.2.0/2:00" into a Rule.
func ParseRule(s string) (Rule, error) {
	var r Rule
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "M") {
		return r, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "dst rule %q: expected M-form", s)
	}
	body := s[1:]
	hhmm := "2:00"
	if idx := strings.IndexByte(body, '/'); idx >= 0 {
		hhmm = body[idx+1:]
		body = body[:idx]
	}
	parts := strings.Split(body, ".")
	if len(parts) != 3 {
		return r, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "dst rule %q: expected Mm.w.d", s)
	}
	var err error
	if r.Month, err = strconv.Atoi(parts[0]); err != nil {
		return r, kernelerr.Wrap(kernelerr.ErrInvalidArgument, "dst rule month")
	}
	if r.Week, err = strconv.Atoi(parts[1]); err != nil {
		return r, kernelerr.Wrap(kernelerr.ErrInvalidArgument, "dst rule week")
	}
	if r.Weekday, err = strconv.Atoi(parts[2]); err != nil {
		return r, kernelerr.Wrap(kernelerr.ErrInvalidArgument, "dst rule weekday")
	}
	hm := strings.SplitN(hhmm, ":", 2)
	if r.Hour, err = strconv.Atoi(hm[0]); err != nil {
		return r, kernelerr.Wrap(kernelerr.ErrInvalidArgument, "dst rule hour")
	}
	if len(hm) == 2 {
		if r.Minute, err = strconv.Atoi(hm[1]); err != nil {
			return r, kernelerr.Wrap(kernelerr.ErrInvalidArgument, "dst rule minute")
		}
	}
	return r, nil
}

func epochDayOfMonthStart(year, month int) int64 {
	days := globalTszero.daysAtYearStart(year)
	for m := 1; m < month; m++ {
		days += int64(daysInMonth(year, m))
	}
	return days
}

func weekdayOfEpochDay(days int64) int {
	return int(((days%7)+4+7)%7) % 7
}

// dayOfMonth resolves the rule's week/weekday selector to a 1-based day
// of the given calendar month.
func (r Rule) dayOfMonth(year int) int {
	first := epochDayOfMonthStart(year, r.Month)
	firstWeekday := weekdayOfEpochDay(first)
	offset := (r.Weekday - firstWeekday + 7) % 7
	dim := daysInMonth(year, r.Month)

	candidate := offset + 1 + (r.Week-1)*7
	if r.Week == 5 || candidate > dim {
		last := offset + 1
		for last+7 <= dim {
			last += 7
		}
		return last
	}
	return candidate
}

// utcSeconds returns the UTC epoch-second instant this rule denotes in
// the given year, treating the rule's HH:MM as local wall-clock time at
// offsetSeconds east of UTC.
func (r Rule) utcSeconds(year, offsetSeconds int) int64 {
	days := globalTszero.daysAtYearStart(year)
	for m := 1; m < r.Month; m++ {
		days += int64(daysInMonth(year, m))
	}
	days += int64(r.dayOfMonth(year) - 1)
	local := days*86400 + int64(r.Hour)*3600 + int64(r.Minute)*60
	return local - int64(offsetSeconds)
}

// Spec is a parsed POSIX-style TZ specification:
// STD[±HH[:MM]][DST[±HH[:MM]][,start[,end]]].
type Spec struct {
	StdName    string
	StdOffset  int // seconds east of UTC
	DSTName    string
	DSTOffset  int // seconds east of UTC; ParseSpec sets StdOffset+3600 when the spec gives none
	HasDST     bool
	StartRule  Rule
	EndRule    Rule
	yearRules  map[int][2]Rule // per-year overrides loaded from a DST-rule file
}

// ParseSpec parses a TZ spec string of the form documented in spec §4.1:
// STD[±HH[:MM](DST[,M#.#.#/HH:MM,...])].
func ParseSpec(s string) (*Spec, error) {
	sp := &Spec{}
	i := 0
	readName := func() string {
		start := i
		for i < len(s) && (isAlpha(s[i])) {
			i++
		}
		return s[start:i]
	}
	readOffset := func() (int, bool) {
		if i >= len(s) || !(s[i] == '+' || s[i] == '-' || isDigit(s[i])) {
			return 0, false
		}
		sign := 1
		if s[i] == '+' {
			i++
		} else if s[i] == '-' {
			sign = -1
			i++
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		hh, _ := strconv.Atoi(s[start:i])
		mm := 0
		if i < len(s) && s[i] == ':' {
			i++
			start = i
			for i < len(s) && isDigit(s[i]) {
				i++
			}
			mm, _ = strconv.Atoi(s[start:i])
		}
		// POSIX convention: west of UTC is positive in the offset field,
		// i.e. EST5 means UTC-5; we store east-of-UTC seconds.
		return -sign * (hh*3600 + mm*60), true
	}

	sp.StdName = readName()
	if off, ok := readOffset(); ok {
		sp.StdOffset = off
	}
	if i < len(s) && isAlpha(s[i]) {
		sp.HasDST = true
		sp.DSTName = readName()
		if off, ok := readOffset(); ok {
			sp.DSTOffset = off
		} else {
			sp.DSTOffset = sp.StdOffset + 3600
		}
		if i < len(s) && s[i] == ',' {
			rest := s[i+1:]
			parts := strings.SplitN(rest, ",", 2)
			var err error
			if sp.StartRule, err = ParseRule(parts[0]); err != nil {
				return nil, err
			}
			if len(parts) == 2 {
				if sp.EndRule, err = ParseRule(parts[1]); err != nil {
					return nil, err
				}
			}
		}
	}
	return sp, nil
}

func isAlpha(b byte) bool { return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// SetYearRule installs a per-year DST override, as loaded from the
// tzinfo.txt `[YYYY]` section described in spec §6.
func (sp *Spec) SetYearRule(year int, start, end Rule) {
	if sp.yearRules == nil {
		sp.yearRules = make(map[int][2]Rule)
	}
	sp.yearRules[year] = [2]Rule{start, end}
}

func (sp *Spec) rulesForYear(year int) (start, end Rule) {
	if sp.yearRules != nil {
		if r, ok := sp.yearRules[year]; ok {
			return r[0], r[1]
		}
	}
	return sp.StartRule, sp.EndRule
}

// window returns the [start,end) UTC instants of the DST interval that
// begins in the given year. Per the §9 REDESIGN FLAG, both the northern
// pattern (start < end within the year) and the southern pattern
// (start > end, so the window runs into the following year) are modeled
// as one plain interval — the caller never special-cases hemispheres.
func (sp *Spec) window(year int) (start, end int64) {
	startRule, endRule := sp.rulesForYear(year)
	start = startRule.utcSeconds(year, sp.StdOffset)
	end = endRule.utcSeconds(year, sp.DSTOffset)
	if end <= start {
		// Southern-hemisphere pattern: the window runs past year end, so
		// the end rule belongs to next year's calendar.
		end = endRule.utcSeconds(year+1, sp.DSTOffset)
	}
	return start, end
}

// IsDST reports whether the UTC instant (epoch seconds) falls within a
// DST window for this spec.
func (sp *Spec) IsDST(epochSeconds int64) bool {
	if !sp.HasDST {
		return false
	}
	dt := breakDownUTC(epochSeconds, 0)
	for _, y := range []int{dt.Year - 1, dt.Year} {
		start, end := sp.window(y)
		if epochSeconds >= start && epochSeconds < end {
			return true
		}
	}
	return false
}

// Offset returns the UTC offset, in seconds, in effect at the given UTC
// instant: StdOffset normally, DSTOffset when IsDST holds.
func (sp *Spec) Offset(epochSeconds int64) int {
	if sp.IsDST(epochSeconds) {
		return sp.DSTOffset
	}
	return sp.StdOffset
}

// Name returns the standard or DST abbreviation in effect.
func (sp *Spec) Name(epochSeconds int64) string {
	if sp.IsDST(epochSeconds) {
		return sp.DSTName
	}
	return sp.StdName
}

// DefaultUSEastern is the conventional US Eastern rule used when no
// locale/tzinfo file is loaded: EST5EDT, 2nd Sunday of March to 1st
// Sunday of November.
func DefaultUSEastern() *Spec {
	start, _ := ParseRule("M3.2.0/2")
	end, _ := ParseRule("M11.1.0/2")
	return &Spec{
		StdName:   "EST",
		StdOffset: -5 * 3600,
		DSTName:   "EDT",
		DSTOffset: -4 * 3600,
		HasDST:    true,
		StartRule: start,
		EndRule:   end,
	}
}

func (sp *Spec) String() string {
	return fmt.Sprintf("%s%+d%s", sp.StdName, sp.StdOffset/-3600, sp.DSTName)
}
