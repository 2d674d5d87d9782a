package timestamp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format selects one of the three wire/string date formats named in
// spec §4.1.
type Format int

const (
	ISO Format = iota // yyyy-mm-dd hh:mm:ss[.fff...]
	US                 // mm-dd-yyyy hh:mm:ss
	EU                 // dd-mm-yyyy hh:mm:ss
)

// Local converts a Timestamp to its local broken-down form under tz (nil
// means UTC, StdOffset 0, no DST).
func Local(t Timestamp, res Resolution, tz *Spec) DateTime {
	if !InRange(t, res) {
		return DateTime{Timestamp: Invalid}
	}
	a := int64(Abs(t))
	sec := a / res.PerSecond()
	rem := a % res.PerSecond()
	nsec := int(rem * (1_000_000_000 / res.PerSecond()))

	offset := 0
	isdst := false
	name := "GMT"
	if tz != nil {
		offset = tz.Offset(sec)
		isdst = tz.IsDST(sec)
		name = tz.Name(sec)
	}
	dt := breakDownUTC(sec+int64(offset), nsec)
	dt.IsDST = isdst
	dt.TZ = name
	dt.TZOffset = offset
	dt.Timestamp = t
	return dt
}

// MkTime is the inverse of Local: compose a Timestamp from a DateTime
// interpreted in tz's local time (the original's mkdatetime).
func MkTime(dt DateTime, res Resolution, tz *Spec) Timestamp {
	utcGuess := composeUTC(dt)
	offset := 0
	if tz != nil {
		offset = tz.Offset(utcGuess)
	}
	sec := utcGuess - int64(offset)
	ticks := sec*res.PerSecond() + int64(dt.Nanosecond)/(1_000_000_000/res.PerSecond())
	out := Timestamp(ticks)
	if !InRange(out, res) {
		return Invalid
	}
	return out
}

// String renders t in the requested format with a trailing zone name,
// per spec §4.1. Returns "" for Invalid and "NEVER"/"" sentinels are the
// caller's responsibility (spec ties those to parsing, not formatting).
func String(t Timestamp, res Resolution, tz *Spec, f Format) string {
	if t == Invalid || !InRange(t, res) {
		return ""
	}
	if t == Never {
		return "NEVER"
	}
	dt := Local(t, res, tz)
	var datePart string
	switch f {
	case US:
		datePart = fmt.Sprintf("%02d-%02d-%04d", dt.Month, dt.Day, dt.Year)
	case EU:
		datePart = fmt.Sprintf("%02d-%02d-%04d", dt.Day, dt.Month, dt.Year)
	default:
		datePart = fmt.Sprintf("%04d-%02d-%02d", dt.Year, dt.Month, dt.Day)
	}
	timePart := fmt.Sprintf("%02d:%02d:%02d", dt.Hour, dt.Minute, dt.Second)
	s := datePart + " " + timePart
	if dt.Nanosecond != 0 {
		s += fmt.Sprintf(".%09d", dt.Nanosecond)
		s = strings.TrimRight(s, "0")
	}
	zone := dt.TZ
	if zone == "" {
		zone = "GMT"
	}
	return s + " " + zone
}

// Parse parses a timestamp string. It accepts the three calendar formats
// (with an optional fractional-seconds suffix and an optional trailing
// timezone name), the human-scale shorthand ("123s", "4h", "7d" — an
// offset from Zero), and the literals NOW, NEVER, INIT. On failure it
// returns Never, per spec §4.1's scalar-form failure semantics.
func Parse(s string, res Resolution, tz *Spec) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Never
	}
	switch strings.ToUpper(s) {
	case "NEVER":
		return Never
	case "NOW", "INIT":
		return Zero
	}
	if t, ok := parseShorthand(s, res); ok {
		return t
	}
	if dt, ok := parseCalendar(s); ok {
		out := MkTime(dt, res, tz)
		if out == Invalid {
			return Never
		}
		return out
	}
	return Never
}

// ParseDateTime is the struct-form counterpart to Parse: on failure it
// returns the zero-value DateTime, per spec §4.1.
func ParseDateTime(s string, res Resolution, tz *Spec) DateTime {
	t := Parse(s, res, tz)
	if t == Never {
		return DateTime{}
	}
	return Local(t, res, tz)
}

var shorthandUnit = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

func parseShorthand(s string, res Resolution) (Timestamp, bool) {
	if len(s) < 2 {
		return 0, false
	}
	unit, ok := shorthandUnit[s[len(s)-1]]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil {
		return 0, false
	}
	seconds := n * unit.Seconds()
	ticks := int64(seconds * float64(res.PerSecond()))
	return Timestamp(ticks), true
}

// parseCalendar accepts ISO/US/EU forms with optional fractional seconds
// and an optional trailing zone token, without committing to which of
// the three date orders was used until a best-effort disambiguation.
func parseCalendar(s string) (DateTime, bool) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return DateTime{}, false
	}
	datePart := fields[0]
	timePart := fields[1]

	dsep := "-"
	if strings.Contains(datePart, "/") {
		dsep = "/"
	}
	dp := strings.Split(datePart, dsep)
	if len(dp) != 3 {
		return DateTime{}, false
	}
	a, erra := strconv.Atoi(dp[0])
	b, errb := strconv.Atoi(dp[1])
	c, errc := strconv.Atoi(dp[2])
	if erra != nil || errb != nil || errc != nil {
		return DateTime{}, false
	}

	var year, month, day int
	switch {
	case a > 31: // ISO: yyyy-mm-dd
		year, month, day = a, b, c
	case c > 31 && a <= 12: // US: mm-dd-yyyy
		month, day, year = a, b, c
	case c > 31: // EU: dd-mm-yyyy
		day, month, year = a, b, c
	default:
		return DateTime{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > daysInMonth(year, month) {
		return DateTime{}, false
	}

	timePart = strings.TrimSuffix(timePart, "Z")
	tp := strings.SplitN(timePart, ".", 2)
	hms := strings.Split(tp[0], ":")
	if len(hms) != 3 {
		return DateTime{}, false
	}
	hh, erra := strconv.Atoi(hms[0])
	mm, errb := strconv.Atoi(hms[1])
	ss, errc := strconv.Atoi(hms[2])
	if erra != nil || errb != nil || errc != nil {
		return DateTime{}, false
	}
	nsec := 0
	if len(tp) == 2 {
		frac := tp[1]
		for len(frac) < 9 {
			frac += "0"
		}
		nsec, _ = strconv.Atoi(frac[:9])
	}

	return DateTime{
		Year: year, Month: month, Day: day,
		Hour: hh, Minute: mm, Second: ss, Nanosecond: nsec,
	}, true
}
