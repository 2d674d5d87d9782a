package timestamp

import "sync"

// DateTime is the broken-down calendar form of a Timestamp, mirroring the
// original's s_datetime (spec §4.1).
type DateTime struct {
	Year       int
	Month      int // 1-12
	Day        int // 1-31
	Hour       int // 0-23
	Minute     int // 0-59
	Second     int // 0-59
	Nanosecond int
	IsDST      bool
	TZ         string
	Weekday    int // 0 = Sunday
	YearDay    int // 0 = Jan 1
	Timestamp  Timestamp
	TZOffset   int // seconds, -43200..43200
}

const (
	minYear = 1970
	maxYear = 2969
)

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysInMonth(year, month int) int {
	if month == 2 && isLeapYear(year) {
		return 29
	}
	return monthLengths[month-1]
}

// tszeroTable lazily caches the epoch-offset, in days since 1970-01-01, of
// January 1st of every year in [minYear, maxYear], accumulated one 365- or
// 366-day span at a time (spec §4.1's "tszero[y]" table).
type tszeroTable struct {
	once sync.Once
	days [maxYear - minYear + 2]int64 // +1 sentinel past maxYear for bisection's upper bound
}

var globalTszero tszeroTable

func (t *tszeroTable) build() {
	var acc int64
	for y := minYear; y <= maxYear+1; y++ {
		t.days[y-minYear] = acc
		span := int64(365)
		if isLeapYear(y) {
			span = 366
		}
		acc += span
	}
}

func (t *tszeroTable) daysAtYearStart(year int) int64 {
	t.once.Do(t.build)
	if year < minYear {
		year = minYear
	}
	if year > maxYear+1 {
		year = maxYear + 1
	}
	return t.days[year-minYear]
}

// yearForDay finds the calendar year containing daysSinceEpoch via a
// bisection walk over the tszero table, per spec §4.1.
func (t *tszeroTable) yearForDay(daysSinceEpoch int64) int {
	t.once.Do(t.build)
	lo, hi := minYear, maxYear+1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.days[mid-minYear] <= daysSinceEpoch {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// breakDownUTC decomposes a count of seconds (and a nanosecond remainder)
// since the Unix epoch into year/month/day/hour/minute/second/weekday/
// yearday, without consulting time.Time, per spec §4.1's described
// algorithm: bisect tszero for the year, then subtract month-length
// tables (leap February-aware) for month/day.
func breakDownUTC(epochSeconds int64, nsec int) DateTime {
	daysSinceEpoch := epochSeconds / 86400
	secOfDay := epochSeconds % 86400
	if secOfDay < 0 {
		secOfDay += 86400
		daysSinceEpoch--
	}

	year := globalTszero.yearForDay(daysSinceEpoch)
	yearDay := int(daysSinceEpoch - globalTszero.daysAtYearStart(year))

	month := 1
	day := yearDay
	for {
		dim := daysInMonth(year, month)
		if day < dim {
			break
		}
		day -= dim
		month++
	}
	day++ // 1-based

	weekday := int((daysSinceEpoch+4)%7+7) % 7 // epoch (1970-01-01) was a Thursday

	return DateTime{
		Year:       year,
		Month:      month,
		Day:        day,
		Hour:       int(secOfDay / 3600),
		Minute:     int((secOfDay % 3600) / 60),
		Second:     int(secOfDay % 60),
		Nanosecond: nsec,
		Weekday:    weekday,
		YearDay:    yearDay,
	}
}

// composeUTC is the inverse of breakDownUTC: it returns the Unix epoch
// second for a calendar date/time, the equivalent of the original's
// mkdatetime. Only the year is clamped, to the span of the year table;
// the other fields are not range-checked, so callers that need strict
// validation should check ranges themselves.
func composeUTC(dt DateTime) int64 {
	days := globalTszero.daysAtYearStart(dt.Year)
	for m := 1; m < dt.Month; m++ {
		days += int64(daysInMonth(dt.Year, m))
	}
	days += int64(dt.Day - 1)
	return days*86400 + int64(dt.Hour)*3600 + int64(dt.Minute)*60 + int64(dt.Second)
}
