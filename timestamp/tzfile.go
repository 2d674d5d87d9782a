package timestamp

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rob-gra/gridsim-core/kernelerr"
)

// LoadTZInfo parses a tzinfo.txt-format reader (spec §6): locale lines
// mapping a name to a base TZ spec string, followed by per-year `[YYYY]`
// sections holding `tzname,start-rule,end-rule` override lines that apply
// to every locale sharing that raw tzname.
//
// The format:
//
//	# locale lines: name<TAB>TZSPEC
//	US/Eastern	EST5EDT
//
//	[2023]
//	EST5EDT,M3.2.0/2,M11.1.0/2
func LoadTZInfo(r io.Reader) (map[string]*Spec, error) {
	locales := make(map[string]*Spec)
	rawNameOf := make(map[string]string) // locale name -> raw tzname token
	scanner := bufio.NewScanner(r)
	currentYear := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			y, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			if err != nil {
				return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "tzinfo: bad year header %q", line)
			}
			currentYear = y
			continue
		}
		if currentYear != 0 {
			fields := strings.Split(line, ",")
			if len(fields) != 3 {
				return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "tzinfo: bad rule line %q", line)
			}
			tzname := strings.TrimSpace(fields[0])
			start, err := ParseRule(fields[1])
			if err != nil {
				return nil, err
			}
			end, err := ParseRule(fields[2])
			if err != nil {
				return nil, err
			}
			for name, raw := range rawNameOf {
				if raw == tzname {
					locales[name].SetYearRule(currentYear, start, end)
				}
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name, raw := fields[0], fields[1]
		spec, err := ParseSpec(raw)
		if err != nil {
			return nil, kernelerr.Wrapf(err, "tzinfo: locale %q", name)
		}
		locales[name] = spec
		rawNameOf[name] = raw
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return locales, nil
}
