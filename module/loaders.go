package module

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rob-gra/gridsim-core/kernelerr"
	"github.com/rob-gra/gridsim-core/timestamp"
	"github.com/rob-gra/gridsim-core/unit"
)

// LoadUnitFile locates name on the search path (current directory,
// pathOverride or GLPATH, then the executable's own directory) and
// loads it into t (spec §6's "Unit file (unitfile.txt)...loaded at
// startup"). unit.Table.Load already parses the line format; this adds
// the GLPATH-aware lookup find.File provides, kept in module/ rather
// than unit/ because find already imports unit (and timestamp), so the
// reverse import would cycle.
func LoadUnitFile(t *unit.Table, name, pathOverride string) error {
	path, err := FindFile(name, pathOverride)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return kernelerr.Wrapf(kernelerr.ErrNotFound, "unitfile %q: %v", path, err)
	}
	defer f.Close()
	return t.Load(f)
}

// ParseTZInfo parses a tzinfo.txt-style reader (spec §6: "per-year
// sections [YYYY] followed by lines
// tzname,Mm.w.d/HH:MM,Mm.w.d/HH:MM"), returning one timestamp.Spec per
// tzname with every section's rule installed via SetYearRule.
func ParseTZInfo(r io.Reader) (map[string]*timestamp.Spec, error) {
	specs := make(map[string]*timestamp.Spec)
	year := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if _, err := fmt.Sscanf(line, "[%d]", &year); err != nil {
				return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "tzinfo: bad section header %q", line)
			}
			continue
		}
		if year == 0 {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "tzinfo: rule %q precedes any [YYYY] section", line)
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, kernelerr.Wrapf(kernelerr.ErrInvalidArgument, "tzinfo: expected tzname,start,end in %q", line)
		}
		name := strings.TrimSpace(fields[0])
		start, err := timestamp.ParseRule(fields[1])
		if err != nil {
			return nil, err
		}
		end, err := timestamp.ParseRule(fields[2])
		if err != nil {
			return nil, err
		}
		sp, ok := specs[name]
		if !ok {
			sp = &timestamp.Spec{StdName: name, HasDST: true}
			specs[name] = sp
		}
		sp.SetYearRule(year, start, end)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return specs, nil
}

// LoadTZInfo locates name on the search path and parses it as a
// tzinfo.txt file.
func LoadTZInfo(name, pathOverride string) (map[string]*timestamp.Spec, error) {
	path, err := FindFile(name, pathOverride)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, kernelerr.Wrapf(kernelerr.ErrNotFound, "tzinfo %q: %v", path, err)
	}
	defer f.Close()
	return ParseTZInfo(f)
}
