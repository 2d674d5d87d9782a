package find

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rob-gra/gridsim-core/kernelerr"
)

// AccessMode mirrors access(2)'s mode argument, the original find_file's
// access-mode parameter (spec §4.5).
type AccessMode int

const (
	AccessExists AccessMode = iota
	AccessWrite
	AccessRead
	AccessReadWrite
)

// File consults the current directory, then each colon/semicolon-delimited
// entry of GLPATH (or an explicit path, when non-empty), then the
// executable's own directory, for the first path satisfying mode — spec
// §4.5's find_file. pathOverride, when non-empty, replaces the GLPATH
// environment variable the way find_file's path argument does.
func File(name, pathOverride string, mode AccessMode) (string, error) {
	if name == "" {
		return "", kernelerr.Wrap(kernelerr.ErrInvalidArgument, "empty file name")
	}

	if accessible(name, mode) {
		return name, nil
	}

	glpath := pathOverride
	if glpath == "" {
		glpath = os.Getenv("GLPATH")
	}
	if glpath != "" {
		sep := ":"
		if os.PathSeparator == '\\' {
			sep = ";"
		}
		for _, dir := range strings.Split(glpath, sep) {
			if dir == "" {
				continue
			}
			candidate := filepath.Join(dir, name)
			if accessible(candidate, mode) {
				return candidate, nil
			}
		}
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		for _, sub := range []string{"", "etc", "lib"} {
			candidate := filepath.Join(exeDir, sub, name)
			if accessible(candidate, mode) {
				return candidate, nil
			}
		}
	}

	return "", kernelerr.Wrapf(kernelerr.ErrNotFound, "file %q not found on GLPATH", name)
}

func accessible(path string, mode AccessMode) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	switch mode {
	case AccessExists:
		return true
	case AccessRead:
		f, err := os.Open(path)
		if err != nil {
			return false
		}
		f.Close()
		return true
	case AccessWrite:
		return info.Mode().Perm()&0o200 != 0
	case AccessReadWrite:
		f, err := os.Open(path)
		if err != nil {
			return false
		}
		f.Close()
		return info.Mode().Perm()&0o200 != 0
	default:
		return false
	}
}
