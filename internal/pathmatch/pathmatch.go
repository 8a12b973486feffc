package pathmatch

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"

	"golang.org/x/text/cases"
)

// Policy controls how paths are turned into comparison keys.
type Policy struct {
	// FoldCase makes keys case-insensitive using Unicode case folding.
	FoldCase bool
	// Windows treats '\' as a separator and recognizes drive letters.
	// Elsewhere both are ordinary file name characters.
	Windows  bool
}

// HostPolicy returns the policy matching the default filesystem of the
// current platform: case-insensitive on Windows and macOS, case-sensitive
// everywhere else.
func HostPolicy() Policy {
	return Policy{
		FoldCase: runtime.GOOS == "windows" || runtime.GOOS == "darwin",
		Windows:  runtime.GOOS == "windows",
	}
}

// ParsePolicy parses a configuration value. "auto" (or empty) selects
// HostPolicy; "true"/"false" force case folding on or off. Separator
// handling always follows the host.
func ParsePolicy(value string) (Policy, error) {
	pol := HostPolicy()
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return pol, nil
	case "true", "1", "yes", "on":
		pol.FoldCase = true
		return pol, nil
	case "false", "0", "no", "off":
		pol.FoldCase = false
		return pol, nil
	default:
		return Policy{}, fmt.Errorf("invalid path case-fold policy %q (want auto, true or false)", value)
	}
}

// Key canonicalizes p into the key used for every path equality check.
//
// Relative paths are resolved against the working directory. '.', '..',
// repeated and trailing separators are collapsed and under FoldCase the
// whole key is case folded. Under Windows, '\' is a separator too and a
// drive letter is upper-cased.
func (pol Policy) Key(p string) string {
	if pol.Windows {
		p = strings.ReplaceAll(p, `\`, "/")
	}
	volume, rest := pol.splitVolume(p)

	if !strings.HasPrefix(rest, "/") {
		if volume != "" {
			// "C:foo" is treated as rooted on that drive.
			rest = "/" + rest
		} else {
			volume, rest = pol.splitVolume(pol.joinWorkingDir(rest))
		}
	}

	key := volume + path.Clean(rest)
	if pol.FoldCase {
		key = cases.Fold().String(key)
	}
	return key
}

// Equal reports whether a and b refer to the same file under this policy.
func (pol Policy) Equal(a, b string) bool {
	return pol.Key(a) == pol.Key(b)
}

func (pol Policy) splitVolume(p string) (string, string) {
	if pol.Windows && len(p) >= 2 && p[1] == ':' && isASCIILetter(p[0]) {
		return strings.ToUpper(p[:2]), p[2:]
	}
	return "", p
}

func (pol Policy) joinWorkingDir(rel string) string {
	wd, err := os.Getwd()
	if err != nil {
		return "/" + rel
	}
	if pol.Windows {
		wd = strings.ReplaceAll(wd, `\`, "/")
	}
	return wd + "/" + rel
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
