package debutils

import (
	"strconv"
	"strings"
)

// CompareVersions compares two Debian package versions following the dpkg
// ordering rules: optional numeric epoch before ':', upstream version and
// Debian revision split at the last '-', with '~' sorting before everything
// including the empty string.
func CompareVersions(a string, b string) int {
	aEpoch, aUpstream, aRevision := splitVersion(a)
	bEpoch, bUpstream, bRevision := splitVersion(b)

	if aEpoch != bEpoch {
		if aEpoch < bEpoch {
			return -1
		}
		return 1
	}
	if c := compareFragment(aUpstream, bUpstream); c != 0 {
		return c
	}
	return compareFragment(aRevision, bRevision)
}

func splitVersion(v string) (epoch int, upstream string, revision string) {
	if idx := strings.Index(v, ":"); idx >= 0 {
		epoch, _ = strconv.Atoi(v[:idx])
		v = v[idx+1:]
	}
	if idx := strings.LastIndex(v, "-"); idx >= 0 {
		revision = v[idx+1:]
		v = v[:idx]
	}
	return epoch, v, revision
}

// charOrder assigns the dpkg sort weight of a character in a non-digit run:
// '~' before end-of-string, end-of-string before letters, letters before
// everything else.
func charOrder(c byte) int {
	switch {
	case c == '~':
		return -1
	case c >= '0' && c <= '9':
		return 0
	case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return int(c)
	default:
		return int(c) + 256
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// compareFragment compares upstream versions or revisions by alternating
// non-digit and digit runs.
func compareFragment(a string, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		// non-digit run
		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			ac, bc := 0, 0
			if i < len(a) {
				ac = charOrder(a[i])
			}
			if j < len(b) {
				bc = charOrder(b[j])
			}
			if ac != bc {
				if ac < bc {
					return -1
				}
				return 1
			}
			i++
			j++
		}

		// digit run: strip leading zeros, longer run wins, then lexicographic
		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}
		aStart, bStart := i, j
		for i < len(a) && isDigit(a[i]) {
			i++
		}
		for j < len(b) && isDigit(b[j]) {
			j++
		}
		aRun, bRun := a[aStart:i], b[bStart:j]
		if len(aRun) != len(bRun) {
			if len(aRun) < len(bRun) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(aRun, bRun); c != 0 {
			return c
		}
	}
	return 0
}
