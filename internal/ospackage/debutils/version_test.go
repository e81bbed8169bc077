package debutils_test

import (
	"testing"

	"github.com/open-edge-platform/trust-package-builder/internal/ospackage/debutils"
)

func TestCompareVersions(t *testing.T) {
	testCases := []struct {
		a        string
		b        string
		expected int
	}{
		{"1.0", "1.0", 0},
		{"1.1", "1.0", 1},
		{"1.0", "1.1", -1},
		{"2.10", "2.9", 1},  // numeric, not lexicographic
		{"1:1.0", "2.0", 1}, // epoch wins
		{"1.0~rc1", "1.0", -1},
		{"1.0~rc1", "1.0~rc2", -1},
		{"6.6.4-5+b1", "6.6.4-5", 1},
		{"1.0-1", "1.0-2", -1},
		{"20230311+deb12u1", "20230311", 1},
		{"20210119", "20230311", -1},
		{"1.0-1", "1.0", 1}, // revision beats no revision
	}

	for _, tc := range testCases {
		if got := debutils.CompareVersions(tc.a, tc.b); got != tc.expected {
			t.Errorf("CompareVersions(%q, %q) = %d, expected %d", tc.a, tc.b, got, tc.expected)
		}
		// comparison must be antisymmetric
		if got := debutils.CompareVersions(tc.b, tc.a); got != -tc.expected {
			t.Errorf("CompareVersions(%q, %q) = %d, expected %d", tc.b, tc.a, got, -tc.expected)
		}
	}
}
