package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Triple is a parsed three-part dotted version number.
type Triple struct {
	Major int
	Minor int
	Patch int
}

// String returns the normalized "major.minor.patch" form.
func (t Triple) String() string {
	return fmt.Sprintf("%d.%d.%d", t.Major, t.Minor, t.Patch)
}

// InvalidVersionError indicates a version string that does not reduce to
// exactly three dot-separated integers.
type InvalidVersionError struct {
	Version string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version: %s", e.Version)
}

// ParseTriple parses a version string into a Triple. Everything from the
// first "-" onward (a prerelease suffix like "-beta.1") is ignored. The
// remainder must be exactly three dot-separated non-negative integers.
func ParseTriple(text string) (Triple, error) {
	core, _, _ := strings.Cut(text, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Triple{}, &InvalidVersionError{Version: text}
	}

	numbers := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Triple{}, &InvalidVersionError{Version: text}
		}
		numbers[i] = n
	}

	return Triple{Major: numbers[0], Minor: numbers[1], Patch: numbers[2]}, nil
}

// Compare returns -1, 0, or 1 depending on whether t is older than, equal
// to, or newer than other. Comparison is major first, then minor, then patch.
func (t Triple) Compare(other Triple) int {
	pairs := [3][2]int{
		{t.Major, other.Major},
		{t.Minor, other.Minor},
		{t.Patch, other.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// IsOutOfDate reports whether latest is strictly newer than current.
// Both strings must parse as valid triples.
func IsOutOfDate(current, latest string) (bool, error) {
	cur, err := ParseTriple(current)
	if err != nil {
		return false, err
	}
	lat, err := ParseTriple(latest)
	if err != nil {
		return false, err
	}
	return cur.Compare(lat) < 0, nil
}
