package versionbumper

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// SemanticVersion is a released MAJOR.MINOR.PATCH version. Pre-release and
// build metadata are not supported by project.godot releases.
type SemanticVersion struct {
	Major int
	Minor int
	Patch int
}

// BumpKind selects which component Bump increments.
type BumpKind int

const (
	Major BumpKind = iota + 1
	Minor
	Patch
)

// String returns the keyword used on the command line.
func (k BumpKind) String() string {
	switch k {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	}
	return fmt.Sprintf("BumpKind(%d)", int(k))
}

// ParseBumpKind maps "major", "minor" or "patch" to a BumpKind.
func ParseBumpKind(s string) (BumpKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "patch":
		return Patch, nil
	}
	return 0, &InvalidBumpKindError{Kind: s}
}

// ParseVersion parses MAJOR.MINOR.PATCH. Surrounding whitespace and double
// quotes are stripped first, so `"1.2.3"` is accepted.
func ParseVersion(s string) (SemanticVersion, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return SemanticVersion{}, &MalformedVersionError{
			Value: raw,
			Err:   fmt.Errorf("expected 3 components, got %d", len(parts)),
		}
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return SemanticVersion{}, &MalformedVersionError{Value: raw, Err: err}
		}
		if n < 0 {
			return SemanticVersion{}, &MalformedVersionError{
				Value: raw,
				Err:   errors.New("negative component"),
			}
		}
		nums[i] = n
	}
	return SemanticVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String renders the version without a prefix, e.g. "1.2.3".
func (v SemanticVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tag renders the version with the given tag prefix, e.g. "v1.2.3".
func (v SemanticVersion) Tag(prefix string) string {
	return prefix + v.String()
}

// Canonical returns the form understood by golang.org/x/mod/semver.
func (v SemanticVersion) Canonical() string {
	return semver.Canonical("v" + v.String())
}

// Compare returns -1, 0 or +1 ordering v against o by (major, minor, patch).
func (v SemanticVersion) Compare(o SemanticVersion) int {
	return semver.Compare(v.Canonical(), o.Canonical())
}

// Less reports whether v sorts before o.
func (v SemanticVersion) Less(o SemanticVersion) bool {
	return v.Compare(o) < 0
}

// Bump returns the version following current for the given kind.
//   - Major: (major+1, 0, 0)
//   - Minor: (major, minor+1, 0)
//   - Patch: (major, minor, patch+1)
//
// A component already at math.MaxInt cannot be incremented.
func Bump(current SemanticVersion, kind BumpKind) (SemanticVersion, error) {
	next := current
	var target int
	switch kind {
	case Major:
		target = current.Major
	case Minor:
		target = current.Minor
	case Patch:
		target = current.Patch
	}
	if target == math.MaxInt {
		return SemanticVersion{}, &MalformedVersionError{
			Value: current.String(),
			Err:   fmt.Errorf("%s component would overflow", kind),
		}
	}
	switch kind {
	case Major:
		next.Major++
		next.Minor = 0
		next.Patch = 0
	case Minor:
		next.Minor++
		next.Patch = 0
	case Patch:
		next.Patch++
	default:
		return SemanticVersion{}, &InvalidBumpKindError{Kind: kind.String()}
	}
	return next, nil
}

// IsReleaseVersion reports whether s is a plain MAJOR.MINOR.PATCH version
// such as a release branch suffix. Prefixes and pre-release parts are rejected.
func IsReleaseVersion(s string) bool {
	v := "v" + s
	return semver.IsValid(v) && semver.Canonical(v) == v && semver.Prerelease(v) == "" && semver.Build(v) == ""
}
