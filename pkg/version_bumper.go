package versionbumper

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// VersionPattern finds a version string in an arbitrary text file. Each
// pattern has four groups: prefix, optional "v", the version, suffix.
type VersionPattern struct {
	Pattern *regexp.Regexp
	Name    string
	// EveryLine replaces all matching lines instead of only the first.
	EveryLine bool
}

// MainVersionPatterns match the declarations that are the project's own
// version rather than dependency versions, in priority order.
var MainVersionPatterns = []VersionPattern{
	{
		Pattern: regexp.MustCompile(`^(\s*"version"\s*:\s*")(v?)(\d+\.\d+\.\d+)(")`),
		Name:    "root JSON version field",
	},
	{
		Pattern:   regexp.MustCompile(`^(\s*application/(?:file|product)_version\s*=\s*")(v?)(\d+\.\d+\.\d+)((?:\.\d+)?")`),
		Name:      "Godot export preset version",
		EveryLine: true,
	},
	{
		Pattern: regexp.MustCompile(`^(\s*version\s*=\s*["']?)(v?)(\d+\.\d+\.\d+)(["']?)`),
		Name:    "root TOML version field",
	},
	{
		Pattern: regexp.MustCompile(`(?i)^(\s*(?:export\s+)?[a-z_]*version\s*[:=]\s*["']?)(v?)(\d+\.\d+\.\d+)(["']?)`),
		Name:    "root VERSION assignment",
	},
}

// VersionMatch is a version found on one line of a file.
type VersionMatch struct {
	Line    int // 1-based
	Start   int
	End     int
	Prefix  string
	V       string // "v" when the version was written with a v prefix
	Version string
	Suffix  string
	Pattern VersionPattern
}

// FindMainVersions returns the lines that BumpVersionInFile would rewrite:
// the first line matched by the highest-priority pattern that matches at
// all, or every matching line for EveryLine patterns.
func FindMainVersions(content string) []VersionMatch {
	lines := strings.Split(content, "\n")
	for _, vp := range MainVersionPatterns {
		var matches []VersionMatch
		for i, line := range lines {
			m := vp.Pattern.FindStringSubmatchIndex(line)
			if m == nil {
				continue
			}
			matches = append(matches, VersionMatch{
				Line:    i + 1,
				Start:   m[0],
				End:     m[1],
				Prefix:  line[m[2]:m[3]],
				V:       line[m[4]:m[5]],
				Version: line[m[6]:m[7]],
				Suffix:  line[m[8]:m[9]],
				Pattern: vp,
			})
			if !vp.EveryLine {
				break
			}
		}
		if len(matches) > 0 {
			return matches
		}
	}
	return nil
}

// ReplaceVersions rewrites each match with newVersion, keeping the prefix,
// any "v" and the suffix of the original declaration.
func ReplaceVersions(content string, newVersion SemanticVersion, matches []VersionMatch) string {
	lines := strings.Split(content, "\n")
	for _, m := range matches {
		if m.Line < 1 || m.Line > len(lines) {
			continue
		}
		line := lines[m.Line-1]
		if m.Start < 0 || m.End > len(line) || m.Start >= m.End {
			continue
		}
		lines[m.Line-1] = line[:m.Start] + m.Prefix + m.V + newVersion.String() + m.Suffix + line[m.End:]
	}
	return strings.Join(lines, "\n")
}

// BumpVersionInFile finds the main version declaration(s) in the file at
// path and replaces them with newVersion. It reports false, without writing,
// when the file contains no recognisable version.
func BumpVersionInFile(path string, newVersion SemanticVersion) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading file %s: %w", path, err)
	}
	matches := FindMainVersions(string(data))
	if len(matches) == 0 {
		return false, nil
	}
	out := ReplaceVersions(string(data), newVersion, matches)
	if err := writeFilePreservingMode(path, []byte(out)); err != nil {
		return false, err
	}
	return true, nil
}
