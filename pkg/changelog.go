package versionbumper

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// UnreleasedMarker is the changelog header collecting changes not yet released.
const UnreleasedMarker = "## Unreleased"

// DefaultChangelogFiles lists the changelog candidates in lookup order.
var DefaultChangelogFiles = []string{"CHANGELOG.md", "CHANGES.md", "RELEASE_NOTES.md"}

var releaseHeaderPattern = regexp.MustCompile(`^## \d+\.\d+\.\d+`)

// VersionHeader renders the header that replaces the Unreleased marker.
func VersionHeader(v SemanticVersion) string {
	return "## " + v.String()
}

// FinalizeUnreleased replaces the first line that is exactly "## Unreleased"
// with the version header for v. found is false, and content is returned
// unchanged, when there is no such line.
func FinalizeUnreleased(content string, v SemanticVersion) (out string, found bool) {
	lines := splitLines(content)
	for i, line := range lines {
		if strings.TrimRight(line, "\r\n") != UnreleasedMarker {
			continue
		}
		lines[i] = VersionHeader(v) + lineEnding(line)
		return strings.Join(lines, ""), true
	}
	return content, false
}

// ReopenUnreleased prepends "## Unreleased" and a blank line unless content
// already starts with the marker.
func ReopenUnreleased(content string) (out string, changed bool) {
	if strings.HasPrefix(content, UnreleasedMarker) {
		return content, false
	}
	return UnreleasedMarker + "\n\n" + content, true
}

// ExtractSection returns the body of the "## <v>" section, trimmed of blank
// lines, stopping at the next released version header.
func ExtractSection(content string, v SemanticVersion) string {
	header := VersionHeader(v)
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	start := -1
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if t == header || (strings.HasPrefix(t, header) && !isVersionChar(t[len(header)])) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if releaseHeaderPattern.MatchString(strings.TrimSpace(lines[i])) {
			end = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

func isVersionChar(c byte) bool {
	return c == '.' || (c >= '0' && c <= '9')
}

// FindChangelog returns the first candidate that exists as a regular file
// under dir. ok is false when none does.
func FindChangelog(dir string, candidates []string) (path string, ok bool) {
	for _, name := range candidates {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// ChangelogUpdate describes the outcome of a changelog transition.
type ChangelogUpdate struct {
	// Path is the changelog that was inspected; empty when no candidate exists.
	Path string
	// Changed reports whether the file was rewritten.
	Changed bool
}

// FinalizeChangelog applies FinalizeUnreleased to the first existing
// candidate. At most one file is touched.
func FinalizeChangelog(dir string, candidates []string, v SemanticVersion) (ChangelogUpdate, error) {
	path, ok := FindChangelog(dir, candidates)
	if !ok {
		return ChangelogUpdate{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ChangelogUpdate{Path: path}, fmt.Errorf("reading %s: %w", path, err)
	}
	out, found := FinalizeUnreleased(string(data), v)
	if !found {
		return ChangelogUpdate{Path: path}, nil
	}
	if err := writeFilePreservingMode(path, []byte(out)); err != nil {
		return ChangelogUpdate{Path: path}, err
	}
	return ChangelogUpdate{Path: path, Changed: true}, nil
}

// ReopenChangelog applies ReopenUnreleased to the first existing candidate
// only, even if FinalizeChangelog touched a different file.
func ReopenChangelog(dir string, candidates []string) (ChangelogUpdate, error) {
	path, ok := FindChangelog(dir, candidates)
	if !ok {
		return ChangelogUpdate{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ChangelogUpdate{Path: path}, fmt.Errorf("reading %s: %w", path, err)
	}
	out, changed := ReopenUnreleased(string(data))
	if !changed {
		return ChangelogUpdate{Path: path}, nil
	}
	if err := writeFilePreservingMode(path, []byte(out)); err != nil {
		return ChangelogUpdate{Path: path}, err
	}
	return ChangelogUpdate{Path: path, Changed: true}, nil
}

// ChangelogSection returns the "## <v>" section from the first candidate
// that has a non-empty one.
func ChangelogSection(dir string, candidates []string, v SemanticVersion) (string, error) {
	for _, name := range candidates {
		p := filepath.Join(dir, name)
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("reading %s: %w", p, err)
		}
		if section := ExtractSection(string(data), v); section != "" {
			return section, nil
		}
	}
	return "", nil
}
