package versionbumper

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// VersionKey marks the version line of a project.godot file.
	VersionKey = "config/version"
	// NameKey marks the line after which a missing version line is inserted.
	NameKey = "config/name"
	// ProjectFileName is the Godot project file inside the project directory.
	ProjectFileName = "project.godot"
)

// VersionPolicy decides what ReadVersion does when no version line exists.
type VersionPolicy int

const (
	// PreviewPolicy substitutes 0.0.0 for a missing version. Used by bump.
	PreviewPolicy VersionPolicy = iota
	// FinalizePolicy fails with *VersionNotFoundError. Used by release and current.
	FinalizePolicy
)

// ProjectFilePath returns "<dir>/<projectName>/project.godot".
func ProjectFilePath(dir, projectName string) string {
	return filepath.Join(dir, projectName, ProjectFileName)
}

// VersionLine renders the canonical version line, without a line terminator.
func VersionLine(v SemanticVersion) string {
	return fmt.Sprintf(`%s="%s"`, VersionKey, v)
}

// ReadVersion returns the version recorded on the first line containing
// config/version=. The policy decides the result when there is no such line.
func ReadVersion(content string, policy VersionPolicy) (SemanticVersion, error) {
	for _, line := range splitLines(content) {
		if !strings.Contains(line, VersionKey+"=") {
			continue
		}
		_, value, _ := strings.Cut(line, "=")
		return ParseVersion(value)
	}
	if policy == PreviewPolicy {
		return SemanticVersion{}, nil
	}
	return SemanticVersion{}, &VersionNotFoundError{}
}

// ReadVersionFile reads the project file at path and applies ReadVersion.
// A missing file is read as an empty document, so PreviewPolicy yields 0.0.0
// and FinalizePolicy yields a *VersionNotFoundError wrapping *FileNotFoundError.
func ReadVersionFile(path string, policy VersionPolicy) (SemanticVersion, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return SemanticVersion{}, fmt.Errorf("reading %s: %w", path, err)
	}

	v, rerr := ReadVersion(string(data), policy)
	var notFound *VersionNotFoundError
	if errors.As(rerr, &notFound) {
		notFound.Path = path
		if err != nil {
			notFound.Err = &FileNotFoundError{Path: path}
		}
	}
	return v, rerr
}

// RewriteVersion replaces every version line with the canonical rendering of
// v. When the document has no version line, one is inserted right after the
// first config/name= line. When neither exists the content is returned
// unchanged and ok is false. All other lines are copied byte for byte.
func RewriteVersion(content string, v SemanticVersion) (out string, ok bool) {
	lines := splitLines(content)
	var b strings.Builder
	b.Grow(len(content) + 32)

	for _, line := range lines {
		if strings.Contains(line, VersionKey+"=") {
			b.WriteString(VersionLine(v))
			b.WriteString(lineEnding(line))
			ok = true
			continue
		}
		b.WriteString(line)
	}
	if ok {
		return b.String(), true
	}

	// Second pass: anchor on the name line.
	// NOTE: a document with neither key gets no version line at all.
	b.Reset()
	inserted := false
	for _, line := range lines {
		b.WriteString(line)
		if !inserted && strings.Contains(line, NameKey+"=") {
			eol := lineEnding(line)
			if eol == "" {
				eol = "\n"
				b.WriteString(eol)
			}
			b.WriteString(VersionLine(v))
			b.WriteString(eol)
			inserted = true
		}
	}
	return b.String(), inserted
}

// UpdateProjectFile rewrites the version in the project file at path.
// It reports whether the file now carries a version line.
func UpdateProjectFile(path string, v SemanticVersion) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, &FileNotFoundError{Path: path}
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	out, ok := RewriteVersion(string(data), v)
	if err := writeFilePreservingMode(path, []byte(out)); err != nil {
		return false, err
	}
	return ok, nil
}

// splitLines splits content after each "\n", keeping terminators.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func lineEnding(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	}
	return ""
}

func writeFilePreservingMode(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
