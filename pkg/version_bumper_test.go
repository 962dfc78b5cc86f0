package versionbumper

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindMainVersions(t *testing.T) {
	type want struct {
		version string
		line    int
	}
	tests := []struct {
		name     string
		content  string
		expected []want
	}{
		{
			name: "package.json with dependencies",
			content: `{
  "name": "my-app",
  "version": "1.2.3",
  "dependencies": {
    "react": "18.0.0",
    "express": "4.18.0"
  }
}`,
			expected: []want{{version: "1.2.3", line: 3}},
		},
		{
			name: "nested JSON version",
			content: `{
  "config": {
    "version": "2.0.0"
  }
}`,
			expected: []want{{version: "2.0.0", line: 3}},
		},
		{
			name: "export_presets.cfg",
			content: `[preset.0]

name="Windows Desktop"
platform="Windows Desktop"

[preset.0.options]

application/file_version="1.2.3.0"
application/product_version="1.2.3.0"

[preset.1]

name="Linux"`,
			expected: []want{{version: "1.2.3", line: 8}, {version: "1.2.3", line: 9}},
		},
		{
			name: "TOML with multiple sections",
			content: `[package]
name = "my-crate"
version = "0.5.0"

[dependencies]
serde = { version = "1.0", features = ["derive"] }`,
			expected: []want{{version: "0.5.0", line: 3}},
		},
		{
			name:     "VERSION file",
			content:  `VERSION=3.2.1`,
			expected: []want{{version: "3.2.1", line: 1}},
		},
		{
			name: "shell export",
			content: `#!/bin/sh
export GAME_VERSION="0.9.1"`,
			expected: []want{{version: "0.9.1", line: 2}},
		},
		{
			name: "YAML",
			content: `app:
  name: MyApp
  version: "3.1.4"`,
			expected: []want{{version: "3.1.4", line: 3}},
		},
		{
			name: "prerelease is not a main version",
			content: `{
  "version": "1.2.3-beta.1"
}`,
		},
		{
			name: "no version",
			content: `# My Project

This is a project without any version numbers.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := FindMainVersions(tt.content)

			if len(matches) != len(tt.expected) {
				t.Errorf("expected %d matches, got %d", len(tt.expected), len(matches))
				for i, m := range matches {
					t.Logf("Match %d: version=%s, line=%d", i, m.Version, m.Line)
				}
				return
			}

			for i, expected := range tt.expected {
				if matches[i].Version != expected.version {
					t.Errorf("match %d: expected version %s, got %s", i, expected.version, matches[i].Version)
				}
				if matches[i].Line != expected.line {
					t.Errorf("match %d: expected line %d, got %d", i, expected.line, matches[i].Line)
				}
			}
		})
	}
}

func TestBumpVersionInFile(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		newVersion SemanticVersion
		expected   string
		shouldBump bool
	}{
		{
			name: "package.json",
			content: `{
  "name": "my-app",
  "version": "1.2.3",
  "description": "Test app"
}`,
			newVersion: SemanticVersion{2, 0, 0},
			expected: `{
  "name": "my-app",
  "version": "2.0.0",
  "description": "Test app"
}`,
			shouldBump: true,
		},
		{
			name: "export presets keep the build component",
			content: `[preset.0.options]

application/file_version="1.2.3.7"
application/product_version="1.2.3.7"
`,
			newVersion: SemanticVersion{1, 3, 0},
			expected: `[preset.0.options]

application/file_version="1.3.0.7"
application/product_version="1.3.0.7"
`,
			shouldBump: true,
		},
		{
			name: "TOML with v prefix",
			content: `[package]
name = "project"
version = "v1.2.3"`,
			newVersion: SemanticVersion{2, 0, 0},
			expected: `[package]
name = "project"
version = "v2.0.0"`,
			shouldBump: true,
		},
		{
			name: "multiple versions - only main updated",
			content: `{
  "name": "my-app",
  "version": "1.0.0",
  "dependencies": {
    "some-lib": "2.3.4"
  }
}`,
			newVersion: SemanticVersion{1, 1, 0},
			expected: `{
  "name": "my-app",
  "version": "1.1.0",
  "dependencies": {
    "some-lib": "2.3.4"
  }
}`,
			shouldBump: true,
		},
		{
			name: "no version found",
			content: `# My Project

This is a project without any version numbers.`,
			newVersion: SemanticVersion{1, 0, 0},
			shouldBump: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "test_file")
			if err := os.WriteFile(tmpFile, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			bumped, err := BumpVersionInFile(tmpFile, tt.newVersion)
			if err != nil {
				t.Fatalf("BumpVersionInFile failed: %v", err)
			}
			if bumped != tt.shouldBump {
				t.Errorf("expected bumped=%v, got %v", tt.shouldBump, bumped)
			}

			result, err := os.ReadFile(tmpFile)
			if err != nil {
				t.Fatal(err)
			}

			if tt.shouldBump {
				if string(result) != tt.expected {
					t.Errorf("unexpected result:\nGot:\n%s\nExpected:\n%s", string(result), tt.expected)
				}
			} else if string(result) != tt.content {
				t.Errorf("content should be unchanged but was modified:\nOriginal:\n%s\nGot:\n%s", tt.content, string(result))
			}
		})
	}
}

func TestBumpVersionInFileMissing(t *testing.T) {
	_, err := BumpVersionInFile(filepath.Join(t.TempDir(), "nope.cfg"), SemanticVersion{1, 0, 0})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestVersionPatternMatching(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		pattern VersionPattern
		matches bool
		version string
	}{
		{
			name:    "JSON version field",
			input:   `"version": "3.1.4"`,
			pattern: MainVersionPatterns[0],
			matches: true,
			version: "3.1.4",
		},
		{
			name:    "Godot file version",
			input:   `application/file_version="1.0.2.0"`,
			pattern: MainVersionPatterns[1],
			matches: true,
			version: "1.0.2",
		},
		{
			name:    "Godot product version without build",
			input:   `application/product_version="1.0.2"`,
			pattern: MainVersionPatterns[1],
			matches: true,
			version: "1.0.2",
		},
		{
			name:    "TOML version field",
			input:   `version = "1.2.3"`,
			pattern: MainVersionPatterns[2],
			matches: true,
			version: "1.2.3",
		},
		{
			name:    "TOML ignores inline dependency tables",
			input:   `serde = { version = "1.0.0" }`,
			pattern: MainVersionPatterns[2],
			matches: false,
		},
		{
			name:    "VERSION assignment uppercase",
			input:   `VERSION: 2.0.0`,
			pattern: MainVersionPatterns[3],
			matches: true,
			version: "2.0.0",
		},
		{
			name:    "project.godot version line is not an assignment",
			input:   `config/version="1.2.3"`,
			pattern: MainVersionPatterns[3],
			matches: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := tt.pattern.Pattern.FindStringSubmatch(tt.input)
			if tt.matches && matches == nil {
				t.Errorf("expected pattern to match but it didn't")
			}
			if !tt.matches && matches != nil {
				t.Errorf("expected pattern not to match but it did: %v", matches)
			}
			if tt.matches && matches != nil && matches[3] != tt.version {
				t.Errorf("expected version %s, got %s", tt.version, matches[3])
			}
		})
	}
}
