package versionbumper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Defaults used when the configuration leaves a field empty.
const (
	DefaultProjectName  = "detection-simulator"
	DefaultEditor       = "nano"
	DefaultRemote       = "origin"
	DefaultMainBranch   = "master"
	DefaultTagPrefix    = "v"
	DefaultFallbackRepo = "jonboland/detection-simulator"
	ReleaseBranchPrefix = "release/"
)

// Config is everything the Releaser needs to know about the project. It is
// resolved once by the caller; nothing in this package reads the environment.
type Config struct {
	// Dir is the repository root. Relative paths are resolved against it.
	Dir string
	// ProjectName is the directory holding project.godot.
	ProjectName string
	// Editor opens the changelog for review before committing.
	Editor string
	Remote string
	// MainBranch is the branch whose unpushed commits are checked before
	// finishing, and where the reopened changelog is pushed.
	MainBranch string
	TagPrefix  string
	// ChangelogFiles are changelog candidates in lookup order.
	ChangelogFiles []string
	// ZenodoFile is the Zenodo metadata file, relative to Dir.
	ZenodoFile string
	// FallbackRepo is the "owner/repo" used when the remote URL is unknown.
	FallbackRepo string
	// ZenodoDescription optionally replaces the project blurb in .zenodo.json.
	ZenodoDescription string
	// BumpFiles are extra files whose main version follows project.godot.
	// Entries may be doublestar globs such as "**/export_presets.cfg".
	BumpFiles []string
}

// DefaultConfig returns the configuration of a project in the current directory.
func DefaultConfig() Config {
	return Config{
		Dir:            ".",
		ProjectName:    DefaultProjectName,
		Editor:         DefaultEditor,
		Remote:         DefaultRemote,
		MainBranch:     DefaultMainBranch,
		TagPrefix:      DefaultTagPrefix,
		ChangelogFiles: append([]string(nil), DefaultChangelogFiles...),
		ZenodoFile:     ZenodoFileName,
		FallbackRepo:   DefaultFallbackRepo,
	}
}

// withDefaults fills empty fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Dir == "" {
		c.Dir = d.Dir
	}
	if c.ProjectName == "" {
		c.ProjectName = d.ProjectName
	}
	if c.Editor == "" {
		c.Editor = d.Editor
	}
	if c.Remote == "" {
		c.Remote = d.Remote
	}
	if c.MainBranch == "" {
		c.MainBranch = d.MainBranch
	}
	if c.TagPrefix == "" {
		c.TagPrefix = d.TagPrefix
	}
	if len(c.ChangelogFiles) == 0 {
		c.ChangelogFiles = d.ChangelogFiles
	}
	if c.ZenodoFile == "" {
		c.ZenodoFile = d.ZenodoFile
	}
	if c.FallbackRepo == "" {
		c.FallbackRepo = d.FallbackRepo
	}
	return c
}

// ProjectFile is the path of project.godot.
func (c Config) ProjectFile() string {
	return ProjectFilePath(c.Dir, c.ProjectName)
}

// ReleaseBranch is the git-flow branch for v.
func (c Config) ReleaseBranch(v SemanticVersion) string {
	return ReleaseBranchPrefix + v.String()
}

func (c Config) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// BumpFilePaths resolves BumpFiles against Dir. Globs expand to the regular
// files they match; plain entries are returned even if they do not exist.
func (c Config) BumpFilePaths() ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, f := range c.BumpFiles {
		p := c.path(f)
		if !strings.ContainsAny(f, "*?[{") {
			add(p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bump file pattern %q: %w", f, err)
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
				add(m)
			}
		}
	}
	return paths, nil
}
