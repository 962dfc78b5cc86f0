// Package versionbumper provides a library for managing semantic version bumps
// and git-flow releases of Godot projects.
//
// It provides functionalities for:
//   - Reading the version recorded in a project.godot file and parsing it into a SemanticVersion.
//   - Bumping versions using the major, minor and patch keywords.
//   - Rewriting the project file, the changelog "## Unreleased" section and .zenodo.json release metadata.
//   - Driving a git-flow release: create the release branch, commit, finish, push the tag and
//     reopen the changelog for future development.
//
// The file mutators are pure functions over document content with thin
// read-modify-write wrappers, so they can be used without git. The Releaser
// type wires them to a Git collaborator and a Confirmer, both of which can be
// replaced for testing.
//
// Usage Example:
//
//	import (
//	    "log"
//	    versionbumper "github.com/jonboland/versionbump/pkg"
//	)
//
//	func main() {
//	    cur, err := versionbumper.ReadVersionFile("game/project.godot", versionbumper.PreviewPolicy)
//	    if err != nil {
//	        log.Fatalf("reading version failed: %v", err)
//	    }
//	    next, err := versionbumper.Bump(cur, versionbumper.Minor)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if _, err := versionbumper.UpdateProjectFile("game/project.godot", next); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package versionbumper
