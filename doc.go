// Package main implements the versionbump CLI tool.
//
// The versionbump tool automates semantic version bumps and git-flow releases
// for Godot projects. It reads config/version from <project>/project.godot,
// bumps it according to a directive ("major", "minor" or "patch"), starts a
// release branch, rewrites the project file, turns the changelog's
// "## Unreleased" section into a section for the new version, refreshes the
// release description in .zenodo.json and commits. Finishing the release
// merges the branch, pushes the "v"-prefixed tag and reopens the changelog.
//
// Command Usage:
//
//	versionbump [flags] <command>
//
// Commands:
//
//	bump <major|minor|patch>  Bump the version and start the release branch.
//	release                   Finish the release branch of the current version.
//	current                   Show the current version.
//	notes [version]           Print the changelog section of a version.
//
// Flags:
//
//	-C, --dir:      Repository root (default ".").
//	-p, --project:  Directory holding project.godot. Defaults to $PROJECT_NAME,
//	                then "detection-simulator".
//	--config:       Config file (default <dir>/versionbump.toml).
//	-y, --yes:      Answer yes to every confirmation.
//	-v, --verbose:  Enable debug logging.
//	--dry-run:      (bump) Print the new version and the files that would change.
//	--bump-file:    (bump) Additional file whose main version follows
//	                project.godot. May be repeated.
//
// Configuration is read from versionbump.toml, then a .env file in the
// repository root, then the environment (PROJECT_NAME, EDITOR and
// VERSIONBUMP_* variables), then flags.
//
// Examples:
//
//	# Preview a minor bump (e.g. 1.2.3 → 1.3.0)
//	versionbump bump minor --dry-run
//
//	# Bump the patch version, also updating Godot's export presets
//	versionbump bump --bump-file export_presets.cfg patch
//
//	# Finish the release later, from the release branch
//	versionbump release
//
// For the library API, see the "pkg" package.
package main
