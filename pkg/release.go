package versionbumper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	reopenCommitMessage = "chore: add unreleased section to changelog for future development"
	toolCommand         = "versionbump"
)

// VersionMeta holds metadata about a bump operation.
type VersionMeta struct {
	OldVersion SemanticVersion
	NewVersion SemanticVersion
	BumpType   BumpKind
	// UpdatedFiles lists the files written, or that would be written on a dry run.
	UpdatedFiles []string
	DryRun       bool
	Committed    bool
	Finished     bool
}

// Releaser runs the bump and release workflows. Every external effect goes
// through Git, Confirm and Out, so a Releaser can be driven by fakes.
type Releaser struct {
	Config  Config
	Git     *Git
	Confirm Confirmer
	Out     *Presenter
	Log     *log.Logger
}

// NewReleaser fills unset configuration with defaults and makes Dir
// absolute, so file paths stay valid whatever directory git runs in. A nil
// logger discards.
func NewReleaser(cfg Config, git *Git, confirm Confirmer, out *Presenter, logger *log.Logger) *Releaser {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if out == nil {
		out = NewPresenter(io.Discard)
	}
	cfg = cfg.withDefaults()
	if abs, err := filepath.Abs(cfg.Dir); err == nil {
		cfg.Dir = abs
	}
	return &Releaser{
		Config:  cfg,
		Git:     git,
		Confirm: confirm,
		Out:     out,
		Log:     logger,
	}
}

// Current returns the version recorded in the project file. A missing
// version is an error here.
func (r *Releaser) Current() (SemanticVersion, error) {
	return ReadVersionFile(r.Config.ProjectFile(), FinalizePolicy)
}

// Bump computes the next version and, unless dryRun is set, runs the release
// start workflow: guard, confirm, release branch, file updates, commit and
// optionally Finish.
func (r *Releaser) Bump(ctx context.Context, kind BumpKind, dryRun bool) (VersionMeta, error) {
	cfg := r.Config
	meta := VersionMeta{BumpType: kind, DryRun: dryRun}

	projectFile := cfg.ProjectFile()
	if _, err := os.Stat(projectFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return meta, &FileNotFoundError{Path: projectFile}
		}
		return meta, fmt.Errorf("checking %s: %w", projectFile, err)
	}

	cur, err := ReadVersionFile(projectFile, PreviewPolicy)
	if err != nil {
		return meta, err
	}
	next, err := Bump(cur, kind)
	if err != nil {
		return meta, err
	}
	if next.Compare(cur) <= 0 {
		return meta, fmt.Errorf("bumped version %s does not follow %s", next, cur)
	}
	meta.OldVersion, meta.NewVersion = cur, next
	r.Log.Debug("computed next version", "from", cur.Canonical(), "to", next.Canonical(), "kind", kind)

	r.Out.Panel("Version Bump",
		OldVersionStyle.Render(cur.String())+" → "+NewVersionStyle.Render(next.String()),
		ToneInfo)

	if dryRun {
		meta.UpdatedFiles = r.plannedFiles()
		return meta, nil
	}

	if err := r.Git.CheckAvailable(ctx); err != nil {
		return meta, err
	}
	dirty, err := r.Git.HasUnstagedChanges(ctx)
	if err != nil {
		return meta, err
	}
	if dirty {
		return meta, &UnstagedChangesError{}
	}

	ok, err := r.Confirm.Confirm(fmt.Sprintf("Are you sure you want to bump version to %s?", next))
	if err != nil {
		return meta, err
	}
	if !ok {
		return meta, ErrAborted
	}

	r.Out.Panel("Starting Release Process", "", ToneSuccess)
	if err := r.clearReleaseBranches(ctx, true); err != nil {
		return meta, err
	}

	branch := cfg.ReleaseBranch(next)
	r.Log.Debug("starting release branch", "branch", branch)
	if err := r.Git.StartRelease(ctx, next.String()); err != nil {
		r.Out.Error("ERROR: Failed to start release branch")
		return meta, err
	}
	r.Out.Success("Created release branch %s", branch)

	r.Out.Panel("Updating Project Files", "", ToneInfo)
	written, err := UpdateProjectFile(projectFile, next)
	if err != nil {
		return meta, err
	}
	if !written {
		r.Out.Warn("No %s= or %s= line in %s; version line not written", VersionKey, NameKey, projectFile)
	}
	meta.UpdatedFiles = append(meta.UpdatedFiles, projectFile)
	r.stage(ctx, projectFile)

	notes := []string{fmt.Sprintf("Updated %s to %s", ProjectFileName, next.Tag(cfg.TagPrefix))}

	logFound, err := r.finalizeChangelog(ctx, next, &meta)
	if err != nil {
		if errors.Is(err, ErrAborted) {
			r.stagedNotCommitted(next)
		}
		return meta, err
	}

	section, err := ChangelogSection(cfg.Dir, cfg.ChangelogFiles, next)
	if err != nil {
		r.Log.Warn("could not read changelog section", "err", err)
	}

	if r.updateZenodo(ctx, next, section) {
		meta.UpdatedFiles = append(meta.UpdatedFiles, cfg.path(cfg.ZenodoFile))
		notes = append(notes, fmt.Sprintf("Updated %s with release information", cfg.ZenodoFile))
	}

	for _, f := range r.bumpExtraFiles(ctx, next) {
		meta.UpdatedFiles = append(meta.UpdatedFiles, f)
		notes = append(notes, "Updated "+f)
	}

	if logFound {
		notes = append(notes, fmt.Sprintf("Updated changelog with version %s", next))
	}
	body := "Ready to commit version bump changes:\n\n" + Bullets(notes)
	if section != "" {
		body += "\n\n" + r.Out.Markdown(section)
	}
	r.Out.Panel("📦 Commit Version Bump Changes?", body, ToneSuccess)

	ok, err = r.Confirm.Confirm("Do you want to commit all the version bump changes?")
	if err != nil {
		if errors.Is(err, ErrAborted) {
			r.stagedNotCommitted(next)
		}
		return meta, err
	}
	if !ok {
		r.stagedNotCommitted(next)
		return meta, nil
	}

	if err := r.Git.Commit(ctx, fmt.Sprintf("Bump version to %s", next)); err != nil {
		return meta, err
	}
	meta.Committed = true
	r.Out.Success("Changes committed")

	ok, err = r.Confirm.Confirm("Do you want to finish the release?")
	if err != nil {
		if errors.Is(err, ErrAborted) {
			r.nextSteps(branch)
		}
		return meta, err
	}
	if !ok {
		r.nextSteps(branch)
		return meta, nil
	}

	if err := r.Finish(ctx, next); err != nil {
		return meta, err
	}
	meta.Finished = true
	r.Out.Panel("", "🎉 Release completed successfully!", ToneSuccess)
	return meta, nil
}

// stagedNotCommitted tells the operator how to continue from a release
// branch whose changes are staged but not committed.
func (r *Releaser) stagedNotCommitted(v SemanticVersion) {
	r.Out.Panel("⚠️  Changes Staged but Not Committed", fmt.Sprintf(
		"You are now on release branch '%s'.\n\nAvailable actions:\n%s",
		r.Config.ReleaseBranch(v),
		Bullets([]string{
			"Review staged changes: " + CmdStyle.Render("git status"),
			"Commit manually: " + CmdStyle.Render("git commit -m 'Your message'"),
			"Continue with: " + CmdStyle.Render(toolCommand+" release"),
			"Or revert: " + CmdStyle.Render(fmt.Sprintf("git flow release delete %s -f", v)),
		})), ToneWarning)
}

func (r *Releaser) nextSteps(branch string) {
	r.Out.Panel("📋 Next Steps", fmt.Sprintf(
		"Release branch '%s' created with changes committed.\n\nYou can finish the release later with:\n%s",
		branch, CmdStyle.Render(toolCommand+" release")), ToneInfo)
}

// FinishCurrent finishes the release recorded in the project file. HEAD must
// be the matching release branch.
func (r *Releaser) FinishCurrent(ctx context.Context) error {
	v, err := ReadVersionFile(r.Config.ProjectFile(), FinalizePolicy)
	if err != nil {
		return err
	}
	if err := r.Git.CheckAvailable(ctx); err != nil {
		return err
	}
	want := r.Config.ReleaseBranch(v)
	got, err := r.Git.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return &NotOnReleaseBranchError{Want: want, Got: got}
	}
	return r.Finish(ctx, v)
}

// Finish merges the release branch for v, pushes its tag, reopens the
// changelog and removes leftover release branches. Nothing is rolled back on
// failure; the operator gets recovery instructions instead.
func (r *Releaser) Finish(ctx context.Context, v SemanticVersion) error {
	cfg := r.Config
	tag := v.Tag(cfg.TagPrefix)
	r.Out.Panel("Finishing Release "+tag, "", ToneAccent)

	if err := r.pushMainIfBehind(ctx); err != nil {
		return err
	}

	message := "Release " + tag
	r.Log.Debug("finishing release", "version", v.String())
	if err := r.Git.FinishRelease(ctx, v.String(), message); err != nil {
		r.Out.Panel("❌ Release Failed", fmt.Sprintf(
			"Git flow release finish failed!\n\n"+
				"Possible causes:\n%s\n\n"+
				"To recover:\n"+
				"1. Check git status for conflicts\n"+
				"2. Resolve any merge conflicts\n"+
				"3. Complete manually with:\n   %s\n"+
				"4. Then push branches and tags:\n   %s\n   %s",
			Bullets([]string{"Merge conflicts during merge to stable", "Network issues during push", "Branch protection rules"}),
			CmdStyle.Render(fmt.Sprintf("git flow release finish %s -m %q", v, message)),
			CmdStyle.Render(fmt.Sprintf("git push %s %s", cfg.Remote, cfg.MainBranch)),
			CmdStyle.Render(fmt.Sprintf("git push %s --tags", cfg.Remote)),
		), ToneError)
		return err
	}

	if err := r.Git.Push(ctx, cfg.Remote, tag); err != nil {
		r.Out.Panel("❌ Error", fmt.Sprintf(
			"Failed to push tag %s\n\nTo manually push the tag later:\n%s",
			tag, CmdStyle.Render(fmt.Sprintf("git push %s %s", cfg.Remote, tag))), ToneError)
		return err
	}
	r.Out.Success("Pushed tag %s", tag)
	r.Out.Success("Release finished successfully")

	r.Out.Panel("Post-Release Setup", "", ToneInfo)
	r.reopenChangelog(ctx)

	return r.clearReleaseBranches(ctx, false)
}

func (r *Releaser) pushMainIfBehind(ctx context.Context) error {
	cfg := r.Config
	n, err := r.Git.UnpushedCount(ctx, cfg.Remote, cfg.MainBranch)
	if err != nil {
		r.Out.Warn("Warning: Could not check %s branch status: %v", cfg.MainBranch, err)
		return nil
	}
	if n == 0 {
		return nil
	}

	r.Out.Panel("⚠️  Warning", fmt.Sprintf("%s branch has %d unpushed commits.", cfg.MainBranch, n), ToneWarning)
	ok, err := r.Confirm.Confirm(fmt.Sprintf("Push %s branch to %s before finishing release?", cfg.MainBranch, cfg.Remote))
	if err != nil {
		return err
	}
	if !ok {
		r.Out.Warn("Continuing without pushing %s. This may cause the release to fail.", cfg.MainBranch)
		return nil
	}
	if err := r.Git.Push(ctx, cfg.Remote, cfg.MainBranch); err != nil {
		r.Out.Warn("Failed to push %s: %v", cfg.MainBranch, err)
		return nil
	}
	r.Out.Success("%s branch pushed", cfg.MainBranch)
	return nil
}

// finalizeChangelog applies the Unreleased → version transition and offers
// the operator a chance to edit the result. It reports whether a changelog
// file exists.
func (r *Releaser) finalizeChangelog(ctx context.Context, v SemanticVersion, meta *VersionMeta) (bool, error) {
	cfg := r.Config
	upd, err := FinalizeChangelog(cfg.Dir, cfg.ChangelogFiles, v)
	if err != nil {
		return upd.Path != "", err
	}
	if upd.Path == "" {
		r.Out.Warn("No log file found out of [%s]. Skipping...", strings.Join(cfg.ChangelogFiles, ","))
		return false, nil
	}

	if upd.Changed {
		r.Out.Success("Updated %s with version %s", upd.Path, v)
		meta.UpdatedFiles = append(meta.UpdatedFiles, upd.Path)
	} else {
		r.Log.Warn("could not find Unreleased section", "file", upd.Path)
		r.Out.Warn("Could not find '%s' section in %s", UnreleasedMarker, upd.Path)
	}
	if r.stage(ctx, upd.Path) {
		r.Out.Success("Staged %s changes", upd.Path)
	}

	ok, err := r.Confirm.Confirm("Do you want to edit the changelog before committing?")
	if err != nil || !ok {
		return true, err
	}
	r.Out.Info("📝 Opening %s with %s...", upd.Path, cfg.Editor)
	if err := r.openEditor(ctx, upd.Path); err != nil {
		r.Out.Warn("Editor exited with an error: %v", err)
	}
	ok, err = r.Confirm.Confirm("Are you satisfied with the changelog changes?")
	if err != nil {
		return true, err
	}
	if ok {
		if r.stage(ctx, upd.Path) {
			r.Out.Success("Updated changelog changes staged")
		}
	} else {
		r.Out.Warn("Changelog edits not staged. Original version changes are still staged.")
	}
	return true, nil
}

func (r *Releaser) openEditor(ctx context.Context, path string) error {
	fields := strings.Fields(r.Config.Editor)
	if len(fields) == 0 {
		fields = []string{DefaultEditor}
	}
	args := append(fields[1:], path)
	return r.Git.Runner.Run(ctx, fields[0], args...)
}

// updateZenodo refreshes the Zenodo metadata. Problems are reported to the
// operator and never abort the release.
func (r *Releaser) updateZenodo(ctx context.Context, v SemanticVersion, section string) bool {
	cfg := r.Config
	path := cfg.path(cfg.ZenodoFile)
	if _, err := os.Stat(path); err != nil {
		r.Out.Warn("No %s found. Skipping...", cfg.ZenodoFile)
		return false
	}

	repo := cfg.FallbackRepo
	if url, err := r.Git.RemoteURL(ctx, cfg.Remote); err == nil && url != "" {
		repo = RepoPathFromRemote(url)
	} else {
		r.Out.Warn("Could not get git remote, using default: %s", repo)
	}

	releaseURL, err := UpdateZenodo(path, ZenodoRelease{
		Version:         v,
		TagPrefix:       cfg.TagPrefix,
		RepoPath:        repo,
		Changelog:       section,
		BaseDescription: cfg.ZenodoDescription,
	})
	if err != nil {
		r.Log.Error("zenodo update failed", "file", path, "err", err)
		r.Out.Error("ERROR: Failed to update %s: %v", cfg.ZenodoFile, err)
		return false
	}
	r.stage(ctx, path)
	r.Out.Success("Updated %s with release URL: %s", cfg.ZenodoFile, releaseURL)
	return true
}

func (r *Releaser) bumpExtraFiles(ctx context.Context, v SemanticVersion) []string {
	paths, err := r.Config.BumpFilePaths()
	if err != nil {
		r.Out.Warn("Warning: %v", err)
		return nil
	}
	var bumped []string
	for _, p := range paths {
		ok, err := BumpVersionInFile(p, v)
		if err != nil {
			r.Out.Warn("Warning: failed to bump version in %s: %v", p, err)
			continue
		}
		if !ok {
			r.Out.Warn("Warning: no version found in %s", p)
			continue
		}
		r.stage(ctx, p)
		r.Out.Success("Updated %s", p)
		bumped = append(bumped, p)
	}
	return bumped
}

func (r *Releaser) reopenChangelog(ctx context.Context) {
	cfg := r.Config
	upd, err := ReopenChangelog(cfg.Dir, cfg.ChangelogFiles)
	if err != nil {
		r.Out.Warn("Could not add unreleased section: %v", err)
		return
	}
	if !upd.Changed {
		return
	}
	r.Out.Success("Added unreleased section to %s", upd.Path)

	err = r.Git.Add(ctx, upd.Path)
	if err == nil {
		err = r.Git.Commit(ctx, reopenCommitMessage)
	}
	if err == nil {
		err = r.Git.Push(ctx, cfg.Remote, cfg.MainBranch)
	}
	if err != nil {
		r.Out.Panel("⚠️  Warning", fmt.Sprintf(
			"Failed to commit/push changelog changes: %v\n\nYou may need to commit and push manually", err), ToneWarning)
		return
	}
	r.Out.Success("Committed and pushed changelog changes")
}

// clearReleaseBranches deletes local release/* branches. When interactive,
// the operator must agree first; refusing aborts with *ReleaseBranchesError.
func (r *Releaser) clearReleaseBranches(ctx context.Context, interactive bool) error {
	branches, err := r.Git.ReleaseBranches(ctx)
	if err != nil {
		r.Log.Debug("listing release branches failed", "err", err)
		return nil
	}
	if len(branches) == 0 {
		return nil
	}

	if interactive {
		r.Out.Panel("⚠️  Existing Release Branches Found", Bullets(branches), ToneWarning)
		ok, err := r.Confirm.Confirm("Delete existing release branches to proceed?")
		if err != nil {
			return err
		}
		if !ok {
			r.Out.Error("Cannot proceed with existing release branches. Aborting.")
			return &ReleaseBranchesError{Branches: branches}
		}
	}

	for _, b := range branches {
		version, ok := strings.CutPrefix(b, ReleaseBranchPrefix)
		if !ok || !IsReleaseVersion(version) {
			r.Out.Warn("Skipped %s: not a MAJOR.MINOR.PATCH release branch", b)
			continue
		}
		if err := r.Git.DeleteRelease(ctx, version); err != nil {
			r.Log.Warn("deleting release branch failed", "branch", b, "err", err)
			continue
		}
		r.Out.Success("Deleted %s", b)
	}
	return nil
}

// stage adds path to the index. A failing git add is only a warning.
func (r *Releaser) stage(ctx context.Context, path string) bool {
	if err := r.Git.Add(ctx, path); err != nil {
		r.Log.Warn("staging failed", "file", path, "err", err)
		return false
	}
	return true
}

// plannedFiles lists what a real bump would write.
func (r *Releaser) plannedFiles() []string {
	cfg := r.Config
	files := []string{cfg.ProjectFile()}
	if p, ok := FindChangelog(cfg.Dir, cfg.ChangelogFiles); ok {
		files = append(files, p)
	}
	if z := cfg.path(cfg.ZenodoFile); fileExists(z) {
		files = append(files, z)
	}
	extra, err := cfg.BumpFilePaths()
	if err != nil {
		r.Log.Warn("could not resolve bump files", "err", err)
	}
	for _, p := range extra {
		if fileExists(p) {
			files = append(files, p)
		}
	}
	return files
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
