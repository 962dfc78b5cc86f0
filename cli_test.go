package main_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const initialProject = `; Engine configuration file.

config_version=5

[application]

config/name="Detection Simulator"
config/version="1.2.3"
`

const initialChangelog = `## Unreleased

- Fixed sensor drift

## 1.2.3

- Initial release
`

// buildCLI compiles the versionbump binary into a temp directory.
func buildCLI(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "versionbump")
	buildCmd := exec.Command("go", "build", "-o", binPath, "./")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build CLI binary: %v; build output: %s", err, out)
	}
	return binPath
}

// newGodotRepo creates a committed git repository holding a Godot project
// named "game" and a changelog.
func newGodotRepo(t *testing.T) (string, func(args ...string) string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	repo := t.TempDir()

	runGit := func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = repo
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
		return string(out)
	}
	runGit("init")
	runGit("symbolic-ref", "HEAD", "refs/heads/master")
	runGit("config", "user.email", "test@example.com")
	runGit("config", "user.name", "Test User")

	if err := os.MkdirAll(filepath.Join(repo, "game"), 0755); err != nil {
		t.Fatalf("failed to create project dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(repo, "game", "project.godot"), []byte(initialProject), 0644); err != nil {
		t.Fatalf("failed to write project file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(repo, "CHANGELOG.md"), []byte(initialChangelog), 0644); err != nil {
		t.Fatalf("failed to write changelog: %v", err)
	}
	runGit("add", ".")
	runGit("commit", "-m", "initial commit")
	return repo, runGit
}

func cliEnv(extra ...string) []string {
	env := append(os.Environ(),
		"PROJECT_NAME=game",
		"EDITOR=true",
		"NO_COLOR=1",
		"GIT_MERGE_AUTOEDIT=no",
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	return append(env, extra...)
}

func TestCLIBinaryDryRun(t *testing.T) {
	repo, runGit := newGodotRepo(t)
	binPath := buildCLI(t)

	cmd := exec.Command(binPath, "bump", "major", "--dry-run")
	cmd.Dir = repo
	cmd.Env = cliEnv()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("CLI dry run failed: %v; stdout: %s; stderr: %s", err, stdout.String(), stderr.String())
	}

	if !strings.Contains(stdout.String(), "New Version: 2.0.0") {
		t.Errorf("expected output to contain 'New Version: 2.0.0', got:\n%s", stdout.String())
	}

	// Nothing may be touched by a dry run.
	if status := runGit("status", "--porcelain"); strings.TrimSpace(status) != "" {
		t.Errorf("dry run modified the working tree:\n%s", status)
	}
	if branches := runGit("branch", "--list", "release/*"); strings.TrimSpace(branches) != "" {
		t.Errorf("dry run created release branches: %s", branches)
	}
}

func TestCLIBinaryRefusesUnstagedChanges(t *testing.T) {
	repo, runGit := newGodotRepo(t)
	binPath := buildCLI(t)

	changelog := filepath.Join(repo, "CHANGELOG.md")
	dirty := initialChangelog + "\n- uncommitted note\n"
	if err := os.WriteFile(changelog, []byte(dirty), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(binPath, "--yes", "bump", "patch")
	cmd.Dir = repo
	cmd.Env = cliEnv()
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected bump to refuse a dirty tree, got:\n%s", out)
	}
	if !strings.Contains(strings.ToLower(string(out)), "unstaged") {
		t.Errorf("expected an unstaged changes error, got:\n%s", out)
	}

	project, err := os.ReadFile(filepath.Join(repo, "game", "project.godot"))
	if err != nil {
		t.Fatal(err)
	}
	if string(project) != initialProject {
		t.Errorf("project file modified after refused bump:\n%s", project)
	}
	if branches := runGit("branch", "--list", "release/*"); strings.TrimSpace(branches) != "" {
		t.Errorf("refused bump created release branches: %s", branches)
	}
}

// TestCLIBinaryFullRelease runs an unattended patch release against a bare
// remote.
func TestCLIBinaryFullRelease(t *testing.T) {
	repo, runGit := newGodotRepo(t)
	// --pushproduction is only understood by the AVH edition.
	version, err := exec.Command("git", "flow", "version").CombinedOutput()
	if err != nil || !strings.Contains(string(version), "AVH") {
		t.Skip("git-flow (AVH edition) not installed")
	}
	binPath := buildCLI(t)

	remote := filepath.Join(t.TempDir(), "remote.git")
	if out, err := exec.Command("git", "init", "--bare", remote).CombinedOutput(); err != nil {
		t.Fatalf("git init --bare failed: %v\n%s", err, out)
	}
	runGit("remote", "add", "origin", remote)
	runGit("push", "origin", "master")
	runGit("flow", "init", "-d")
	runGit("config", "gitflow.prefix.versiontag", "v")

	cmd := exec.Command(binPath, "--yes", "bump", "patch")
	cmd.Dir = repo
	cmd.Env = cliEnv()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("CLI release failed: %v\nstdout: %s\nstderr: %s", err, stdout.String(), stderr.String())
	}
	if !strings.Contains(stdout.String(), "Version bump and release successful!") {
		t.Errorf("expected success summary, got:\n%s", stdout.String())
	}

	tags := strings.Split(strings.TrimSpace(runGit("tag")), "\n")
	if !slices.Contains(tags, "v1.2.4") {
		t.Errorf("expected git tag v1.2.4; got tags: %v", tags)
	}
	remoteTags := runGit("ls-remote", "--tags", "origin")
	if !strings.Contains(remoteTags, "refs/tags/v1.2.4") {
		t.Errorf("tag v1.2.4 was not pushed; remote tags:\n%s", remoteTags)
	}

	onMaster := runGit("show", "master:game/project.godot")
	if !strings.Contains(onMaster, `config/version="1.2.4"`) {
		t.Errorf("master project file not bumped:\n%s", onMaster)
	}

	changelog, err := os.ReadFile(filepath.Join(repo, "CHANGELOG.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(changelog), "## Unreleased\n\n## 1.2.4\n\n- Fixed sensor drift") {
		t.Errorf("changelog not finalized and reopened:\n%s", changelog)
	}
	if branches := runGit("branch", "--list", "release/*"); strings.TrimSpace(branches) != "" {
		t.Errorf("release branches left behind: %s", branches)
	}
}

// TestCLIBinaryRelativeDir commits a bump started from the parent of the
// repository with a relative -C.
func TestCLIBinaryRelativeDir(t *testing.T) {
	repo, runGit := newGodotRepo(t)
	version, err := exec.Command("git", "flow", "version").CombinedOutput()
	if err != nil || !strings.Contains(string(version), "AVH") {
		t.Skip("git-flow (AVH edition) not installed")
	}
	binPath := buildCLI(t)
	runGit("flow", "init", "-d")

	// No remote is configured, so finishing may fail after the commit.
	cmd := exec.Command(binPath, "-C", filepath.Base(repo), "--yes", "bump", "patch")
	cmd.Dir = filepath.Dir(repo)
	cmd.Env = cliEnv()
	out, _ := cmd.CombinedOutput()

	subjects := runGit("log", "--all", "--format=%s")
	if !strings.Contains(subjects, "Bump version to 1.2.4") {
		t.Fatalf("bump commit missing; log:\n%s\noutput:\n%s", subjects, out)
	}
	commit := strings.TrimSpace(runGit("log", "--all", "-n1", "--format=%H", "--grep", "Bump version to 1.2.4"))
	if bumped := runGit("show", commit+":game/project.godot"); !strings.Contains(bumped, `config/version="1.2.4"`) {
		t.Errorf("bump commit does not carry the new version:\n%s", bumped)
	}
}
