package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestCLIBinaryIntegration(t *testing.T) {
	// 1. Build the CLI binary.
	tmpBuildDir, err := os.MkdirTemp("", "versionbump_build")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpBuildDir)

	binPath := filepath.Join(tmpBuildDir, "versionbump")
	// Since this test resides in cmd/integration, the main package is at the repository root ("../../").
	buildCmd := exec.Command("go", "build", "-o", binPath, "../../")
	buildOutput, err := buildCmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build CLI binary: %v; build output: %s", err, string(buildOutput))
	}

	// 2. Lay out a Godot project with a config file naming it.
	tmpRepo, err := os.MkdirTemp("", "versionbump_integration")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpRepo)

	projectDir := filepath.Join(tmpRepo, "simulator")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatalf("failed to create project directory: %v", err)
	}
	project := "[application]\n\nconfig/name=\"Simulator\"\nconfig/version=\"0.9.4\"\n"
	if err := os.WriteFile(filepath.Join(projectDir, "project.godot"), []byte(project), 0644); err != nil {
		t.Fatalf("failed to write project file: %v", err)
	}
	config := "project_name = \"simulator\"\nchangelog_files = [\"NEWS.md\"]\n"
	if err := os.WriteFile(filepath.Join(tmpRepo, "versionbump.toml"), []byte(config), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	news := "## Unreleased\n\n- Added sonar contacts\n\n## 0.9.4\n\n- Tuned radar range\n"
	if err := os.WriteFile(filepath.Join(tmpRepo, "NEWS.md"), []byte(news), 0644); err != nil {
		t.Fatalf("failed to write changelog: %v", err)
	}

	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command(binPath, args...)
		cmd.Dir = tmpRepo
		cmd.Env = append(os.Environ(), "PROJECT_NAME=", "NO_COLOR=1")
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			t.Fatalf("versionbump %v failed: %v; stdout: %s; stderr: %s", args, err, stdout.String(), stderr.String())
		}
		return stdout.String()
	}

	// 3. The config file selects the project and changelog.
	if out := run("current"); !strings.Contains(out, "0.9.4") {
		t.Errorf("expected current version 0.9.4, got:\n%s", out)
	}
	if out := run("notes", "--raw"); strings.TrimSpace(out) != "- Tuned radar range" {
		t.Errorf("unexpected release notes:\n%s", out)
	}

	// 4. A dry run reports the bump and every file it would write.
	out := run("bump", "minor", "--dry-run")
	for _, want := range []string{"Old Version: 0.9.4", "New Version: 0.10.0", "NEWS.md"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected dry run output to contain %q, got:\n%s", want, out)
		}
	}

	got, err := os.ReadFile(filepath.Join(projectDir, "project.godot"))
	if err != nil {
		t.Fatalf("failed to read project file: %v", err)
	}
	if string(got) != project {
		t.Errorf("dry run modified the project file:\n%s", got)
	}
}
