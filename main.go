package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	versionbumper "github.com/jonboland/versionbump/pkg"
)

// globalFlags are shared by every command.
type globalFlags struct {
	dir        string
	project    string
	configFile string
	assumeYes  bool
	verbose    bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "versionbump",
		Short: "Bump a Godot project's version and drive its git-flow release",
		Long: `Bumps config/version in <project>/project.godot, turns the changelog's
"## Unreleased" section into the new version's section, refreshes .zenodo.json
and runs the git flow release start/finish steps, asking before each one.

Examples:
  versionbump current
  versionbump bump minor --dry-run
  versionbump bump patch
  versionbump release
  versionbump notes 1.3.0`,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&g.dir, "dir", "C", ".", "Repository root")
	pf.StringVarP(&g.project, "project", "p", "", "Project directory holding project.godot (default $PROJECT_NAME or "+versionbumper.DefaultProjectName+")")
	pf.StringVar(&g.configFile, "config", "", "Config file (default <dir>/versionbump.toml)")
	pf.BoolVarP(&g.assumeYes, "yes", "y", false, "Answer yes to every confirmation")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newBumpCommand(&g),
		newReleaseCommand(&g),
		newCurrentCommand(&g),
		newNotesCommand(&g),
	)
	return root
}

// setup resolves configuration and wires the Releaser's collaborators.
func setup(cmd *cobra.Command, g *globalFlags) (*versionbumper.Releaser, error) {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "versionbump"})
	if g.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Debug("configuration loaded", "dir", cfg.Dir, "project", cfg.ProjectName, "editor", cfg.Editor)

	runner := &versionbumper.ExecRunner{
		Dir:    cfg.Dir,
		Stdin:  os.Stdin,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}

	var confirm versionbumper.Confirmer = huhConfirmer{}
	if g.assumeYes {
		confirm = versionbumper.AssumeYes
	}

	out := versionbumper.NewPresenter(cmd.OutOrStdout())
	return versionbumper.NewReleaser(cfg, versionbumper.NewGit(runner), confirm, out, logger), nil
}

// finishRun turns an operator abort into a clean exit.
func finishRun(cmd *cobra.Command, err error) error {
	if errors.Is(err, versionbumper.ErrAborted) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	return err
}

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
