package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	versionbumper "github.com/jonboland/versionbump/pkg"
)

func newBumpCommand(g *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "bump <major|minor|patch>",
		Short: "Bump the version and start a release branch",
		Long: `Bumps config/version in project.godot and starts a git flow release.

The working tree must have no unstaged changes. Every step that touches git
asks for confirmation first; pass --yes to accept them all.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"major", "minor", "patch"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := versionbumper.ParseBumpKind(args[0])
			if err != nil {
				return err
			}
			r, err := setup(cmd, g)
			if err != nil {
				return err
			}

			meta, err := r.Bump(cmd.Context(), kind, dryRun)
			if err != nil {
				return finishRun(cmd, err)
			}
			printSummary(cmd, meta)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the new version without modifying any files or the git repository")
	cmd.Flags().StringSlice("bump-file", nil, "Additional file whose main version follows project.godot. May be repeated.")
	// --dry is an alias of --dry-run.
	cmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "dry" {
			name = "dry-run"
		}
		return pflag.NormalizedName(name)
	})
	return cmd
}

func printSummary(cmd *cobra.Command, meta versionbumper.VersionMeta) {
	w := cmd.OutOrStdout()
	switch {
	case meta.DryRun:
		fmt.Fprintln(w, "Dry run complete — no files were modified.")
	case meta.Finished:
		fmt.Fprintln(w, "Version bump and release successful!")
	case meta.Committed:
		fmt.Fprintln(w, "Version bump committed.")
	default:
		fmt.Fprintln(w, "Version bump staged.")
	}
	fmt.Fprintf(w, "Old Version: %s\n", meta.OldVersion)
	fmt.Fprintf(w, "New Version: %s\n", meta.NewVersion)
	fmt.Fprintf(w, "Bump Type:   %s\n", meta.BumpType)

	if len(meta.UpdatedFiles) > 0 {
		if meta.DryRun {
			fmt.Fprintln(w, "Files that would be updated:")
		} else {
			fmt.Fprintln(w, "Files updated:")
		}
		for _, f := range meta.UpdatedFiles {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}

func newReleaseCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Finish the release branch for the current version",
		Long: `Finishes release/<version> with git flow, pushes the version tag, adds a
fresh "## Unreleased" section to the changelog and removes leftover release
branches. HEAD must be the release branch of the version in project.godot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := setup(cmd, g)
			if err != nil {
				return err
			}
			return finishRun(cmd, r.FinishCurrent(cmd.Context()))
		},
	}
}

func newCurrentCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := setup(cmd, g)
			if err != nil {
				return err
			}
			v, err := r.Current()
			if err != nil {
				return err
			}
			r.Out.Panel("Current Version", versionbumper.NewVersionStyle.Render(v.String()), versionbumper.ToneInfo)
			return nil
		},
	}
}

func newNotesCommand(g *globalFlags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "notes [version]",
		Short: "Print the changelog section of a version (default: current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := setup(cmd, g)
			if err != nil {
				return err
			}

			var v versionbumper.SemanticVersion
			if len(args) == 1 {
				v, err = versionbumper.ParseVersion(args[0])
			} else {
				v, err = r.Current()
			}
			if err != nil {
				return err
			}

			section, err := versionbumper.ChangelogSection(r.Config.Dir, r.Config.ChangelogFiles, v)
			if err != nil {
				return err
			}
			if section == "" {
				return fmt.Errorf("no changelog section for %s", v)
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), section)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Out.Markdown(section))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source instead of rendering it")
	return cmd
}
