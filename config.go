package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	versionbumper "github.com/jonboland/versionbump/pkg"
)

const (
	configFileName = "versionbump"
	envPrefix      = "VERSIONBUMP"
	dotEnvFile     = ".env"
)

// loadConfig layers defaults, versionbump.toml, .env, the environment and
// flags, lowest precedence first.
func loadConfig(cmd *cobra.Command, g *globalFlags) (versionbumper.Config, error) {
	d := versionbumper.DefaultConfig()
	v := viper.New()

	v.SetDefault("project_name", d.ProjectName)
	v.SetDefault("editor", d.Editor)
	v.SetDefault("remote", d.Remote)
	v.SetDefault("main_branch", d.MainBranch)
	v.SetDefault("tag_prefix", d.TagPrefix)
	v.SetDefault("changelog_files", d.ChangelogFiles)
	v.SetDefault("zenodo_file", d.ZenodoFile)
	v.SetDefault("fallback_repo", d.FallbackRepo)
	v.SetDefault("zenodo_description", "")
	v.SetDefault("bump_files", []string{})

	dir := g.dir
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return versionbumper.Config{}, fmt.Errorf("resolving -C %s: %w", g.dir, err)
	}

	if g.configFile != "" {
		v.SetConfigFile(g.configFile)
		if err := v.ReadInConfig(); err != nil {
			return versionbumper.Config{}, fmt.Errorf("reading config %s: %w", g.configFile, err)
		}
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("toml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return versionbumper.Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	if err := mergeDotEnv(v, filepath.Join(dir, dotEnvFile)); err != nil {
		return versionbumper.Config{}, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The unprefixed names are what Godot projects already export.
	_ = v.BindEnv("project_name", "PROJECT_NAME", envPrefix+"_PROJECT_NAME")
	_ = v.BindEnv("editor", envPrefix+"_EDITOR", "EDITOR")

	if f := cmd.Flag("project"); f != nil {
		_ = v.BindPFlag("project_name", f)
	}
	if f := cmd.Flag("bump-file"); f != nil {
		_ = v.BindPFlag("bump_files", f)
	}

	return versionbumper.Config{
		Dir:               dir,
		ProjectName:       v.GetString("project_name"),
		Editor:            v.GetString("editor"),
		Remote:            v.GetString("remote"),
		MainBranch:        v.GetString("main_branch"),
		TagPrefix:         v.GetString("tag_prefix"),
		ChangelogFiles:    v.GetStringSlice("changelog_files"),
		ZenodoFile:        v.GetString("zenodo_file"),
		FallbackRepo:      v.GetString("fallback_repo"),
		ZenodoDescription: v.GetString("zenodo_description"),
		BumpFiles:         v.GetStringSlice("bump_files"),
	}, nil
}

// mergeDotEnv merges KEY=value pairs from a .env file into v's config layer.
// A missing file is not an error.
func mergeDotEnv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return v.MergeConfigMap(ev.AllSettings())
}
