package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"blenderctl/internal/config"
	"blenderctl/internal/storage"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// configHelp is appended to the help text of commands that need a config file.
const configHelp = `

Configuration is read from ~/.blenderctl/config.yaml
(or the path in the BLENDERCTL_CONFIG environment variable).
Run 'blenderctl init' to create it.`

// GitHub repository used for self-updates
const (
	githubOwner = "blenderctl"
	githubRepo  = "blenderctl"
)

var rootCmd = &cobra.Command{
	Use:   "blenderctl",
	Short: "Manage a local library of Blender builds",
	Long: `Blenderctl keeps a folder of Blender (and fork) builds organized.
It scrapes official release and buildbot listings, tracks what is installed,
and resolves which remote builds are updates for your installed ones.`,
	Version: GetVersion(),
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Ensure config directory exists
	if err := config.EnsureConfigDir(); err != nil {
		log.Error().Err(err).Msg("Failed to ensure config directory")
	}
}

func checkConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "Run 'blenderctl init' to create a config file,\n")
		fmt.Fprintf(os.Stderr, "or 'blenderctl config example' to see all options.\n")
		return nil, err
	}
	warnDeprecatedKeys()
	return cfg, nil
}

// warnDeprecatedKeys surfaces renamed or removed config keys without
// failing the command. The config still parses; the old keys are just
// ignored.
func warnDeprecatedKeys() {
	path, err := config.Path()
	if err != nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	issues, err := config.CheckDeprecated(data)
	if err != nil || len(issues) == 0 {
		return
	}
	fmt.Fprint(os.Stderr, config.FormatIssues(issues))
	fmt.Fprintf(os.Stderr, "Run 'blenderctl config check' for details.\n\n")
}

// openStorage opens the cached build database in the config directory
func openStorage() (*storage.Storage, error) {
	dbPath := filepath.Join(config.CacheDir(), "builds.db")
	st, err := storage.NewStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open build cache at %s: %w", dbPath, err)
	}
	return st, nil
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func SetVersionInfo(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

func GetVersion() string {
	return fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date)
}

// IsOfficialBuild reports whether this binary came from a release
// pipeline. Self-upgrade only makes sense for those.
func IsOfficialBuild() bool {
	return builtBy == "goreleaser"
}

// SetCommandsVisibility hides commands that do not apply to this build
func SetCommandsVisibility() {
	if !IsOfficialBuild() {
		upgradeCmd.Hidden = true
	}
}
