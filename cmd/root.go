package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hugsylabs/hugsy/internal/compose"
	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
	"github.com/hugsylabs/hugsy/internal/logging"
)

var Version = "dev"

var (
	verbose    bool
	logLevel   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "hugsy",
	Short: "Compose Claude Code settings from presets and plugins",
	Long: `hugsy builds a Claude Code settings.json from a project file (hugsy.toml).

The project file names presets to extend, plugins to apply and subagent
documents to register. hugsy runs them in order over a baseline settings
document and writes the result to .claude/settings.json.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	Run:               runRoot,
}

func runRoot(cmd *cobra.Command, args []string) {
	paths, err := resolvePaths()
	if err != nil || paths.ProjectExists() {
		cmd.Help()
		return
	}

	fmt.Println("hugsy - Claude Code settings composer")
	fmt.Println()
	fmt.Println("No hugsy.toml in this directory. Get started with:")
	fmt.Println()
	fmt.Println("  hugsy init        Create hugsy.toml with the recommended preset")
	fmt.Println("  hugsy init -i     Pick presets and plugins interactively")
	fmt.Println("  hugsy --help      Show all commands")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)
	return nil
}

// resolvePaths resolves paths, applying the --config override
func resolvePaths() (*config.Paths, error) {
	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		paths.ProjectFile = configPath
	}
	return paths, nil
}

func newService() (*compose.Service, error) {
	paths, err := resolvePaths()
	if err != nil {
		return nil, err
	}
	return compose.New(paths)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var drift *herrors.DriftError
		if !errors.As(err, &drift) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Project file (default ./hugsy.toml, or $HUGSY_CONFIG)")
}
