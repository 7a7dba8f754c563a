package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hugsylabs/hugsy/internal/compose"
	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
	"github.com/hugsylabs/hugsy/internal/picker"
)

const defaultPreset = "recommended"

var (
	initInteractive bool
	initPresets     []string
	initPlugins     []string
	initForce       bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create hugsy.toml in the current directory",
	Long: `Create a project file that extends presets and applies plugins.

Without flags the project extends the recommended preset. Use -i to pick
presets and plugins interactively.

Examples:
  hugsy init
  hugsy init --preset recommended --plugins plugin-node,plugin-typescript
  hugsy init -i`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Select presets and plugins interactively")
	initCmd.Flags().StringSliceVar(&initPresets, "preset", nil, "Presets to extend (comma-separated)")
	initCmd.Flags().StringSliceVar(&initPlugins, "plugins", nil, "Plugins to apply (comma-separated)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing project file")
	initCmd.RegisterFlagCompletionFunc("preset", completePresetNames)
	initCmd.RegisterFlagCompletionFunc("plugins", completePluginNames)
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	if paths.ProjectExists() && !initForce {
		return fmt.Errorf("%w: %s\n\nUse --force to overwrite it", herrors.ErrProjectExists, paths.ProjectFile)
	}

	svc, err := compose.New(paths)
	if err != nil {
		return err
	}

	presets, plugins := initPresets, initPlugins
	if len(presets) == 0 && len(plugins) == 0 {
		presets = []string{defaultPreset}
	}

	if initInteractive {
		selections, err := pickProject(svc, presets, plugins)
		if err != nil {
			return fmt.Errorf("selection failed: %w", err)
		}
		if selections == nil {
			fmt.Println("Cancelled")
			return nil
		}
		presets, plugins = selections[presetsTab], selections[pluginsTab]
	}

	for _, name := range presets {
		if _, err := svc.FindPreset(name); err != nil {
			return err
		}
	}
	for _, name := range plugins {
		if _, err := svc.Registry().Get(name); err != nil {
			return err
		}
	}

	cfg := config.DefaultProjectConfig()
	if presets != nil {
		cfg.Extends = presets
	}
	if plugins != nil {
		cfg.Plugins = plugins
	}
	if err := cfg.Save(paths.ProjectFile); err != nil {
		return herrors.NewDocumentError(paths.ProjectFile, "write", err)
	}

	fmt.Printf("Created %s\n", paths.ProjectFile)
	if len(presets) > 0 {
		fmt.Printf("  extends: %v\n", presets)
	}
	if len(plugins) > 0 {
		fmt.Printf("  plugins: %v\n", plugins)
	}
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit hugsy.toml to add env, permissions, hooks or agents")
	fmt.Println("  2. Run 'hugsy compose' to write .claude/settings.json")
	return nil
}

const (
	presetsTab = "Presets"
	pluginsTab = "Plugins"
)

func pickProject(svc *compose.Service, presets, plugins []string) (map[string][]string, error) {
	infos, err := svc.Presets()
	if err != nil {
		return nil, err
	}

	checked := func(list []string) map[string]bool {
		m := make(map[string]bool, len(list))
		for _, id := range list {
			m[id] = true
		}
		return m
	}
	wantPreset, wantPlugin := checked(presets), checked(plugins)

	var presetItems []picker.Item
	for _, info := range infos {
		d := info.Descriptor
		presetItems = append(presetItems, picker.Item{
			ID:          d.Name,
			Label:       fmt.Sprintf("%s (%s)", d.Name, info.Source),
			Description: d.Description,
			Selected:    wantPreset[d.Name],
		})
	}

	var pluginItems []picker.Item
	for _, p := range svc.Registry().List() {
		pluginItems = append(pluginItems, picker.Item{
			ID:          p.Name(),
			Label:       p.Name(),
			Description: p.Description(),
			Selected:    wantPlugin[p.Name()],
		})
	}

	return picker.Run("Create hugsy.toml", []picker.Tab{
		{Name: presetsTab, Items: presetItems},
		{Name: pluginsTab, Items: pluginItems},
	})
}
