package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hugsylabs/hugsy/internal/compose"
	"github.com/hugsylabs/hugsy/internal/config"
	"github.com/hugsylabs/hugsy/internal/plugin"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Inspect the built-in plugins",
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered plugins",
	Args:  cobra.NoArgs,
	RunE:  runPluginList,
}

var pluginShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show what a plugin adds to an empty settings file",
	Long: `Show a plugin's metadata and the settings it produces when applied
alone to an empty document.

Examples:
  hugsy plugin show plugin-git
  hugsy plugin show commands-dev`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completePluginNames,
	RunE:              runPluginShow,
}

func init() {
	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginShowCmd)
	rootCmd.AddCommand(pluginCmd)
}

func runPluginList(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	plugins := svc.Registry().List()
	if len(plugins) == 0 {
		fmt.Println("No plugins registered")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tVERSION\tDESCRIPTION\n")
	fmt.Fprintf(w, "----\t-------\t-----------\n")
	for _, p := range plugins {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name(), p.Version(), truncate(p.Description(), 60))
	}
	return w.Flush()
}

func runPluginShow(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	p, err := svc.Registry().Get(args[0])
	if err != nil {
		return err
	}

	settings, report, err := plugin.NewRunner().Run(&config.Settings{}, []plugin.Plugin{p})
	if err != nil {
		return err
	}
	step := report.Steps[0]

	fmt.Printf("Name:        %s\n", p.Name())
	fmt.Printf("Version:     %s\n", p.Version())
	if p.Description() != "" {
		fmt.Printf("Description: %s\n", p.Description())
	}
	fmt.Printf("Adds:        %d rules, %d hooks, %d env, %d commands, %d subagents\n",
		step.Rules, step.Hooks, step.Env, step.Commands, step.Agents)
	fmt.Println()

	data, err := compose.Encode(settings)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
