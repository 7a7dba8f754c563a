package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Inspect built-in and user presets",
	Long: `Presets bundle plugins, command packages, permission rules, env variables
and hooks under one name. User presets live in $HUGSY_HOME/presets as YAML or
JSON files and shadow built-in presets of the same name.`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetList,
}

var presetShowCmd = &cobra.Command{
	Use:               "show <name>",
	Short:             "Show preset details",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completePresetNames,
	RunE:              runPresetShow,
}

func init() {
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	rootCmd.AddCommand(presetCmd)
}

func runPresetList(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	presets, err := svc.Presets()
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		fmt.Println("No presets found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tSOURCE\tVERSION\tDESCRIPTION\n")
	fmt.Fprintf(w, "----\t------\t-------\t-----------\n")
	for _, info := range presets {
		d := info.Descriptor
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, info.Source, d.Version, truncate(d.Description, 60))
	}
	return w.Flush()
}

func runPresetShow(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	info, err := svc.FindPreset(args[0])
	if err != nil {
		return err
	}
	d := info.Descriptor

	fmt.Printf("Name:        %s\n", d.Name)
	if d.Version != "" {
		fmt.Printf("Version:     %s\n", d.Version)
	}
	if d.Description != "" {
		fmt.Printf("Description: %s\n", d.Description)
	}
	fmt.Printf("Source:      %s\n", info.Source)
	if info.Path != "" {
		fmt.Printf("Path:        %s\n", info.Path)
	}
	fmt.Println()

	printList("Plugins", d.Plugins, func(id string) string {
		if svc.Registry().Has(id) {
			return id
		}
		return id + " (not registered, recorded only)"
	})
	if d.SlashCommands != nil {
		printList("Command packages", d.SlashCommands.Packages, nil)
	}
	printList("Allow", d.Permissions.Allow, nil)
	printList("Ask", d.Permissions.Ask, nil)
	printList("Deny", d.Permissions.Deny, nil)

	if len(d.Env) > 0 {
		fmt.Printf("Env (%d):\n", len(d.Env))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, k := range sortedKeys(d.Env) {
			fmt.Fprintf(w, "  %s\t%s\n", k, d.Env[k])
		}
		w.Flush()
	}

	hooks := 0
	for _, list := range d.Hooks {
		hooks += len(list)
	}
	if hooks > 0 {
		fmt.Printf("Hooks: %d\n", hooks)
	}
	if len(d.Commands) > 0 {
		fmt.Printf("Commands: %s\n", strings.Join(sortedKeys(d.Commands), ", "))
	}
	if len(d.Subagents) > 0 {
		fmt.Printf("Subagents: %s\n", strings.Join(sortedKeys(d.Subagents), ", "))
	}
	return nil
}

func printList(title string, items []string, label func(string) string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", title, len(items))
	for _, item := range items {
		if label != nil {
			item = label(item)
		}
		fmt.Printf("  %s\n", item)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
