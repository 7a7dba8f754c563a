package cmd

import (
	"github.com/spf13/cobra"
)

// completePluginNames lists registered plugin names
func completePluginNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	svc, err := newService()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return svc.Registry().Names(), cobra.ShellCompDirectiveNoFileComp
}

// completePresetNames lists built-in and user preset names
func completePresetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	svc, err := newService()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	presets, err := svc.Presets()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, p := range presets {
		names = append(names, p.Descriptor.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
