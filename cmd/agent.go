package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hugsylabs/hugsy/internal/builtin"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
	"github.com/hugsylabs/hugsy/internal/frontmatter"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Inspect subagent documents",
}

var agentShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show the frontmatter of a subagent document",
	Long: `Parse a subagent markdown document and print its header fields, the
subagent hugsy would register from it and the size of its body.

A bare name is looked up in $HUGSY_HOME/agents.`,
	Args: cobra.ExactArgs(1),
	RunE: runAgentShow,
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subagent documents in $HUGSY_HOME/agents",
	Args:  cobra.NoArgs,
	RunE:  runAgentList,
}

func init() {
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentShowCmd)
	rootCmd.AddCommand(agentCmd)
}

func runAgentList(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	items, err := svc.Agents()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Printf("No subagent documents in %s\n", svc.Paths().AgentsDir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tDESCRIPTION\tPATH\n")
	fmt.Fprintf(w, "----\t-----------\t----\n")
	for _, item := range items {
		desc := ""
		if data, err := os.ReadFile(item.Path); err == nil {
			desc, _ = frontmatter.Parse(string(data)).Metadata.String("description")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", item.Name, truncate(desc, 50), item.Path)
	}
	return w.Flush()
}

func runAgentShow(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		path = paths.AgentPath(args[0])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return herrors.NewDocumentError(path, "read agent", err)
	}
	doc := frontmatter.Parse(string(data))

	fmt.Printf("File: %s\n", path)
	if !doc.HasHeader {
		fmt.Println("No frontmatter header")
	} else {
		fmt.Println("Metadata:")
		for _, key := range doc.Metadata.Keys() {
			if list, ok := doc.Metadata.Strings(key); ok {
				fmt.Printf("  %s: [%s]\n", key, strings.Join(list, ", "))
				continue
			}
			value, _ := doc.Metadata.String(key)
			fmt.Printf("  %s: %s\n", key, value)
		}
	}
	fmt.Printf("Body: %d bytes, %d lines\n", len(doc.Body), lineCount(doc.Body))

	agent := builtin.AgentFromDocument(string(data), builtin.AgentDefaults{Name: fileStem(path)})
	fmt.Println()
	fmt.Printf("Registers subagent %q as plugin %s%s\n", agent.Name, builtin.SubagentPrefix, agent.Name)
	if len(agent.Tools) > 0 {
		fmt.Printf("  tools: %s\n", strings.Join(agent.Tools, ", "))
	}
	return nil
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
