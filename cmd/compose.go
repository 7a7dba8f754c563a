package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hugsylabs/hugsy/internal/compose"
	"github.com/hugsylabs/hugsy/internal/logging"
)

var (
	composeOutput string
	composePrint  bool
	composeWatch  bool
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose settings.json from hugsy.toml",
	Long: `Run the project's presets, plugins and subagents over its baseline and
write the composed settings file (default .claude/settings.json).

Examples:
  hugsy compose
  hugsy compose --print
  hugsy compose --output settings.local.json
  hugsy compose --watch`,
	Args: cobra.NoArgs,
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVarP(&composeOutput, "output", "o", "", "Write settings to this path instead of the project output")
	composeCmd.Flags().BoolVarP(&composePrint, "print", "p", false, "Print the composed settings instead of writing them")
	composeCmd.Flags().BoolVarP(&composeWatch, "watch", "w", false, "Recompose whenever an input file changes")
	composeCmd.MarkFlagsMutuallyExclusive("print", "watch")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	if composeOutput != "" {
		svc.SetOutput(composeOutput)
	}

	if composeWatch {
		return watchCompose(svc)
	}

	if composePrint {
		project, err := svc.LoadProject()
		if err != nil {
			return err
		}
		result, err := svc.Run(project)
		if err != nil {
			return err
		}
		data, err := compose.Encode(result.Settings)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	result, err := svc.Compose()
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func printResult(result *compose.Result) {
	s := result.Settings
	fmt.Printf("Wrote %s\n", result.Output)
	fmt.Printf("  plugins:     %d\n", len(result.Report.Steps))
	fmt.Printf("  permissions: %d allow, %d ask, %d deny\n",
		len(s.Permissions.Allow), len(s.Permissions.Ask), len(s.Permissions.Deny))
	hooks := 0
	for _, list := range s.Hooks {
		hooks += len(list)
	}
	fmt.Printf("  hooks:       %d\n", hooks)
	fmt.Printf("  commands:    %d\n", len(s.Commands.Entries))
	fmt.Printf("  subagents:   %d\n", len(s.Subagents.Entries))
}

func watchCompose(svc *compose.Service) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Watching for changes (Ctrl+C to stop)...")
	return svc.Watch(ctx, func(result *compose.Result, err error) {
		if err != nil {
			logging.Error("CLI", err, "Compose failed")
			fmt.Fprintf(os.Stderr, "compose failed: %v\n", err)
			return
		}
		printResult(result)
	})
}
