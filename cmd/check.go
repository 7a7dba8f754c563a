package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	herrors "github.com/hugsylabs/hugsy/internal/errors"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report drift between settings.json and hugsy.toml",
	Long: `Compose the project without writing and compare the result with the
settings file on disk, key by key.

Reports:
  - missing: the settings file does not exist
  - changed: a key differs from the composed value
  - absent: a composed key is not in the file
  - extra: a key in the file that compose does not produce

Exit codes:
  0 - settings file is up to date
  1 - drift detected`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	project, err := svc.LoadProject()
	if err != nil {
		return err
	}

	report, err := svc.Check(project)
	if err != nil {
		return err
	}

	if !report.HasDrift() {
		fmt.Printf("%s is up to date\n", report.Path)
		return nil
	}

	fmt.Printf("Drift detected in %s:\n", report.Path)
	for _, line := range report.Strings() {
		fmt.Printf("  %s\n", line)
	}
	fmt.Println()
	fmt.Println("Run 'hugsy compose' to regenerate it")

	return herrors.NewDriftError(report.Path, report.Strings())
}
