package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hugsylabs/hugsy/internal/compose"
	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
	"github.com/hugsylabs/hugsy/internal/schema"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <settings.json>",
	Short: "Print the canonical form of a settings file",
	Long: `Read a settings file, fill in missing sections, migrate legacy shapes
(such as a bare commands array) and print the result.

The output is deterministic: normalizing it again yields identical bytes.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	settings, err := config.ReadSettings(args[0])
	if err != nil {
		return herrors.NewDocumentError(args[0], "load", err)
	}

	normalized := schema.Normalize(settings)
	if err := schema.Validate(normalized); err != nil {
		return err
	}

	data, err := compose.Encode(normalized)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
