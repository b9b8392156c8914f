package cmd

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/frameclassifier/internal/config"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cfg := &config.Config{}
	var verbose bool

	cmd := &cobra.Command{
		Use:   "frameclassifier",
		Short: "Extract video frames and classify images as Yes or No",
		Long: `Frameclassifier turns videos into numbered JPEG frames and walks an
ordered set of images, labeling each one Yes or No.

Labels are saved to and resumed from a csv file with the columns
frame_index, image_name and classification.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			loaded, err := config.Load()
			if err != nil {
				return err
			}
			*cfg = *loaded

			level, err := config.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			if verbose {
				level = slog.LevelDebug
			}
			config.SetupLogging(level)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newExtractCmd(cfg))
	cmd.AddCommand(newCopyCmd(cfg))
	cmd.AddCommand(newLabelCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newServeCmd(cfg))

	return cmd
}
