package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/frameclassifier/internal/config"
	"github.com/lehigh-university-libraries/frameclassifier/internal/images"
	"github.com/spf13/cobra"
)

func newCopyCmd(cfg *config.Config) *cobra.Command {
	var workDir string

	cmd := &cobra.Command{
		Use:   "copy FILES...",
		Short: "Copy images into a work directory for labeling",
		Example: `  frameclassifier copy --work-dir ./work ~/Pictures/*.jpg`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workDir == "" {
				workDir = cfg.WorkDir
			}
			copied, err := images.CopyToWorkDir(args, workDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d images to %s\n", len(copied), workDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workDir, "work-dir", "w", "", "Destination directory (defaults to WORK_DIR)")

	return cmd
}
