package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/frameclassifier/internal/config"
	"github.com/lehigh-university-libraries/frameclassifier/internal/extract"
	"github.com/lehigh-university-libraries/frameclassifier/internal/session"
	"github.com/spf13/cobra"
)

func newExtractCmd(cfg *config.Config) *cobra.Command {
	var (
		outputParent string
		csvPath      string
	)

	cmd := &cobra.Command{
		Use:   "extract VIDEO",
		Short: "Write every frame of a video as a numbered JPEG",
		Long: `Decodes VIDEO from the start and writes each frame to
OUTPUT_PARENT/<video name>/<video name>_0001.jpg, _0002.jpg and so on.

Frames written before a failure or Ctrl+C are left on disk.`,
		Example: `  # Extract frames under ./frames/holiday/
  frameclassifier extract holiday.mp4 --output-parent ./frames

  # Also write a blank labels file for the frames
  frameclassifier extract holiday.mp4 --output-parent ./frames --csv holiday-labels`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video := args[0]
			outputDir := extract.OutputDirFor(outputParent, video)

			extractor := extract.NewExtractor(extract.NewFFmpegDecoder(cfg.FFmpegPath, cfg.FFprobePath), cfg.JPEGQuality)
			paths, err := extractor.Extract(cmd.Context(), video, outputDir, progressLogger(video))
			if err != nil {
				return fmt.Errorf("failed to extract frames: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d frames to %s\n", len(paths), outputDir)

			if csvPath != "" {
				s := session.New()
				s.Load(paths)
				path := session.EnsureCSVExt(csvPath)
				if err := s.ExportCSV(path); err != nil {
					return fmt.Errorf("failed to write labels file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote labels file %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputParent, "output-parent", "o", ".", "Directory that receives the per-video frame folder")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also write an unlabeled csv for the extracted frames")

	return cmd
}

// progressLogger logs roughly every tenth of the expected frames.
func progressLogger(video string) extract.ProgressFunc {
	return func(current, total int) {
		step := total / 10
		if step < 1 {
			step = 1
		}
		if current%step == 0 || current == total {
			slog.Info("Extraction progress", "video", video, "current", current, "total", total)
		}
	}
}
