package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/frameclassifier/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		imagesDir string
		csvPath   string
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize saved labels or export them to Parquet",
		Example: `  frameclassifier report --images ./frames/holiday --csv labels.csv
  frameclassifier report --images ./frames/holiday --csv labels.csv --format yaml --output summary.yaml
  frameclassifier report --images ./frames/holiday --csv labels.csv --format parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(imagesDir, csvPath, true)
			if err != nil {
				return err
			}

			switch format {
			case "parquet":
				if output == "" {
					output = strings.TrimSuffix(csvPath, ".csv") + ".parquet"
				}
				if err := report.WriteParquet(output, report.Rows(s)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", s.Len(), output)
				return nil
			case "text", "yaml":
			default:
				return fmt.Errorf("unknown format %q (supported: text, yaml, parquet)", format)
			}

			sum := report.Build(s, imagesDir, csvPath)
			write := report.WriteText
			if format == "yaml" {
				write = report.WriteYAML
			}
			if output == "" {
				return write(cmd.OutOrStdout(), sum)
			}
			return writeFile(output, func(w io.Writer) error { return write(w, sum) })
		},
	}

	cmd.Flags().StringVarP(&imagesDir, "images", "i", "", "Folder of labeled images (required)")
	cmd.Flags().StringVarP(&csvPath, "csv", "c", "", "Labels csv (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, yaml or parquet")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("images")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

// writeFile creates path, runs fn on it and reports any write or close failure.
func writeFile(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := fn(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
