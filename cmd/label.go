package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/frameclassifier/internal/images"
	"github.com/lehigh-university-libraries/frameclassifier/internal/session"
	"github.com/spf13/cobra"
)

type assignment struct {
	index int
	label session.Label
}

// parseAssignment parses "N=Yes" or "N=No" with a 1-based N.
func parseAssignment(s string) (assignment, error) {
	idx, lbl, ok := strings.Cut(s, "=")
	if !ok {
		return assignment{}, fmt.Errorf("invalid assignment %q, expected N=Yes or N=No", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil || n < 1 {
		return assignment{}, fmt.Errorf("invalid image number in %q", s)
	}
	label, valid := session.ParseLabel(strings.TrimSpace(lbl))
	if !valid || label == session.Unlabeled {
		return assignment{}, fmt.Errorf("invalid label in %q, expected Yes or No", s)
	}
	return assignment{index: n - 1, label: label}, nil
}

// loadSession loads the images in dir and, when csvPath is set, the labels saved there.
// A missing csv is only an error when required is true.
func loadSession(dir, csvPath string, required bool) (*session.Session, error) {
	paths, err := images.List(dir)
	if err != nil {
		return nil, err
	}
	s := session.New()
	s.Load(paths)

	if csvPath == "" {
		return s, nil
	}
	if err := s.ImportCSV(csvPath); err != nil {
		if !required && errors.Is(err, session.ErrFileNotFound) {
			slog.Info("No saved labels, starting fresh", "csv", csvPath)
			return s, nil
		}
		return nil, err
	}
	s.Seek(0)
	return s, nil
}

func newLabelCmd() *cobra.Command {
	var (
		imagesDir string
		csvPath   string
		sets      []string
		resume    bool
	)

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Label images in a folder and save the labels to csv",
		Long: `Loads every image in --images (sorted by name), applies the --set
assignments by 1-based image number, and writes the labels to --csv.

With --resume, labels already saved in --csv are loaded first.`,
		Example: `  frameclassifier label --images ./frames/holiday --csv labels.csv --set 1=Yes --set 2=No
  frameclassifier label --images ./frames/holiday --csv labels.csv --resume --set 3=Yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments := make([]assignment, 0, len(sets))
			for _, raw := range sets {
				a, err := parseAssignment(raw)
				if err != nil {
					return err
				}
				assignments = append(assignments, a)
			}

			path := session.EnsureCSVExt(csvPath)
			source := ""
			if resume {
				source = path
			}
			s, err := loadSession(imagesDir, source, false)
			if err != nil {
				return err
			}
			if s.Len() == 0 {
				return fmt.Errorf("no images found in %s", imagesDir)
			}

			for _, a := range assignments {
				if !s.Seek(a.index) {
					return fmt.Errorf("image %d is out of range (1-%d)", a.index+1, s.Len())
				}
				s.SetLabel(a.label)
			}

			if err := s.ExportCSV(path); err != nil {
				return err
			}

			c := s.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %d Yes, %d No, %d unlabeled\n", path, c.Yes, c.No, c.Unlabeled)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagesDir, "images", "i", "", "Folder of images to label (required)")
	cmd.Flags().StringVarP(&csvPath, "csv", "c", "", "Labels csv to write (required)")
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Label assignment N=Yes or N=No (repeatable)")
	cmd.Flags().BoolVarP(&resume, "resume", "r", false, "Load labels already saved in --csv first")
	_ = cmd.MarkFlagRequired("images")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}
