package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/frameclassifier/internal/session"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Row is one image of a labeled set, as written to YAML and Parquet.
type Row struct {
	FrameIndex     int    `yaml:"frame_index" parquet:"frame_index"`
	ImageName      string `yaml:"image_name" parquet:"image_name"`
	Classification string `yaml:"classification" parquet:"classification"`
}

// Summary describes a labeled image set.
type Summary struct {
	ImagesDir      string         `yaml:"images_dir"`
	LabelsFile     string         `yaml:"labels_file,omitempty"`
	GeneratedAt    string         `yaml:"generated_at"`
	Counts         session.Counts `yaml:"counts"`
	DuplicateNames []string       `yaml:"duplicate_names,omitempty"`
	Rows           []Row          `yaml:"rows"`
}

// Rows returns the session's images in set order with 1-based indexes.
func Rows(s *session.Session) []Row {
	entries := s.Entries()
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			FrameIndex:     e.Index + 1,
			ImageName:      e.Name,
			Classification: e.Label.String(),
		}
	}
	return rows
}

// Build collects the summary for s.
func Build(s *session.Session, imagesDir, labelsFile string) Summary {
	return Summary{
		ImagesDir:      imagesDir,
		LabelsFile:     labelsFile,
		GeneratedAt:    time.Now().Format(time.RFC3339),
		Counts:         s.Counts(),
		DuplicateNames: s.DuplicateNames(),
		Rows:           Rows(s),
	}
}

// WriteText prints a short human readable summary.
func WriteText(w io.Writer, sum Summary) error {
	c := sum.Counts
	_, err := fmt.Fprintf(w, "Images:    %d\nYes:       %d (%s)\nNo:        %d (%s)\nUnlabeled: %d (%s)\n",
		c.Total,
		c.Yes, percent(c.Yes, c.Total),
		c.No, percent(c.No, c.Total),
		c.Unlabeled, percent(c.Unlabeled, c.Total),
	)
	if err != nil {
		return err
	}
	if len(sum.DuplicateNames) > 0 {
		_, err = fmt.Fprintf(w, "Duplicate image names share one label: %v\n", sum.DuplicateNames)
	}
	return err
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}

// WriteYAML encodes the summary as YAML.
func WriteYAML(w io.Writer, sum Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sum); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// WriteParquet writes one row per image to path.
func WriteParquet(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}

// ReadParquet loads rows previously written by WriteParquet.
func ReadParquet(path string) ([]Row, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}
