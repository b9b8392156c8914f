package session

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// CSV column names.
const (
	ColumnFrameIndex     = "frame_index"
	ColumnImageName      = "image_name"
	ColumnClassification = "classification"
)

var header = []string{ColumnFrameIndex, ColumnImageName, ColumnClassification}

// EnsureCSVExt appends ".csv" to path unless it already ends with it (any case).
func EnsureCSVExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return path
	}
	return path + ".csv"
}

// ExportCSV writes the label map to path in image set order.
func (s *Session) ExportCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &Error{Kind: ErrWrite, Path: path, Err: err}
	}

	if err := s.WriteCSV(file); err != nil {
		file.Close()
		return &Error{Kind: ErrWrite, Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &Error{Kind: ErrWrite, Path: path, Err: err}
	}

	slog.Info("Labels exported", "path", path, "rows", len(s.paths))
	return nil
}

// WriteCSV writes the header and one row per image to w.
func (s *Session) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, p := range s.paths {
		name := filepath.Base(p)
		if err := cw.Write([]string{strconv.Itoa(i + 1), name, s.labels[name].String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV applies the labels stored in the csv at path to the current image set.
// On any failure the label map is left exactly as it was.
func (s *Session) ImportCSV(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Error{Kind: ErrFileNotFound, Path: path}
		}
		return &Error{Kind: ErrRead, Path: path, Err: err}
	}
	defer file.Close()

	if err := s.ReadCSV(file); err != nil {
		var csvErr *Error
		if errors.As(err, &csvErr) {
			csvErr.Path = path
			return csvErr
		}
		return &Error{Kind: ErrRead, Path: path, Err: err}
	}

	slog.Info("Labels imported", "path", path)
	return nil
}

// ReadCSV parses labels from r and applies them all-or-nothing.
func (s *Session) ReadCSV(r io.Reader) error {
	parsed, err := parseLabels(r)
	if err != nil {
		return err
	}

	var unknown []string
	for name := range parsed {
		if _, ok := s.labels[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &Error{Kind: ErrUnknownImages, Count: len(unknown), Names: unknown}
	}

	for name, label := range parsed {
		if _, ok := s.labels[name]; ok {
			s.labels[name] = label
		}
	}
	return nil
}

// parseLabels reads every row and keeps the ones carrying a valid label.
// Later rows for the same image name replace earlier ones.
func parseLabels(r io.Reader) (map[string]Label, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err == io.EOF {
		return nil, &Error{Kind: ErrMalformedHeader, Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, &Error{Kind: ErrRead, Err: err}
	}

	columns := make(map[string]int, len(head))
	for i, name := range head {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	var missing []string
	for _, name := range header {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{Kind: ErrMalformedHeader, Err: fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))}
	}

	nameCol := columns[ColumnImageName]
	labelCol := columns[ColumnClassification]

	parsed := make(map[string]Label)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &Error{Kind: ErrRead, Err: fmt.Errorf("line %d: %w", line, err)}
		}
		if nameCol >= len(record) || labelCol >= len(record) {
			slog.Debug("Dropping short csv row", "line", line)
			continue
		}
		label, ok := ParseLabel(record[labelCol])
		if !ok {
			slog.Debug("Dropping csv row with invalid classification", "line", line, "value", record[labelCol])
			continue
		}
		parsed[record[nameCol]] = label
	}
	return parsed, nil
}
