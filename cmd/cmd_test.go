package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/frameclassifier/internal/report"
	"github.com/lehigh-university-libraries/frameclassifier/internal/session"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func frames(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in      string
		want    assignment
		wantErr bool
	}{
		{in: "1=Yes", want: assignment{index: 0, label: session.Yes}},
		{in: "12 = No", want: assignment{index: 11, label: session.No}},
		{in: "0=Yes", wantErr: true},
		{in: "x=Yes", wantErr: true},
		{in: "1=yes", wantErr: true},
		{in: "1=", wantErr: true},
		{in: "1", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseAssignment(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAssignment(%q): expected error, got %+v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAssignment(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAssignment(%q): expected %+v, got %+v", tt.in, tt.want, got)
		}
	}
}

func TestLabelAndResume(t *testing.T) {
	dir := frames(t, "a.jpg", "b.jpg", "c.jpg")
	csvPath := filepath.Join(t.TempDir(), "labels")

	out, err := run(t, "label", "--images", dir, "--csv", csvPath, "--set", "1=Yes", "--set", "3=No")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "1 Yes, 1 No, 1 unlabeled") {
		t.Errorf("Unexpected output: %s", out)
	}

	data, err := os.ReadFile(csvPath + ".csv")
	if err != nil {
		t.Fatalf("Expected labels file: %v", err)
	}
	want := "frame_index,image_name,classification\n1,a.jpg,Yes\n2,b.jpg,\n3,c.jpg,No\n"
	if string(data) != want {
		t.Errorf("Expected %q, got %q", want, string(data))
	}

	if _, err := run(t, "label", "--images", dir, "--csv", csvPath+".csv", "--resume", "--set", "2=Yes"); err != nil {
		t.Fatalf("Unexpected error on resume: %v", err)
	}
	data, _ = os.ReadFile(csvPath + ".csv")
	want = "frame_index,image_name,classification\n1,a.jpg,Yes\n2,b.jpg,Yes\n3,c.jpg,No\n"
	if string(data) != want {
		t.Errorf("Expected %q after resume, got %q", want, string(data))
	}
}

func TestLabelOutOfRange(t *testing.T) {
	dir := frames(t, "a.jpg")
	_, err := run(t, "label", "--images", dir, "--csv", filepath.Join(t.TempDir(), "l.csv"), "--set", "5=Yes")
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("Expected out of range error, got %v", err)
	}
}

func TestReportFormats(t *testing.T) {
	dir := frames(t, "a.jpg", "b.jpg")
	csvPath := filepath.Join(t.TempDir(), "labels.csv")
	if _, err := run(t, "label", "--images", dir, "--csv", csvPath, "--set", "1=Yes"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out, err := run(t, "report", "--images", dir, "--csv", csvPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Yes:       1 (50.0%)") {
		t.Errorf("Unexpected text report: %s", out)
	}

	out, err = run(t, "report", "--images", dir, "--csv", csvPath, "--format", "yaml")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "image_name: a.jpg") {
		t.Errorf("Unexpected yaml report: %s", out)
	}

	if _, err := run(t, "report", "--images", dir, "--csv", csvPath, "--format", "parquet"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rows, err := report.ReadParquet(strings.TrimSuffix(csvPath, ".csv") + ".parquet")
	if err != nil {
		t.Fatalf("Expected parquet output: %v", err)
	}
	if len(rows) != 2 || rows[0].Classification != "Yes" {
		t.Errorf("Unexpected parquet rows: %+v", rows)
	}

	if _, err := run(t, "report", "--images", dir, "--csv", csvPath, "--format", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestReportRequiresLabels(t *testing.T) {
	dir := frames(t, "a.jpg")
	if _, err := run(t, "report", "--images", dir, "--csv", filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for missing labels file")
	}
}

func TestCopy(t *testing.T) {
	src := frames(t, "x.jpg")
	work := filepath.Join(t.TempDir(), "work")
	out, err := run(t, "copy", "--work-dir", work, filepath.Join(src, "x.jpg"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "Copied 1 images") {
		t.Errorf("Unexpected output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(work, "x.jpg")); err != nil {
		t.Errorf("Expected copied file: %v", err)
	}
}

func TestReportOutputFile(t *testing.T) {
	dir := frames(t, "a.jpg")
	csvPath := filepath.Join(t.TempDir(), "labels.csv")
	if _, err := run(t, "label", "--images", dir, "--csv", csvPath, "--set", "1=No"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	output := filepath.Join(t.TempDir(), "summary.yaml")
	if _, err := run(t, "report", "--images", dir, "--csv", csvPath, "--format", "yaml", "--output", output); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Expected summary file: %v", err)
	}
	if !strings.Contains(string(data), "classification: \"No\"") && !strings.Contains(string(data), "classification: No") {
		t.Errorf("Unexpected summary: %s", data)
	}

	missingDir := filepath.Join(t.TempDir(), "missing", "summary.txt")
	if _, err := run(t, "report", "--images", dir, "--csv", csvPath, "--output", missingDir); err == nil {
		t.Error("Expected error when the output file cannot be created")
	}
}

func TestWriteFileReportsFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := writeFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("ok"))
		return err
	}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "ok" {
		t.Errorf("Expected file contents ok, got %q", data)
	}

	boom := errors.New("disk full")
	err := writeFile(path, func(io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Expected write failure to be returned, got %v", err)
	}

	if _, statErr := os.Stat("/dev/full"); statErr == nil {
		err := writeFile("/dev/full", func(w io.Writer) error {
			_, err := w.Write([]byte("data"))
			return err
		})
		if err == nil {
			t.Error("Expected error writing to /dev/full")
		}
	}
}
