package report

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/frameclassifier/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func labeled() *session.Session {
	s := session.New()
	s.Load([]string{"/frames/a.jpg", "/frames/b.jpg", "/frames/c.jpg", "/frames/d.jpg"})
	s.SetLabel(session.Yes)
	s.Seek(2)
	s.SetLabel(session.No)
	s.Seek(3)
	s.SetLabel(session.Yes)
	return s
}

func TestRows(t *testing.T) {
	rows := Rows(labeled())

	assert.Equal(t, []Row{
		{FrameIndex: 1, ImageName: "a.jpg", Classification: "Yes"},
		{FrameIndex: 2, ImageName: "b.jpg", Classification: ""},
		{FrameIndex: 3, ImageName: "c.jpg", Classification: "No"},
		{FrameIndex: 4, ImageName: "d.jpg", Classification: "Yes"},
	}, rows)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Build(labeled(), "/frames", "")))

	out := buf.String()
	assert.Contains(t, out, "Images:    4")
	assert.Contains(t, out, "Yes:       2 (50.0%)")
	assert.Contains(t, out, "No:        1 (25.0%)")
	assert.Contains(t, out, "Unlabeled: 1 (25.0%)")
	assert.NotContains(t, out, "Duplicate")
}

func TestWriteTextEmptySet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Build(session.New(), "/frames", "")))
	assert.Contains(t, buf.String(), "Images:    0")
	assert.Contains(t, buf.String(), "(0.0%)")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, Build(labeled(), "/frames", "labels.csv")))

	var got Summary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "/frames", got.ImagesDir)
	assert.Equal(t, "labels.csv", got.LabelsFile)
	assert.Equal(t, session.Counts{Total: 4, Yes: 2, No: 1, Unlabeled: 1}, got.Counts)
	require.Len(t, got.Rows, 4)
	assert.Equal(t, "No", got.Rows[2].Classification)
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "labels.parquet")
	rows := Rows(labeled())

	require.NoError(t, WriteParquet(path, rows))
	got, err := ReadParquet(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReadParquetMissingFile(t *testing.T) {
	_, err := ReadParquet(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}
