package images

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions lists the image file types accepted when scanning a folder.
var Extensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsImage reports whether path has one of the accepted image extensions.
func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// List returns the absolute paths of the images directly inside dir, sorted by name.
func List(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(abs, entry.Name()))
	}
	sort.Strings(paths)

	slog.Debug("Listed images", "dir", abs, "count", len(paths))
	return paths, nil
}

// CopyToWorkDir copies each file into workDir under its own base name and
// returns the destination paths in input order. Existing files are overwritten.
func CopyToWorkDir(paths []string, workDir string) ([]string, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	copied := make([]string, 0, len(paths))
	for _, src := range paths {
		dst := filepath.Join(workDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return copied, fmt.Errorf("failed to copy %s: %w", src, err)
		}
		copied = append(copied, dst)
	}

	slog.Info("Images copied to work directory", "dir", workDir, "count", len(copied))
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Keep the source timestamps like a plain `cp -p`.
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
