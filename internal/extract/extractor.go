package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultJPEGQuality matches the quality most video tools use for frame dumps.
const DefaultJPEGQuality = 95

// ProgressFunc receives the number of frames written so far and the decoder's
// total frame estimate. total is for display only and may be wrong.
type ProgressFunc func(current, total int)

// Extractor writes every frame of a video as a numbered JPEG.
type Extractor struct {
	decoder Decoder
	quality int
}

// NewExtractor returns an extractor using decoder. A quality outside 1..100
// falls back to DefaultJPEGQuality.
func NewExtractor(decoder Decoder, quality int) *Extractor {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Extractor{decoder: decoder, quality: quality}
}

// BaseName returns the video file name without directory or extension.
func BaseName(videoPath string) string {
	base := filepath.Base(videoPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FrameName returns the file name of the 1-based frame index for a video.
// The index is zero padded to four digits and widens past 9999.
func FrameName(videoBase string, index int) string {
	return fmt.Sprintf("%s_%04d.jpg", videoBase, index)
}

// OutputDirFor returns the directory frames of videoPath are written to under parent.
func OutputDirFor(parent, videoPath string) string {
	return filepath.Join(parent, BaseName(videoPath))
}

// Extract decodes videoPath from the start and writes each frame into outputDir.
// It returns the written paths in decode order. Reaching the end of the stream
// is normal completion, even with zero frames. Frames written before a failure
// or cancellation are left on disk.
func (e *Extractor) Extract(ctx context.Context, videoPath, outputDir string, progress ProgressFunc) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &Error{Kind: ErrExtraction, Video: videoPath, Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	stream, err := e.decoder.Open(ctx, videoPath)
	if err != nil {
		return nil, &Error{Kind: ErrStreamOpen, Video: videoPath, Err: err}
	}
	defer stream.Close()

	total := stream.FrameCount()
	if total <= 0 {
		return nil, &Error{Kind: ErrFrameCountUnavailable, Video: videoPath, Err: fmt.Errorf("decoder reported %d frames", total)}
	}

	slog.Info("Extracting frames", "video", videoPath, "output", outputDir, "frames_hint", total)

	base := BaseName(videoPath)
	var paths []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, canceled(videoPath, len(paths), err)
		}

		frame, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A canceled context kills the decoder mid-read; report that as cancellation.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, canceled(videoPath, len(paths), ctxErr)
			}
			return nil, &Error{Kind: ErrExtraction, Video: videoPath, Written: len(paths), Err: err}
		}

		path := filepath.Join(outputDir, FrameName(base, len(paths)+1))
		if err := e.writeJPEG(path, frame); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, canceled(videoPath, len(paths), ctxErr)
			}
			return nil, &Error{Kind: ErrExtraction, Video: videoPath, Written: len(paths), Err: err}
		}
		paths = append(paths, path)

		if progress != nil {
			progress(len(paths), total)
		}
	}

	slog.Info("Frames extracted", "video", videoPath, "count", len(paths))
	return paths, nil
}

func canceled(videoPath string, written int, err error) error {
	slog.Warn("Frame extraction canceled", "video", videoPath, "written", written)
	return &Error{Kind: ErrCanceled, Video: videoPath, Written: written, Err: err}
}

func (e *Extractor) writeJPEG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: e.quality}); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
