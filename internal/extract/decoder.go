package extract

import (
	"context"
	"image"
)

// Decoder opens video files for sequential frame decoding.
type Decoder interface {
	Open(ctx context.Context, videoPath string) (Stream, error)
}

// Stream yields decoded frames in order.
type Stream interface {
	// FrameCount is the decoder's estimate of the total number of frames.
	// It is only a hint for progress display.
	FrameCount() int
	// Next returns the next frame, or io.EOF once the stream is exhausted.
	Next() (image.Image, error)
	Close() error
}
