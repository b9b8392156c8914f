package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegDecoder decodes video with the ffmpeg and ffprobe executables.
type FFmpegDecoder struct {
	FFmpegPath  string
	FFprobePath string
}

// NewFFmpegDecoder returns a decoder using the given executables.
// Empty paths fall back to "ffmpeg" and "ffprobe" on PATH.
func NewFFmpegDecoder(ffmpegPath, ffprobePath string) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegDecoder{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		NbFrames     string `json:"nb_frames"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type videoInfo struct {
	width      int
	height     int
	frameCount int
}

// Open probes the first video stream and starts decoding it to raw RGB frames.
func (d *FFmpegDecoder) Open(ctx context.Context, videoPath string) (Stream, error) {
	info, err := d.probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, d.FFmpegPath,
		"-v", "error",
		"-nostdin",
		"-noautorotate",
		"-i", videoPath,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	slog.Debug("ffmpeg decoding started", "video", videoPath, "width", info.width, "height", info.height, "frames", info.frameCount)

	return &ffmpegStream{
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		info:   info,
		buf:    make([]byte, info.width*info.height*3),
	}, nil
}

func (d *FFmpegDecoder) probe(ctx context.Context, videoPath string) (videoInfo, error) {
	cmd := exec.CommandContext(ctx, d.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,nb_frames,avg_frame_rate,duration:format=duration",
		"-of", "json",
		videoPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return videoInfo{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (videoInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return videoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return videoInfo{}, errors.New("no video stream found")
	}

	s := probe.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return videoInfo{}, fmt.Errorf("invalid frame size %dx%d", s.Width, s.Height)
	}

	info := videoInfo{width: s.Width, height: s.Height}
	if n, err := strconv.Atoi(s.NbFrames); err == nil {
		info.frameCount = n
		return info, nil
	}

	// Containers such as mkv carry no frame count; estimate it from duration and rate.
	duration := s.Duration
	if _, err := strconv.ParseFloat(duration, 64); err != nil {
		duration = probe.Format.Duration
	}
	secs, err := strconv.ParseFloat(duration, 64)
	if err != nil {
		return info, nil
	}
	if fps := parseRate(s.AvgFrameRate); fps > 0 {
		info.frameCount = int(math.Round(secs * fps))
	}
	return info, nil
}

func parseRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	info   videoInfo
	buf    []byte
	waited bool
}

func (s *ffmpegStream) FrameCount() int {
	return s.info.frameCount
}

func (s *ffmpegStream) Next() (image.Image, error) {
	_, err := io.ReadFull(s.stdout, s.buf)
	if err == nil {
		return rgbToImage(s.buf, s.info.width, s.info.height), nil
	}
	if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	// A short read means ffmpeg stopped; its exit status tells whether that was the end.
	if werr := s.wait(); werr != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", werr, strings.TrimSpace(s.stderr.String()))
	}
	return nil, io.EOF
}

func (s *ffmpegStream) Close() error {
	if s.waited {
		return nil
	}
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.wait()
	return nil
}

func (s *ffmpegStream) wait() error {
	if s.waited {
		return nil
	}
	s.waited = true
	return s.cmd.Wait()
}

func rgbToImage(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(buf); i, j = i+3, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
