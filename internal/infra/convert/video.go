package convert

import (
	"context"
	"fmt"
	"strings"

	adapter "convertbox/internal/domain/ports/adapter"
)

var _ adapter.Transcoder = (*FFmpegTranscoder)(nil)

// FFmpegTranscoder re-encodes video containers and codecs via ffmpeg.
type FFmpegTranscoder struct {
	bin string
	run Runner
}

func NewFFmpegTranscoder(bin string, run Runner) *FFmpegTranscoder {
	return &FFmpegTranscoder{bin: bin, run: run}
}

// Convert re-encodes into the target container with h264/aac streams and
// returns the output path (input path with the new extension).
func (t *FFmpegTranscoder) Convert(ctx context.Context, inputPath, format string) (string, error) {
	outputPath := withExt(inputPath, strings.ToLower(format))
	err := t.run.Run(ctx, t.bin,
		"-y", "-i", inputPath, "-c:v", "libx264", "-c:a", "aac", outputPath)
	if err != nil {
		return "", fmt.Errorf("video convert: %w", err)
	}
	return outputPath, nil
}

// Compress re-encodes at the given target video bitrate.
func (t *FFmpegTranscoder) Compress(ctx context.Context, inputPath, outputPath, bitrate string) error {
	err := t.run.Run(ctx, t.bin, "-y", "-i", inputPath, "-b:v", bitrate, outputPath)
	if err != nil {
		return fmt.Errorf("video compress: %w", err)
	}
	return nil
}
