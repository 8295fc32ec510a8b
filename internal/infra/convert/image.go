package convert

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp" // webp decode

	"convertbox/internal/domain"
	adapter "convertbox/internal/domain/ports/adapter"
)

var _ adapter.ImageEncoder = (*ImageConverter)(nil)

// ImageConverter re-encodes images between png/jpg/jpeg/webp. Sources are
// flattened onto a white three-channel canvas first, so paletted and
// alpha-carrying inputs never trip the encoders. webp encoding has no pure-Go
// encoder, so that one target goes through ffmpeg.
type ImageConverter struct {
	ffmpegBin string
	run       Runner
}

func NewImageConverter(ffmpegBin string, run Runner) *ImageConverter {
	return &ImageConverter{ffmpegBin: ffmpegBin, run: run}
}

func (c *ImageConverter) Convert(ctx context.Context, inputPath, format string) (string, error) {
	format = strings.ToLower(format)
	outputPath := withExt(inputPath, format)

	if format == "webp" {
		if err := c.run.Run(ctx, c.ffmpegBin, "-y", "-i", inputPath, outputPath); err != nil {
			return "", fmt.Errorf("image to webp: %w", err)
		}
		return outputPath, nil
	}

	img, err := decodeRGB(inputPath)
	if err != nil {
		return "", err
	}
	if err := encodeTo(outputPath, format, img, 0); err != nil {
		return "", err
	}
	return outputPath, nil
}

func (c *ImageConverter) Compress(ctx context.Context, inputPath, outputPath string, quality int) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(outputPath)), ".")
	if format == "webp" {
		err := c.run.Run(ctx, c.ffmpegBin,
			"-y", "-i", inputPath, "-q:v", strconv.Itoa(quality), outputPath)
		if err != nil {
			return fmt.Errorf("webp compress: %w", err)
		}
		return nil
	}

	img, err := decodeRGB(inputPath)
	if err != nil {
		return err
	}
	return encodeTo(outputPath, format, img, quality)
}

// decodeRGB decodes any registered format and flattens it onto an opaque
// white background.
func decodeRGB(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
	}

	bounds := src.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(flat, bounds, src, bounds.Min, draw.Over)
	return flat, nil
}

func encodeTo(path, format string, img image.Image, quality int) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	switch format {
	case "jpg", "jpeg":
		opts := &jpeg.Options{Quality: jpeg.DefaultQuality}
		if quality > 0 {
			opts.Quality = quality
		}
		return jpeg.Encode(out, img, opts)
	case "png":
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if quality > 0 {
			// A compression request on a png maps to the strongest deflate level.
			enc.CompressionLevel = png.BestCompression
		}
		return enc.Encode(out, img)
	case "gif":
		return gif.Encode(out, img, nil)
	default:
		return domain.ErrUnsupportedFormat
	}
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + strings.ToLower(ext)
}
