package adapter

import "context"

// Capability interfaces wrapping the external conversion tools. Each call
// produces exactly one output file at the given (or derived) path, or fails;
// partial output is never valid.

type DocumentConverter interface {
	// OfficeToPDF converts an office document to PDF inside outDir and returns
	// the produced path.
	OfficeToPDF(ctx context.Context, inputPath, outDir string) (string, error)
	// PDFToOffice rebuilds an editable document from PDF geometry.
	PDFToOffice(ctx context.Context, inputPath, outputPath string) error
	// PDFToText extracts per-page text, preserving page breaks and reshaping
	// right-to-left runs for display order.
	PDFToText(ctx context.Context, inputPath, outputPath string) error
	// TextToOffice wraps recovered plain text back into an editable document
	// inside outDir and returns the produced path.
	TextToOffice(ctx context.Context, inputPath, outDir string) (string, error)
}

type OcrEngine interface {
	// MakeSearchable runs OCR over a scanned PDF and writes a searchable PDF.
	MakeSearchable(ctx context.Context, inputPath, outputPath, lang string) error
}

type ImageEncoder interface {
	// Convert re-encodes the image into format and returns the output path
	// (input path with the new extension).
	Convert(ctx context.Context, inputPath, format string) (string, error)
	// Compress re-encodes at the given encoder quality (1-100).
	Compress(ctx context.Context, inputPath, outputPath string, quality int) error
}

type Transcoder interface {
	// Convert re-encodes the video into the target container and returns the
	// output path.
	Convert(ctx context.Context, inputPath, format string) (string, error)
	// Compress re-encodes at the given video bitrate (e.g. "500k").
	Compress(ctx context.Context, inputPath, outputPath, bitrate string) error
}
