package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	adapter "convertbox/internal/domain/ports/adapter"
)

var _ adapter.DocumentConverter = (*SofficeConverter)(nil)

// SofficeConverter drives the headless office suite for office<->PDF work,
// the geometric PDF reconstructor for PDF->office, and the poppler text
// extractor for PDF->text.
type SofficeConverter struct {
	sofficeBin   string
	pdf2docxBin  string
	pdftotextBin string
	run          Runner
}

func NewSofficeConverter(sofficeBin, pdf2docxBin, pdftotextBin string, run Runner) *SofficeConverter {
	return &SofficeConverter{
		sofficeBin:   sofficeBin,
		pdf2docxBin:  pdf2docxBin,
		pdftotextBin: pdftotextBin,
		run:          run,
	}
}

// OfficeToPDF converts an office document to PDF. soffice derives the output
// name itself (input base + .pdf inside outDir), so the produced path is
// computed and returned.
func (c *SofficeConverter) OfficeToPDF(ctx context.Context, inputPath, outDir string) (string, error) {
	err := c.run.Run(ctx, c.sofficeBin,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, inputPath)
	if err != nil {
		return "", fmt.Errorf("office to pdf: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(outDir, base+".pdf"), nil
}

// PDFToOffice rebuilds an editable document from the PDF's geometry.
func (c *SofficeConverter) PDFToOffice(ctx context.Context, inputPath, outputPath string) error {
	err := c.run.Run(ctx, c.pdf2docxBin, "convert", inputPath, outputPath)
	if err != nil {
		return fmt.Errorf("pdf to office: %w", err)
	}
	return nil
}

// TextToOffice wraps plain text into an editable document via the office
// suite, mirroring OfficeToPDF's derived-name behavior.
func (c *SofficeConverter) TextToOffice(ctx context.Context, inputPath, outDir string) (string, error) {
	err := c.run.Run(ctx, c.sofficeBin,
		"--headless", "--convert-to", "docx", "--outdir", outDir, inputPath)
	if err != nil {
		return "", fmt.Errorf("text to office: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(outDir, base+".docx"), nil
}

// PDFToText extracts per-page text. Page breaks arrive as form feeds and are
// preserved; each line is reshaped so right-to-left runs read in display
// order.
func (c *SofficeConverter) PDFToText(ctx context.Context, inputPath, outputPath string) error {
	if err := c.run.Run(ctx, c.pdftotextBin, "-layout", inputPath, outputPath); err != nil {
		return fmt.Errorf("pdf to text: %w", err)
	}

	raw, err := os.ReadFile(outputPath)
	if err != nil {
		return fmt.Errorf("read extracted text: %w", err)
	}
	reshaped := ReshapeRTL(string(raw))
	if err := os.WriteFile(outputPath, []byte(reshaped), 0o644); err != nil {
		return fmt.Errorf("write reshaped text: %w", err)
	}
	return nil
}
