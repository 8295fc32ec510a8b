package convert

import (
	"context"
	"fmt"

	adapter "convertbox/internal/domain/ports/adapter"
)

var _ adapter.OcrEngine = (*OcrmypdfEngine)(nil)

// OcrmypdfEngine wraps the ocrmypdf binary. It produces a searchable PDF that
// the document converter can then rebuild into an editable file.
type OcrmypdfEngine struct {
	bin string
	run Runner
}

func NewOcrmypdfEngine(bin string, run Runner) *OcrmypdfEngine {
	return &OcrmypdfEngine{bin: bin, run: run}
}

func (e *OcrmypdfEngine) MakeSearchable(ctx context.Context, inputPath, outputPath, lang string) error {
	err := e.run.Run(ctx, e.bin, "--force-ocr", "--language", lang, inputPath, outputPath)
	if err != nil {
		return fmt.Errorf("ocr: %w", err)
	}
	return nil
}
