package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
	"convertbox/internal/domain/ports/adapter"
	"convertbox/internal/domain/ports/repository"
	"convertbox/internal/infra/convert"
	"convertbox/internal/infra/metrics"
)

// Adapters bundles the converter capabilities the executor drives.
type Adapters struct {
	Documents adapter.DocumentConverter
	OCR       adapter.OcrEngine
	Images    adapter.ImageEncoder
	Videos    adapter.Transcoder
}

// Options tunes executor behavior.
type Options struct {
	ScratchRoot       string
	OutputWaitTimeout time.Duration
	PollInterval      time.Duration
	OCRLanguage       string
}

// JobProcessor is the worker-side executor: it claims pending jobs, drives
// the relevant converter adapter through the two progress checkpoints, stores
// the output as a new upload for the job's user, and cleans its scratch
// directory on every exit path.
type JobProcessor struct {
	jobs     repository.JobRepository
	uploads  repository.UploadRepository
	adapters Adapters
	opts     Options
	log      *zerolog.Logger
}

func NewJobProcessor(
	jobs repository.JobRepository,
	uploads repository.UploadRepository,
	adapters Adapters,
	opts Options,
	log *zerolog.Logger,
) *JobProcessor {
	if opts.OutputWaitTimeout <= 0 {
		opts.OutputWaitTimeout = 30 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.OCRLanguage == "" {
		opts.OCRLanguage = "ara"
	}
	return &JobProcessor{jobs: jobs, uploads: uploads, adapters: adapters, opts: opts, log: log}
}

// Start runs the claim loop, feeding the pool. Run in a goroutine.
func (p *JobProcessor) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Msg("job processor started")
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("job processor stopping")
			return
		case <-ticker.C:
			_ = pool.Submit(func(ctx context.Context) error {
				p.processOne(ctx)
				return nil
			})
		}
	}
}

func (p *JobProcessor) processOne(ctx context.Context) {
	job, err := p.jobs.FetchAndMarkRunning(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			p.log.Error().Err(err).Msg("failed to fetch conversion job")
		}
		return
	}

	p.log.Info().Str("job_id", job.ID).Str("kind", string(job.Kind)).Msg("processing conversion job")
	start := time.Now()

	resultID, err := p.handleJob(ctx, job)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "failure"
		job.Fail(domain.ClassifyFailure(err), err.Error())
		p.log.Error().Err(err).Str("job_id", job.ID).Msg("conversion job failed")
	} else {
		job.Succeed(resultID)
	}

	metrics.ObserveJob(string(job.Kind), status, elapsed.Seconds())
	// Background context: the terminal state must land even if ctx is gone.
	if err := p.jobs.Save(context.Background(), nil, job); err != nil {
		p.log.Error().Err(err).Str("job_id", job.ID).Msg("failed to persist terminal job state")
	}
	p.log.Info().Str("job_id", job.ID).Str("status", status).Dur("duration", elapsed).Msg("conversion job finished")
}

// handleJob materializes the source, runs the adapter, confirms the output
// and stores it. Scratch paths live under a directory named by the job
// handle, so concurrent jobs with same-named source files never collide.
func (p *JobProcessor) handleJob(ctx context.Context, job *model.ConversionJob) (int64, error) {
	src, err := p.uploads.FindByID(ctx, repository.NoTX, job.SourceUploadID)
	if err != nil {
		return 0, fmt.Errorf("source upload not found: %w", err)
	}

	scratch := filepath.Join(p.opts.ScratchRoot, job.ID)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return 0, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	inputPath := filepath.Join(scratch, filepath.Base(src.Name))
	if err := os.WriteFile(inputPath, src.Data, 0o644); err != nil {
		return 0, fmt.Errorf("materialize source: %w", err)
	}

	outputPath, err := p.runAdapter(ctx, job, scratch, inputPath)
	if err != nil {
		return 0, err
	}

	job.Advance(80, "waiting for output")
	if err := p.jobs.Save(ctx, repository.NoTX, job); err != nil {
		p.log.Warn().Err(err).Str("job_id", job.ID).Msg("failed to persist progress checkpoint")
	}

	// The external process may flush its output after the invoking call
	// returns; a bounded wait turns an indefinite hang into a failure.
	if err := p.waitForOutput(ctx, outputPath); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return 0, fmt.Errorf("read converted output: %w", err)
	}
	out, err := model.NewUpload(filepath.Base(outputPath), data, job.UserID)
	if err != nil {
		return 0, err
	}
	if err := p.uploads.Save(ctx, repository.NoTX, out); err != nil {
		return 0, fmt.Errorf("store converted output: %w", err)
	}
	metrics.ObserveUploadStored("result", out.Size())
	return out.ID, nil
}

func (p *JobProcessor) runAdapter(ctx context.Context, job *model.ConversionJob, scratch, inputPath string) (string, error) {
	switch job.Kind {
	case model.JobOfficeToPDF:
		return p.adapters.Documents.OfficeToPDF(ctx, inputPath, scratch)

	case model.JobPDFToOffice:
		outputPath := withExt(inputPath, "docx")
		return outputPath, p.adapters.Documents.PDFToOffice(ctx, inputPath, outputPath)

	case model.JobPDFToOfficeOCR:
		searchable := filepath.Join(scratch, "ocr_searchable.pdf")
		if err := p.adapters.OCR.MakeSearchable(ctx, inputPath, searchable, p.opts.OCRLanguage); err != nil {
			return "", err
		}
		outputPath := withExt(inputPath, "docx")
		return outputPath, p.adapters.Documents.PDFToOffice(ctx, searchable, outputPath)

	case model.JobPDFToOfficeText:
		textPath := withExt(inputPath, "txt")
		if err := p.adapters.Documents.PDFToText(ctx, inputPath, textPath); err != nil {
			return "", err
		}
		return p.adapters.Documents.TextToOffice(ctx, textPath, scratch)

	case model.JobPDFToText:
		outputPath := withExt(inputPath, "txt")
		return outputPath, p.adapters.Documents.PDFToText(ctx, inputPath, outputPath)

	case model.JobImageConvert:
		return p.adapters.Images.Convert(ctx, inputPath, job.TargetFormat)

	case model.JobVideoConvert:
		return p.adapters.Videos.Convert(ctx, inputPath, job.TargetFormat)

	case model.JobImageCompress:
		quality, err := convert.ImageQuality(job.Tier)
		if err != nil {
			return "", err
		}
		outputPath := filepath.Join(scratch, "compressed_"+filepath.Base(inputPath))
		return outputPath, p.adapters.Images.Compress(ctx, inputPath, outputPath, quality)

	case model.JobVideoCompress:
		bitrate, err := convert.VideoBitrate(job.Tier)
		if err != nil {
			return "", err
		}
		outputPath := filepath.Join(scratch, "compressed_"+filepath.Base(inputPath))
		return outputPath, p.adapters.Videos.Compress(ctx, inputPath, outputPath, bitrate)
	}
	return "", domain.ErrInvalidArgument
}

// waitForOutput polls until outputPath exists and is non-empty, failing with
// ErrOutputTimeout once the bounded window elapses.
func (p *JobProcessor) waitForOutput(ctx context.Context, outputPath string) error {
	deadline := time.Now().Add(p.opts.OutputWaitTimeout)
	for {
		if info, err := os.Stat(outputPath); err == nil && info.Size() > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return domain.ErrOutputTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func withExt(path, ext string) string {
	return path[:len(path)-len(filepath.Ext(path))] + "." + ext
}
