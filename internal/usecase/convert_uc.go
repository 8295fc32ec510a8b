package usecase

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
	"convertbox/internal/domain/ports/repository"
	"convertbox/internal/infra/logging"
	"convertbox/internal/infra/metrics"
)

var _ ConvertUseCase = (*convertUC)(nil)

// ConvertUseCase validates a conversion request, stores the source bytes and
// queues the job in a single transaction, and serves status lookups for the
// polling endpoint. Validation happens before any row is written: a rejected
// request leaves no upload and no job behind.
type ConvertUseCase interface {
	DispatchDocument(ctx context.Context, userID, kindSlug, filename string, data []byte) (*model.ConversionJob, error)
	DispatchImage(ctx context.Context, userID, filename, format string, data []byte) (*model.ConversionJob, error)
	DispatchVideo(ctx context.Context, userID, filename, format string, data []byte) (*model.ConversionJob, error)
	DispatchCompression(ctx context.Context, userID, filename, contentType, level string, data []byte) (*model.ConversionJob, error)
	Status(ctx context.Context, jobID string) (*model.ConversionJob, error)
}

// documentKinds maps the URL slug to the job kind and the source extensions
// that kind accepts.
var documentKinds = map[string]struct {
	kind model.JobKind
	exts map[string]bool
}{
	"office-to-pdf":      {model.JobOfficeToPDF, map[string]bool{".doc": true, ".docx": true, ".odt": true, ".ppt": true, ".pptx": true, ".xls": true, ".xlsx": true}},
	"pdf-to-office":      {model.JobPDFToOffice, map[string]bool{".pdf": true}},
	"pdf-to-office-ocr":  {model.JobPDFToOfficeOCR, map[string]bool{".pdf": true}},
	"pdf-to-office-text": {model.JobPDFToOfficeText, map[string]bool{".pdf": true}},
	"pdf-to-text":        {model.JobPDFToText, map[string]bool{".pdf": true}},
}

var imageSourceExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}
var imageFormats = map[string]bool{"jpg": true, "jpeg": true, "png": true, "webp": true}

var videoSourceExts = map[string]bool{".mp4": true, ".mkv": true, ".avi": true, ".mov": true}
var videoFormats = map[string]bool{"mp4": true, "mkv": true, "avi": true, "mov": true}

type convertUC struct {
	jobs    repository.JobRepository
	uploads repository.UploadRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewConvertUseCase(
	jobs repository.JobRepository,
	uploads repository.UploadRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *convertUC {
	return &convertUC{jobs: jobs, uploads: uploads, tm: tm, log: logger}
}

func (c *convertUC) DispatchDocument(ctx context.Context, userID, kindSlug, filename string, data []byte) (*model.ConversionJob, error) {
	defer logging.TraceDuration(c.log, "ConvertUC.DispatchDocument")()

	def, ok := documentKinds[kindSlug]
	if !ok {
		return nil, domain.ErrInvalidArgument
	}
	if !def.exts[strings.ToLower(filepath.Ext(filename))] {
		return nil, domain.ErrUnsupportedFormat
	}
	return c.dispatch(ctx, userID, filename, data, def.kind, nil)
}

func (c *convertUC) DispatchImage(ctx context.Context, userID, filename, format string, data []byte) (*model.ConversionJob, error) {
	defer logging.TraceDuration(c.log, "ConvertUC.DispatchImage")()

	format = strings.ToLower(format)
	if !imageFormats[format] || !imageSourceExts[strings.ToLower(filepath.Ext(filename))] {
		return nil, domain.ErrUnsupportedFormat
	}
	return c.dispatch(ctx, userID, filename, data, model.JobImageConvert, func(job *model.ConversionJob) {
		job.TargetFormat = format
	})
}

func (c *convertUC) DispatchVideo(ctx context.Context, userID, filename, format string, data []byte) (*model.ConversionJob, error) {
	defer logging.TraceDuration(c.log, "ConvertUC.DispatchVideo")()

	format = strings.ToLower(format)
	if !videoFormats[format] || !videoSourceExts[strings.ToLower(filepath.Ext(filename))] {
		return nil, domain.ErrUnsupportedFormat
	}
	return c.dispatch(ctx, userID, filename, data, model.JobVideoConvert, func(job *model.ConversionJob) {
		job.TargetFormat = format
	})
}

// DispatchCompression routes on the declared Content-Type: image/* compresses
// by quality, video/* by bitrate. The tier is resolved at execution time so a
// bad tier still fails the job rather than silently defaulting.
func (c *convertUC) DispatchCompression(ctx context.Context, userID, filename, contentType, level string, data []byte) (*model.ConversionJob, error) {
	defer logging.TraceDuration(c.log, "ConvertUC.DispatchCompression")()

	tier, err := model.ParseTier(strings.ToLower(level))
	if err != nil {
		return nil, err
	}

	var kind model.JobKind
	switch {
	case strings.HasPrefix(contentType, "image/"):
		kind = model.JobImageCompress
	case strings.HasPrefix(contentType, "video/"):
		kind = model.JobVideoCompress
	default:
		return nil, domain.ErrUnsupportedFormat
	}
	return c.dispatch(ctx, userID, filename, data, kind, func(job *model.ConversionJob) {
		job.Tier = tier
	})
}

// dispatch persists the source upload and the pending job atomically. mutate,
// when non-nil, stamps kind-specific fields before the job row is written.
func (c *convertUC) dispatch(ctx context.Context, userID, filename string, data []byte, kind model.JobKind, mutate func(*model.ConversionJob)) (*model.ConversionJob, error) {
	var job *model.ConversionJob
	err := c.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		src, err := model.NewUpload(filepath.Base(filename), data, userID)
		if err != nil {
			return err
		}
		if err := c.uploads.Save(ctx, tx, src); err != nil {
			return err
		}

		j, err := model.NewConversionJob(kind, userID, src.ID, src.Name)
		if err != nil {
			return err
		}
		if mutate != nil {
			mutate(j)
		}
		if err := c.jobs.Save(ctx, tx, j); err != nil {
			return err
		}

		metrics.ObserveUploadStored("source", src.Size())
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncJobDispatched(string(job.Kind))
	c.log.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Str("user_id", userID).
		Msg("conversion job dispatched")
	return job, nil
}

func (c *convertUC) Status(ctx context.Context, jobID string) (*model.ConversionJob, error) {
	defer logging.TraceDuration(c.log, "ConvertUC.Status")()
	if jobID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return c.jobs.FindByID(ctx, repository.NoTX, jobID)
}
