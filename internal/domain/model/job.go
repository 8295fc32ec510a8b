package model

import (
	"time"

	"github.com/oklog/ulid/v2"

	"convertbox/internal/domain"
)

// JobKind selects which converter adapter the executor drives.
type JobKind string

const (
	JobOfficeToPDF     JobKind = "office_to_pdf"
	JobPDFToOffice     JobKind = "pdf_to_office"
	JobPDFToOfficeOCR  JobKind = "pdf_to_office_ocr"
	JobPDFToOfficeText JobKind = "pdf_to_office_text"
	JobPDFToText       JobKind = "pdf_to_text"
	JobImageConvert    JobKind = "image_convert"
	JobVideoConvert    JobKind = "video_convert"
	JobImageCompress   JobKind = "image_compress"
	JobVideoCompress   JobKind = "video_compress"
)

// JobState values double as the wire states reported by /task_status.
type JobState string

const (
	StatePending  JobState = "PENDING"
	StateProgress JobState = "PROGRESS"
	StateSuccess  JobState = "SUCCESS"
	StateFailure  JobState = "FAILURE"
)

// Tier is a compression level, not a quality level: "high" means the most
// compression and therefore the smallest (worst-looking) output.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierHigh, TierMedium, TierLow:
		return Tier(s), nil
	}
	return "", domain.ErrUnknownTier
}

// ConversionJob is one asynchronous conversion request. The ID is a ULID and
// is the opaque handle handed to the client for polling; it carries no data
// beyond ordering entropy and is safe to embed in a URL.
type ConversionJob struct {
	ID             string
	Kind           JobKind
	State          JobState
	Progress       int
	Message        string
	UserID         string
	SourceUploadID int64
	SourceName     string
	TargetFormat   string
	Tier           Tier
	ResultUploadID int64
	FailureKind    domain.FailureKind
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewConversionJob(kind JobKind, userID string, sourceUploadID int64, sourceName string) (*ConversionJob, error) {
	if userID == "" || sourceUploadID <= 0 || sourceName == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &ConversionJob{
		ID:             ulid.Make().String(),
		Kind:           kind,
		State:          StatePending,
		Progress:       0,
		Message:        "queued",
		UserID:         userID,
		SourceUploadID: sourceUploadID,
		SourceName:     sourceName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (j *ConversionJob) Terminal() bool {
	return j.State == StateSuccess || j.State == StateFailure
}

// Advance moves a non-terminal job to PROGRESS at the given checkpoint.
// Progress never moves backwards.
func (j *ConversionJob) Advance(progress int, message string) {
	if j.Terminal() || progress < j.Progress {
		return
	}
	j.State = StateProgress
	j.Progress = progress
	j.Message = message
	j.UpdatedAt = time.Now()
}

func (j *ConversionJob) Succeed(resultUploadID int64) {
	j.State = StateSuccess
	j.Progress = 100
	j.Message = "conversion complete"
	j.ResultUploadID = resultUploadID
	j.UpdatedAt = time.Now()
}

func (j *ConversionJob) Fail(kind domain.FailureKind, message string) {
	j.State = StateFailure
	j.FailureKind = kind
	j.LastError = message
	j.Message = "conversion failed"
	j.UpdatedAt = time.Now()
}
