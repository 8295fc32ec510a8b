package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
	"convertbox/internal/domain/ports/repository"
	"convertbox/internal/infra/logging"
	"convertbox/internal/infra/metrics"
)

var _ UploadUseCase = (*uploadUC)(nil)

// UploadUseCase covers the user-facing file operations. Ownership is checked
// on every access: an upload is only ever visible to the user it belongs to.
type UploadUseCase interface {
	Get(ctx context.Context, userID string, id int64) (*model.Upload, error)
	List(ctx context.Context, userID string) ([]*model.Upload, error)
	Delete(ctx context.Context, userID string, id int64) error
}

type uploadUC struct {
	uploads repository.UploadRepository
	log     *zerolog.Logger
}

func NewUploadUseCase(uploads repository.UploadRepository, logger *zerolog.Logger) *uploadUC {
	return &uploadUC{uploads: uploads, log: logger}
}

// Get returns the upload with its data, or ErrAccessDenied when it exists but
// belongs to someone else.
func (u *uploadUC) Get(ctx context.Context, userID string, id int64) (*model.Upload, error) {
	defer logging.TraceDuration(u.log, "UploadUC.Get")()

	up, err := u.uploads.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if up.UserID != userID {
		return nil, domain.ErrAccessDenied
	}
	metrics.IncDownload()
	return up, nil
}

func (u *uploadUC) List(ctx context.Context, userID string) ([]*model.Upload, error) {
	defer logging.TraceDuration(u.log, "UploadUC.List")()
	return u.uploads.ListByUser(ctx, repository.NoTX, userID)
}

func (u *uploadUC) Delete(ctx context.Context, userID string, id int64) error {
	defer logging.TraceDuration(u.log, "UploadUC.Delete")()

	up, err := u.uploads.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	if up.UserID != userID {
		return domain.ErrAccessDenied
	}
	return u.uploads.Delete(ctx, repository.NoTX, id)
}
