package repository

import (
	"context"

	"convertbox/internal/domain/model"
)

type UploadRepository interface {
	// Save inserts the upload and assigns its database ID.
	Save(ctx context.Context, tx Tx, u *model.Upload) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Upload, error)
	// ListByUser returns upload metadata (no blob data) in id order.
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Upload, error)
	Delete(ctx context.Context, tx Tx, id int64) error
	CountByUser(ctx context.Context, tx Tx, userID string) (int, error)
}
