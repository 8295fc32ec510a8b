package repository

import (
	"context"

	"convertbox/internal/domain/model"
)

type JobRepository interface {
	Save(ctx context.Context, tx Tx, job *model.ConversionJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ConversionJob, error)
	// FetchAndMarkRunning atomically claims the oldest pending job and moves it
	// to PROGRESS(10) so no other worker picks it up.
	FetchAndMarkRunning(ctx context.Context) (*model.ConversionJob, error)
}
