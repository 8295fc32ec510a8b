package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
	"convertbox/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *jobRepo {
	return &jobRepo{pool: pool, tm: tm}
}

const jobColumns = `
id, kind, state, progress, message, user_id, source_upload_id, source_name,
target_format, tier, result_upload_id, failure_kind, last_error, created_at, updated_at`

func (r *jobRepo) Save(ctx context.Context, tx repository.Tx, job *model.ConversionJob) error {
	job.UpdatedAt = time.Now()

	const q = `
INSERT INTO conversion_jobs (id, kind, state, progress, message, user_id, source_upload_id,
  source_name, target_format, tier, result_upload_id, failure_kind, last_error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (id) DO UPDATE SET
  state = EXCLUDED.state,
  progress = EXCLUDED.progress,
  message = EXCLUDED.message,
  result_upload_id = EXCLUDED.result_upload_id,
  failure_kind = EXCLUDED.failure_kind,
  last_error = EXCLUDED.last_error,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.Kind, job.State, job.Progress, job.Message, job.UserID,
		job.SourceUploadID, job.SourceName, job.TargetFormat, job.Tier,
		job.ResultUploadID, job.FailureKind, job.LastError, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ConversionJob, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+jobColumns+` FROM conversion_jobs WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

// FetchAndMarkRunning atomically claims the oldest pending job: the fetched
// row moves to PROGRESS(10) inside the same transaction, so concurrent
// workers skip it.
func (r *jobRepo) FetchAndMarkRunning(ctx context.Context) (*model.ConversionJob, error) {
	var job *model.ConversionJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const fetchQuery = `
SELECT ` + jobColumns + `
FROM conversion_jobs
WHERE state = 'PENDING'
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, r.pool, tx, fetchQuery)
		if err != nil {
			return err
		}
		fetched, err := scanJob(row)
		if err != nil {
			return err
		}

		fetched.Advance(10, "conversion started")
		if err := r.Save(ctx, tx, fetched); err != nil {
			return err
		}
		job = fetched
		return nil
	})

	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

func scanJob(row pgx.Row) (*model.ConversionJob, error) {
	var j model.ConversionJob
	var kind, state, tier, failureKind string
	err := row.Scan(
		&j.ID, &kind, &state, &j.Progress, &j.Message, &j.UserID,
		&j.SourceUploadID, &j.SourceName, &j.TargetFormat, &tier,
		&j.ResultUploadID, &failureKind, &j.LastError, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	j.Kind = model.JobKind(kind)
	j.State = model.JobState(state)
	j.Tier = model.Tier(tier)
	j.FailureKind = domain.FailureKind(failureKind)
	return &j, nil
}
