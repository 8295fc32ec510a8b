package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
	"convertbox/internal/domain/ports/repository"
)

var _ repository.UploadRepository = (*PostgresUploadRepo)(nil)

type PostgresUploadRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUploadRepo(pool *pgxpool.Pool) *PostgresUploadRepo {
	return &PostgresUploadRepo{pool: pool}
}

func (r *PostgresUploadRepo) Save(ctx context.Context, tx repository.Tx, u *model.Upload) error {
	const q = `
INSERT INTO uploads (name, data, created_at, user_id)
VALUES ($1, $2, $3, $4)
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, u.Name, u.Data, u.CreatedAt, u.UserID)
	if err != nil {
		return err
	}
	return row.Scan(&u.ID)
}

func (r *PostgresUploadRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Upload, error) {
	const q = `SELECT id, name, data, created_at, user_id FROM uploads WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var u model.Upload
	if err := row.Scan(&u.ID, &u.Name, &u.Data, &u.CreatedAt, &u.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListByUser returns upload metadata in id order. The blob column is left out
// so listing stays cheap.
func (r *PostgresUploadRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Upload, error) {
	const q = `
SELECT id, name, octet_length(data), created_at, user_id
  FROM uploads WHERE user_id=$1 ORDER BY id;`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Upload
	for rows.Next() {
		var u model.Upload
		if err := rows.Scan(&u.ID, &u.Name, &u.ByteSize, &u.CreatedAt, &u.UserID); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *PostgresUploadRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM uploads WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUploadRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM uploads WHERE user_id=$1;`, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
