package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"convertbox/internal/domain/model"
	"convertbox/internal/domain/ports/repository"
	"convertbox/internal/infra/metrics"
	red "convertbox/internal/infra/redis"
)

var _ repository.JobRepository = (*jobRepoCacheDecorator)(nil)

// jobRepoCacheDecorator serves status polls for finished jobs out of Redis.
// Only terminal states are cached: they can never change, so no invalidation
// is needed, while PENDING/PROGRESS reads always hit the database to keep
// progress fresh.
type jobRepoCacheDecorator struct {
	inner repository.JobRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewJobRepoCacheDecorator(inner repository.JobRepository, cache red.RedisClient, ttl time.Duration) repository.JobRepository {
	return &jobRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func jobKey(id string) string { return fmt.Sprintf("job_status:%s", id) }

func (d *jobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ConversionJob, error) {
	val, err := d.cache.Get(ctx, jobKey(id))
	if err == nil {
		var job model.ConversionJob
		if json.Unmarshal([]byte(val), &job) == nil {
			metrics.IncCacheRequest("job_status", "hit")
			return &job, nil
		}
	}

	// Cache misses and Redis outages both degrade to a database read.
	metrics.IncCacheRequest("job_status", "miss")
	job, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if job.Terminal() {
		if bytes, err := json.Marshal(job); err == nil {
			_ = d.cache.Set(ctx, jobKey(id), bytes, d.ttl)
		}
	}
	return job, nil
}

func (d *jobRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, job *model.ConversionJob) error {
	return d.inner.Save(ctx, tx, job)
}

func (d *jobRepoCacheDecorator) FetchAndMarkRunning(ctx context.Context) (*model.ConversionJob, error) {
	return d.inner.FetchAndMarkRunning(ctx)
}
