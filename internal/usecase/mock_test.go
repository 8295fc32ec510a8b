//go:build !integration

package usecase

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v4"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
	"convertbox/internal/domain/ports/repository"
)

// mockTxManager runs the function inline with a nil handle; repositories in
// these tests are in-memory and ignore it.
type mockTxManager struct {
	Err error
}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

func (m *mockUserRepo) Save(_ context.Context, _ repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type mockUploadRepo struct {
	mu      sync.Mutex
	nextID  int64
	uploads map[int64]*model.Upload
	SaveErr error
}

func newMockUploadRepo() *mockUploadRepo {
	return &mockUploadRepo{uploads: map[int64]*model.Upload{}}
}

func (m *mockUploadRepo) Save(_ context.Context, _ repository.Tx, u *model.Upload) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	}
	m.uploads[u.ID] = u
	return nil
}

func (m *mockUploadRepo) FindByID(_ context.Context, _ repository.Tx, id int64) (*model.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.uploads[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockUploadRepo) ListByUser(_ context.Context, _ repository.Tx, userID string) ([]*model.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Upload
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.uploads[id]; ok && u.UserID == userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUploadRepo) Delete(_ context.Context, _ repository.Tx, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.uploads[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.uploads, id)
	return nil
}

func (m *mockUploadRepo) CountByUser(_ context.Context, _ repository.Tx, userID string) (int, error) {
	ups, _ := m.ListByUser(nil, nil, userID)
	return len(ups), nil
}

func (m *mockUploadRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

type mockJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.ConversionJob
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: map[string]*model.ConversionJob{}}
}

func (m *mockJobRepo) Save(_ context.Context, _ repository.Tx, job *model.ConversionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *mockJobRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ConversionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockJobRepo) FetchAndMarkRunning(context.Context) (*model.ConversionJob, error) {
	return nil, domain.ErrNotFound
}

func (m *mockJobRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
