//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
	"convertbox/internal/usecase"
)

// --- Mock use cases ---

type mockConvertUC struct {
	usecase.ConvertUseCase
	DispatchDocumentFunc    func(ctx context.Context, userID, kind, filename string, data []byte) (*model.ConversionJob, error)
	DispatchImageFunc       func(ctx context.Context, userID, filename, format string, data []byte) (*model.ConversionJob, error)
	DispatchVideoFunc       func(ctx context.Context, userID, filename, format string, data []byte) (*model.ConversionJob, error)
	DispatchCompressionFunc func(ctx context.Context, userID, filename, contentType, level string, data []byte) (*model.ConversionJob, error)
	StatusFunc              func(ctx context.Context, jobID string) (*model.ConversionJob, error)
}

func (m *mockConvertUC) DispatchDocument(ctx context.Context, userID, kind, filename string, data []byte) (*model.ConversionJob, error) {
	return m.DispatchDocumentFunc(ctx, userID, kind, filename, data)
}

func (m *mockConvertUC) DispatchImage(ctx context.Context, userID, filename, format string, data []byte) (*model.ConversionJob, error) {
	return m.DispatchImageFunc(ctx, userID, filename, format, data)
}

func (m *mockConvertUC) DispatchVideo(ctx context.Context, userID, filename, format string, data []byte) (*model.ConversionJob, error) {
	return m.DispatchVideoFunc(ctx, userID, filename, format, data)
}

func (m *mockConvertUC) DispatchCompression(ctx context.Context, userID, filename, contentType, level string, data []byte) (*model.ConversionJob, error) {
	return m.DispatchCompressionFunc(ctx, userID, filename, contentType, level, data)
}

func (m *mockConvertUC) Status(ctx context.Context, jobID string) (*model.ConversionJob, error) {
	return m.StatusFunc(ctx, jobID)
}

type mockUploadUC struct {
	usecase.UploadUseCase
	GetFunc    func(ctx context.Context, userID string, id int64) (*model.Upload, error)
	ListFunc   func(ctx context.Context, userID string) ([]*model.Upload, error)
	DeleteFunc func(ctx context.Context, userID string, id int64) error
}

func (m *mockUploadUC) Get(ctx context.Context, userID string, id int64) (*model.Upload, error) {
	return m.GetFunc(ctx, userID, id)
}

func (m *mockUploadUC) List(ctx context.Context, userID string) ([]*model.Upload, error) {
	return m.ListFunc(ctx, userID)
}

func (m *mockUploadUC) Delete(ctx context.Context, userID string, id int64) error {
	return m.DeleteFunc(ctx, userID, id)
}

type mockUserUC struct {
	usecase.UserUseCase
	GetOrCreateFunc func(ctx context.Context, id string) (*model.User, error)
	DeleteFunc      func(ctx context.Context, id string) error
	deleted         []string
}

func (m *mockUserUC) GetOrCreate(ctx context.Context, id string) (*model.User, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, id)
	}
	if id == "" {
		id = "session-user"
	}
	return &model.User{ID: id}, nil
}

func (m *mockUserUC) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// --- Fake redis for the rate limiter ---

type fakeRedisClient struct {
	mu     sync.Mutex
	counts map[string]int64
	Err    error
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{counts: map[string]int64{}}
}

func (f *fakeRedisClient) Ping(context.Context) error { return f.Err }

func (f *fakeRedisClient) Set(context.Context, string, interface{}, time.Duration) error {
	return f.Err
}

func (f *fakeRedisClient) Get(context.Context, string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return "", domain.ErrNotFound
}

func (f *fakeRedisClient) Incr(_ context.Context, key string) (int64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedisClient) Expire(context.Context, string, time.Duration) error { return f.Err }

func (f *fakeRedisClient) Del(context.Context, ...string) error { return f.Err }

func (f *fakeRedisClient) Close() error { return nil }
