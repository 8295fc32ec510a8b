package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
	"convertbox/internal/domain/ports/repository"
)

type mockJobRepo struct {
	mu      sync.Mutex
	pending []*model.ConversionJob
	saved   []*model.ConversionJob
	byID    map[string]*model.ConversionJob
}

func newMockJobRepo(jobs ...*model.ConversionJob) *mockJobRepo {
	m := &mockJobRepo{byID: map[string]*model.ConversionJob{}}
	for _, j := range jobs {
		m.pending = append(m.pending, j)
		m.byID[j.ID] = j
	}
	return m
}

func (m *mockJobRepo) Save(_ context.Context, _ repository.Tx, job *model.ConversionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := *job
	m.saved = append(m.saved, &snapshot)
	m.byID[job.ID] = job
	return nil
}

func (m *mockJobRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ConversionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.byID[id]; ok {
		return j, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockJobRepo) FetchAndMarkRunning(_ context.Context) (*model.ConversionJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil, domain.ErrNotFound
	}
	job := m.pending[0]
	m.pending = m.pending[1:]
	job.Advance(10, "conversion started")
	return job, nil
}

// savedStates returns the (state, progress) sequence observed across saves.
func (m *mockJobRepo) savedStates() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.saved))
	for _, j := range m.saved {
		out = append(out, j.Progress)
	}
	return out
}

type mockUploadRepo struct {
	mu      sync.Mutex
	nextID  int64
	uploads map[int64]*model.Upload
}

func newMockUploadRepo(seed ...*model.Upload) *mockUploadRepo {
	m := &mockUploadRepo{uploads: map[int64]*model.Upload{}}
	for _, u := range seed {
		m.nextID++
		u.ID = m.nextID
		m.uploads[u.ID] = u
	}
	return m
}

func (m *mockUploadRepo) Save(_ context.Context, _ repository.Tx, u *model.Upload) error {
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
	for _, u := range m.uploads {
		if u.UserID == userID {
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

// --- Fake adapters ---

type fakeDocuments struct {
	Err error
}

func (f *fakeDocuments) OfficeToPDF(_ context.Context, inputPath, outDir string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	base := filepath.Base(inputPath)
	out := filepath.Join(outDir, base[:len(base)-len(filepath.Ext(base))]+".pdf")
	return out, os.WriteFile(out, []byte("%PDF-fake"), 0o644)
}

func (f *fakeDocuments) PDFToOffice(_ context.Context, _, outputPath string) error {
	if f.Err != nil {
		return f.Err
	}
	return os.WriteFile(outputPath, []byte("fake docx"), 0o644)
}

func (f *fakeDocuments) PDFToText(_ context.Context, _, outputPath string) error {
	if f.Err != nil {
		return f.Err
	}
	return os.WriteFile(outputPath, []byte("extracted"), 0o644)
}

func (f *fakeDocuments) TextToOffice(_ context.Context, inputPath, outDir string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	base := filepath.Base(inputPath)
	out := filepath.Join(outDir, base[:len(base)-len(filepath.Ext(base))]+".docx")
	return out, os.WriteFile(out, []byte("fake docx"), 0o644)
}

type fakeOCR struct{}

func (fakeOCR) MakeSearchable(_ context.Context, _, outputPath, _ string) error {
	return os.WriteFile(outputPath, []byte("%PDF-searchable"), 0o644)
}

type fakeImages struct {
	LastQuality int
	Silent      bool // report a path but never write it
}

func (f *fakeImages) Convert(_ context.Context, inputPath, format string) (string, error) {
	out := inputPath[:len(inputPath)-len(filepath.Ext(inputPath))] + "." + format
	if f.Silent {
		return out, nil
	}
	return out, os.WriteFile(out, []byte("fake image"), 0o644)
}

func (f *fakeImages) Compress(_ context.Context, _, outputPath string, quality int) error {
	f.LastQuality = quality
	if f.Silent {
		return nil
	}
	return os.WriteFile(outputPath, []byte("fake image"), 0o644)
}

type fakeVideos struct {
	LastBitrate string
}

func (f *fakeVideos) Convert(_ context.Context, inputPath, format string) (string, error) {
	out := inputPath[:len(inputPath)-len(filepath.Ext(inputPath))] + "." + format
	return out, os.WriteFile(out, []byte("fake video"), 0o644)
}

func (f *fakeVideos) Compress(_ context.Context, _, outputPath, bitrate string) error {
	f.LastBitrate = bitrate
	return os.WriteFile(outputPath, []byte("fake video"), 0o644)
}
