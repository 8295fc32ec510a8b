package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
)

func newTestProcessor(t *testing.T, jobs *mockJobRepo, uploads *mockUploadRepo, adapters Adapters) *JobProcessor {
	t.Helper()
	log := zerolog.Nop()
	return NewJobProcessor(jobs, uploads, adapters, Options{
		ScratchRoot:       t.TempDir(),
		OutputWaitTimeout: 2 * time.Second,
	}, &log)
}

func seedJob(t *testing.T, uploads *mockUploadRepo, kind model.JobKind, name string) *model.ConversionJob {
	t.Helper()
	src, err := model.NewUpload(name, []byte("source bytes"), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if err := uploads.Save(context.Background(), nil, src); err != nil {
		t.Fatal(err)
	}
	job, err := model.NewConversionJob(kind, "u1", src.ID, src.Name)
	if err != nil {
		t.Fatal(err)
	}
	return job
}

func TestProcessOneSuccess(t *testing.T) {
	uploads := newMockUploadRepo()
	job := seedJob(t, uploads, model.JobOfficeToPDF, "report.docx")
	jobs := newMockJobRepo(job)

	p := newTestProcessor(t, jobs, uploads, Adapters{Documents: &fakeDocuments{}})
	p.processOne(context.Background())

	final, err := jobs.FindByID(context.Background(), nil, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final.State != model.StateSuccess || final.Progress != 100 {
		t.Fatalf("final state = %s/%d, want SUCCESS/100", final.State, final.Progress)
	}
	if final.ResultUploadID == 0 {
		t.Fatal("no result upload recorded")
	}

	result, err := uploads.FindByID(context.Background(), nil, final.ResultUploadID)
	if err != nil {
		t.Fatalf("result upload missing: %v", err)
	}
	if result.Name != "report.pdf" {
		t.Errorf("result name = %q, want report.pdf", result.Name)
	}
	if result.UserID != "u1" {
		t.Errorf("result owner = %q", result.UserID)
	}

	// progress checkpoint 80 must be persisted before the terminal save
	states := jobs.savedStates()
	if len(states) < 2 || states[len(states)-2] != 80 || states[len(states)-1] != 100 {
		t.Errorf("saved progress sequence = %v", states)
	}
}

func TestProcessOneScratchCleanup(t *testing.T) {
	uploads := newMockUploadRepo()
	okJob := seedJob(t, uploads, model.JobPDFToText, "doc.pdf")
	badJob := seedJob(t, uploads, model.JobOfficeToPDF, "broken.docx")

	scratch := t.TempDir()
	log := zerolog.Nop()

	run := func(job *model.ConversionJob, docs *fakeDocuments) {
		jobs := newMockJobRepo(job)
		p := NewJobProcessor(jobs, uploads, Adapters{Documents: docs}, Options{
			ScratchRoot:       scratch,
			OutputWaitTimeout: 2 * time.Second,
		}, &log)
		p.processOne(context.Background())
	}

	run(okJob, &fakeDocuments{})
	run(badJob, &fakeDocuments{Err: errors.New("soffice crashed")})

	for _, id := range []string{okJob.ID, badJob.ID} {
		if _, err := os.Stat(filepath.Join(scratch, id)); !os.IsNotExist(err) {
			t.Errorf("scratch dir for %s survived", id)
		}
	}
}

func TestProcessOneConverterFailure(t *testing.T) {
	uploads := newMockUploadRepo()
	job := seedJob(t, uploads, model.JobPDFToOffice, "doc.pdf")
	jobs := newMockJobRepo(job)

	p := newTestProcessor(t, jobs, uploads, Adapters{Documents: &fakeDocuments{Err: errors.New("pdf2docx crashed")}})
	p.processOne(context.Background())

	final, _ := jobs.FindByID(context.Background(), nil, job.ID)
	if final.State != model.StateFailure {
		t.Fatalf("state = %s, want FAILURE", final.State)
	}
	if final.FailureKind != domain.FailureConverter {
		t.Errorf("failure kind = %s, want converter", final.FailureKind)
	}
	if final.LastError == "" {
		t.Error("failure message missing")
	}
}

func TestProcessOneOutputTimeout(t *testing.T) {
	uploads := newMockUploadRepo()
	job := seedJob(t, uploads, model.JobImageConvert, "pic.png")
	job.TargetFormat = "jpg"
	jobs := newMockJobRepo(job)

	log := zerolog.Nop()
	p := NewJobProcessor(jobs, uploads, Adapters{Images: &fakeImages{Silent: true}}, Options{
		ScratchRoot:       t.TempDir(),
		OutputWaitTimeout: 100 * time.Millisecond,
	}, &log)
	p.processOne(context.Background())

	final, _ := jobs.FindByID(context.Background(), nil, job.ID)
	if final.State != model.StateFailure || final.FailureKind != domain.FailureTimeout {
		t.Fatalf("got %s/%s, want FAILURE/timeout", final.State, final.FailureKind)
	}
}

func TestProcessOneCompressUsesTierMaps(t *testing.T) {
	uploads := newMockUploadRepo()

	imgJob := seedJob(t, uploads, model.JobImageCompress, "pic.png")
	imgJob.Tier = model.TierHigh
	images := &fakeImages{}
	p := newTestProcessor(t, newMockJobRepo(imgJob), uploads, Adapters{Images: images})
	p.processOne(context.Background())
	if images.LastQuality != 30 {
		t.Errorf("high tier image quality = %d, want 30", images.LastQuality)
	}

	vidJob := seedJob(t, uploads, model.JobVideoCompress, "clip.mp4")
	vidJob.Tier = model.TierLow
	videos := &fakeVideos{}
	p = newTestProcessor(t, newMockJobRepo(vidJob), uploads, Adapters{Videos: videos})
	p.processOne(context.Background())
	if videos.LastBitrate != "2000k" {
		t.Errorf("low tier bitrate = %q, want 2000k", videos.LastBitrate)
	}
}

func TestProcessOneUnknownTierFailsAsInput(t *testing.T) {
	uploads := newMockUploadRepo()
	job := seedJob(t, uploads, model.JobImageCompress, "pic.png")
	job.Tier = model.Tier("ultra")
	jobs := newMockJobRepo(job)

	p := newTestProcessor(t, jobs, uploads, Adapters{Images: &fakeImages{}})
	p.processOne(context.Background())

	final, _ := jobs.FindByID(context.Background(), nil, job.ID)
	if final.State != model.StateFailure || final.FailureKind != domain.FailureInput {
		t.Fatalf("got %s/%s, want FAILURE/input", final.State, final.FailureKind)
	}
}

func TestProcessOneNoPendingJobs(t *testing.T) {
	p := newTestProcessor(t, newMockJobRepo(), newMockUploadRepo(), Adapters{})
	// must be a quiet no-op
	p.processOne(context.Background())
}

func TestPoolRunsSubmittedTasks(t *testing.T) {
	log := zerolog.Nop()
	pool := NewPool(2, &log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	done := make(chan struct{})
	if err := pool.Submit(func(context.Context) error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}
