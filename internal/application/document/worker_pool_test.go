package document

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"obrasoft/ms_gestion_core/internal/core/document"
	"obrasoft/ms_gestion_core/internal/testutil"
)

type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (f *fakeStorage) Upload(_ context.Context, name, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, name)
	return "drive-" + name, nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[int64]document.StorageState
	fileIDs map[int64]string
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{
		results: make(map[int64]document.StorageState),
		fileIDs: make(map[int64]string),
	}
}

func (f *fakeResultRepo) Create(context.Context, document.Document) (*document.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeResultRepo) Delete(context.Context, int64, int64) error {
	return errors.New("not implemented")
}

func (f *fakeResultRepo) FindByID(context.Context, int64, int64) (*document.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeResultRepo) List(context.Context, int64, *int64, int, int) ([]document.Document, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeResultRepo) SetStorageResult(_ context.Context, documentID int64, state document.StorageState, driveFileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[documentID] = state
	f.fileIDs[documentID] = driveFileID
	return nil
}

func (f *fakeResultRepo) result(id int64) (document.StorageState, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[id], f.fileIDs[id]
}

func TestUploadWorkerPool_SuccessMarksSubido(t *testing.T) {
	storage := &fakeStorage{}
	repo := newFakeResultRepo()
	pool := NewUploadWorkerPool(context.Background(), 2, 10, time.Second, repo, storage, testutil.NewNullLogger())
	pool.Start()

	if err := pool.Submit(UploadJob{DocumentID: 1, Name: "plano.pdf", MimeType: "application/pdf", Content: []byte("pdf")}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	pool.Stop()

	state, fileID := repo.result(1)
	if state != document.StateSubido {
		t.Errorf("state = %s, want %s", state, document.StateSubido)
	}
	if fileID != "drive-plano.pdf" {
		t.Errorf("fileID = %s, want drive-plano.pdf", fileID)
	}
}

func TestUploadWorkerPool_FailureMarksError(t *testing.T) {
	storage := &fakeStorage{err: errors.New("quota exceeded")}
	repo := newFakeResultRepo()
	pool := NewUploadWorkerPool(context.Background(), 1, 10, time.Second, repo, storage, testutil.NewNullLogger())
	pool.Start()

	if err := pool.Submit(UploadJob{DocumentID: 7, Name: "acta.pdf"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	pool.Stop()

	state, fileID := repo.result(7)
	if state != document.StateError {
		t.Errorf("state = %s, want %s", state, document.StateError)
	}
	if fileID != "" {
		t.Errorf("fileID = %q, want empty on failure", fileID)
	}
}

func TestUploadWorkerPool_FullQueueRejects(t *testing.T) {
	storage := &fakeStorage{}
	repo := newFakeResultRepo()
	// No workers started, so the queue fills without draining.
	pool := NewUploadWorkerPool(context.Background(), 1, 1, time.Second, repo, storage, testutil.NewNullLogger())

	if err := pool.Submit(UploadJob{DocumentID: 1, Name: "a.pdf"}); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if err := pool.Submit(UploadJob{DocumentID: 2, Name: "b.pdf"}); err == nil {
		t.Error("second Submit() on a full queue should fail")
	}
}
