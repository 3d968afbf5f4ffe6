package document

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"obrasoft/ms_gestion_core/internal/core/document"
)

// UploadJob carries the bytes of one document to the background uploaders.
type UploadJob struct {
	DocumentID int64
	Name       string
	MimeType   string
	Content    []byte
}

// UploadWorkerPool pushes document bytes to cloud storage concurrently and
// records the outcome on each document row. Requests never wait on the
// upload; they enqueue and return.
type UploadWorkerPool struct {
	workerCount int
	timeout     time.Duration
	jobChan     chan UploadJob
	repo        document.Repository
	storage     document.Storage
	log         *slog.Logger
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewUploadWorkerPool creates a pool of workerCount uploaders with a bounded
// queue of queueSize jobs.
func NewUploadWorkerPool(ctx context.Context, workerCount, queueSize int, timeout time.Duration, repo document.Repository, storage document.Storage, log *slog.Logger) *UploadWorkerPool {
	poolCtx, cancel := context.WithCancel(ctx)
	return &UploadWorkerPool{
		workerCount: workerCount,
		timeout:     timeout,
		jobChan:     make(chan UploadJob, queueSize),
		repo:        repo,
		storage:     storage,
		log:         log,
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

// Start launches the workers.
func (p *UploadWorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop drains the queue and waits for in-flight uploads to finish.
func (p *UploadWorkerPool) Stop() {
	close(p.jobChan)
	p.wg.Wait()
	p.cancel()
}

// Submit enqueues an upload. Returns the pool context's error if the pool is
// shutting down, or a full-queue error so the caller can mark the document
// failed instead of blocking the request.
func (p *UploadWorkerPool) Submit(job UploadJob) error {
	select {
	case p.jobChan <- job:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	default:
		return context.DeadlineExceeded
	}
}

func (p *UploadWorkerPool) worker(int) {
	defer p.wg.Done()

	for job := range p.jobChan {
		p.process(job)
	}
}

func (p *UploadWorkerPool) process(job UploadJob) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	fileID, err := p.storage.Upload(ctx, job.Name, job.MimeType, job.Content)
	state := document.StateSubido
	if err != nil {
		state = document.StateError
		fileID = ""
		p.log.Error("falló la subida del documento",
			slog.Int64("document_id", job.DocumentID),
			slog.String("name", job.Name),
			slog.Any("error", err),
		)
	}

	// The result write uses a fresh timeout so a slow upload cannot starve
	// the state update.
	resultCtx, resultCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer resultCancel()
	if err := p.repo.SetStorageResult(resultCtx, job.DocumentID, state, fileID); err != nil {
		p.log.Error("no se pudo registrar el resultado de la subida",
			slog.Int64("document_id", job.DocumentID),
			slog.Any("error", err),
		)
	}
}
