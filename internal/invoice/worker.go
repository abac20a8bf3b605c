package invoice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
)

type RenderJob struct {
	Invoice *invoice.Invoice
}

type Worker struct {
	ID         int
	WorkerPool chan chan RenderJob
	JobChannel chan RenderJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan RenderJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan RenderJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(RenderJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker rendering invoice", "worker_id", w.ID, "invoice_number", job.Invoice.InvoiceNumber)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// RetryPool sweeps pending invoices on an interval and fans the re-render
// work out to a small worker pool.
type RetryPool struct {
	service    *InvoiceService
	logger     *slog.Logger
	interval   time.Duration
	batchSize  int
	maxWorkers int

	jobQueue   chan RenderJob
	workerPool chan chan RenderJob
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type RetryPoolConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxWorkers int
}

func NewRetryPool(service *InvoiceService, config RetryPoolConfig, logger *slog.Logger) *RetryPool {
	ctx, cancel := context.WithCancel(context.Background())

	interval := config.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}
	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	pool := &RetryPool{
		service:    service,
		logger:     logger,
		interval:   interval,
		batchSize:  batchSize,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan RenderJob, batchSize),
		workerPool: make(chan chan RenderJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	pool.start()
	return pool
}

func (p *RetryPool) start() {
	for i := 0; i < p.maxWorkers; i++ {
		worker := NewWorker(i+1, p.workerPool, p.logger)
		worker.Start(p.ctx, &p.wg, p.process)
	}

	p.wg.Add(2)
	go p.dispatch()
	go p.sweep()
}

func (p *RetryPool) dispatch() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			select {
			case jobChannel := <-p.workerPool:
				jobChannel <- job
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *RetryPool) sweep() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pending, err := p.service.repository.ListPending(p.batchSize)
			if err != nil {
				p.logger.Error("pending invoice sweep failed", "error", err)
				continue
			}
			for _, inv := range pending {
				select {
				case p.jobQueue <- RenderJob{Invoice: inv}:
				case <-p.ctx.Done():
					return
				}
			}
			if len(pending) > 0 {
				p.logger.Info("queued pending invoices for re-render", "count", len(pending))
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *RetryPool) process(job RenderJob) {
	if err := p.service.RenderPDF(job.Invoice); err != nil {
		p.logger.Error("invoice re-render failed",
			"invoice_number", job.Invoice.InvoiceNumber,
			"error", err)
	}
}

func (p *RetryPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.logger.Info("invoice retry pool stopped")
	})
}
