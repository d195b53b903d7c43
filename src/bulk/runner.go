package bulk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/utils/monitoring"
	monitor_issuer "github.com/skillchain/issuer/src/utils/monitoring/issuer"
	"github.com/skillchain/issuer/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/teivah/onecontext"
)

type job struct {
	ctx   context.Context
	batch *Batch
	id    string
}

// Processes bulk entries through the pipeline. Entries are taken from the queue in order and handed to a
// bounded worker pool, one worker by default. A worker pauses after each entry before taking the next one.
type Runner struct {
	*task.Task

	pipeline    *Pipeline
	monitor     monitoring.Monitor
	credentials backend.Credentials

	// Entries waiting for a worker
	mtx   sync.Mutex
	queue deque.Deque[*job]
	wake  chan struct{}

	// Free workers
	slots chan struct{}
}

func NewRunner(config *config.Config) (self *Runner) {
	self = new(Runner)
	self.monitor = monitor_issuer.NewMonitor()
	self.wake = make(chan struct{}, 1)

	workers := config.Bulk.WorkerPoolSize
	if workers < 1 {
		workers = 1
	}
	self.slots = make(chan struct{}, workers)

	self.Task = task.NewTask(config, "bulk-runner").
		WithSubtaskFunc(self.dispatch).
		WithWorkerPool(workers, config.Bulk.WorkerQueueSize)
	return
}

func (self *Runner) WithPipeline(pipeline *Pipeline) *Runner {
	self.pipeline = pipeline
	return self
}

func (self *Runner) WithMonitor(monitor monitoring.Monitor) *Runner {
	self.monitor = monitor
	return self
}

func (self *Runner) WithCredentials(credentials backend.Credentials) *Runner {
	self.credentials = credentials
	return self
}

// Queues every entry that hasn't succeeded yet. Incomplete batches are rejected before anything is queued.
func (self *Runner) Submit(ctx context.Context, batch *Batch) (err error) {
	err = batch.Validate()
	if err != nil {
		self.monitor.GetReport().Bulk.State.RejectedBatches.Inc()
		self.Log.WithError(err).WithField("batch", batch.Id).Warn("Batch rejected")
		return
	}

	self.monitor.GetReport().Bulk.State.Batches.Inc()
	self.Log.WithField("batch", batch.Id).WithField("entries", batch.Len()).Info("Batch submitted")

	for _, entry := range batch.Entries() {
		if entry.Status == model.EntryStatusSuccess {
			continue
		}

		err = batch.enqueue(entry.Id)
		if err != nil {
			// Already queued by an earlier call
			continue
		}
		self.push(ctx, batch, entry.Id)
	}
	return nil
}

// Submits the batch and waits for all its entries to finish
func (self *Runner) Run(ctx context.Context, batch *Batch) (err error) {
	err = self.Submit(ctx, batch)
	if err != nil {
		return
	}
	return self.Wait(ctx, batch)
}

// Queues a failed entry again. Other entries are not affected.
func (self *Runner) Retry(ctx context.Context, batch *Batch, id string) (err error) {
	err = batch.enqueueFailed(id)
	if err != nil {
		return
	}

	self.monitor.GetReport().Bulk.State.EntriesRetried.Inc()
	self.Log.WithField("batch", batch.Id).WithField("entry", id).Info("Entry retried")
	self.push(ctx, batch, id)
	return nil
}

// Blocks until the batch has no queued or processing entries, the context is done or the runner stops
func (self *Runner) Wait(ctx context.Context, batch *Batch) error {
	ctx, cancel := onecontext.Merge(ctx, self.Ctx)
	defer cancel()
	return batch.Wait(ctx)
}

func (self *Runner) push(ctx context.Context, batch *Batch, id string) {
	self.mtx.Lock()
	self.queue.PushBack(&job{ctx: ctx, batch: batch, id: id})
	self.mtx.Unlock()

	self.monitor.GetReport().Bulk.State.EntriesQueued.Inc()

	select {
	case self.wake <- struct{}{}:
	default:
	}
}

// Takes the next job, blocks while the queue is empty
func (self *Runner) next() (*job, bool) {
	for {
		self.mtx.Lock()
		if self.queue.Len() > 0 {
			j := self.queue.PopFront()
			self.mtx.Unlock()
			return j, true
		}
		self.mtx.Unlock()

		select {
		case <-self.StopChannel:
			return nil, false
		case <-self.wake:
		}
	}
}

func (self *Runner) dispatch() error {
	for {
		// Wait for a free worker
		select {
		case <-self.StopChannel:
			return nil
		case self.slots <- struct{}{}:
		}

		j, ok := self.next()
		if !ok {
			return nil
		}

		self.SubmitToWorker(func() {
			defer func() { <-self.slots }()
			self.process(j)
			self.pause()
		})
	}
}

func (self *Runner) process(j *job) {
	state := &self.monitor.GetReport().Bulk.State
	state.EntriesQueued.Dec()

	log := self.Log.WithField("batch", j.batch.Id).WithField("entry", j.id)

	entry, err := j.batch.begin(j.id)
	if err != nil {
		log.WithError(err).Warn("Entry dropped")
		j.batch.finish(j.id, nil, err)
		return
	}

	state.EntriesProcessing.Inc()
	log.WithField("learner", entry.LearnerId).WithField("attempt", entry.Attempts).Info("Processing entry")

	result, err := self.run(j, entry)

	// Counters are final before waiters see the entry finished
	state.EntriesProcessing.Dec()
	state.EntriesProcessed.Inc()
	if err != nil {
		state.EntriesFailed.Inc()
		state.ConsecutiveFailures.Inc()
		log.WithError(err).Error("Entry failed")
	} else {
		state.EntriesSucceeded.Inc()
		state.ConsecutiveFailures.Store(0)
		log.WithField("credential_id", result.CredentialId).Info("Entry issued")
	}

	j.batch.finish(j.id, result, err)
}

// Any failure, panics included, ends up on the entry
func (self *Runner) run(j *job, entry model.BulkEntry) (result *model.IssuanceResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected failure: %v", p)
		}
	}()

	// Cancelled by the caller or by stopping the runner
	ctx, cancel := onecontext.Merge(j.ctx, self.Ctx)
	defer cancel()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return self.pipeline.Run(ctx, self.credentials, j.batch.Id, entry, func(p model.Progress) {
		j.batch.progress(j.id, p)
	})
}

func (self *Runner) pause() {
	if self.Config.Bulk.PauseBetweenEntries <= 0 {
		return
	}

	timer := time.NewTimer(self.Config.Bulk.PauseBetweenEntries)
	defer timer.Stop()

	select {
	case <-self.Ctx.Done():
	case <-timer.C:
	}
}
