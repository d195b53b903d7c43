package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/skillchain/issuer/src/utils/model"

	"github.com/google/uuid"
	"github.com/rs/xid"
)

var (
	ErrIncompleteBatch = errors.New("every entry needs a learner id and a certificate file")
	ErrLastEntry       = errors.New("the last entry can't be removed")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrEntryBusy       = errors.New("entry is queued or being processed")
	ErrNotFailed       = errors.New("only failed entries can be retried")
)

// Ordered list of entries issued together. Safe for concurrent use.
type Batch struct {
	Id string

	mtx     sync.RWMutex
	order   []string
	entries map[string]*model.BulkEntry

	// Entries waiting in the runner's queue or being processed
	busy map[string]struct{}

	// Closed and replaced whenever an entry finishes
	changed chan struct{}
}

func NewBatch() (self *Batch) {
	self = new(Batch)
	self.Id = uuid.New().String()
	self.entries = make(map[string]*model.BulkEntry)
	self.busy = make(map[string]struct{})
	self.changed = make(chan struct{})
	return
}

// Appends an entry and returns its id. Learner id and file may be filled in later with Edit.
func (self *Batch) Add(learnerId string, identifierType model.IdentifierType, file *model.CertificateFile, template *model.Template) string {
	entry := &model.BulkEntry{
		Id:              xid.New().String(),
		LearnerId:       strings.TrimSpace(learnerId),
		IdentifierType:  identifierType,
		CertificateFile: file,
		Template:        template,
		Status:          model.EntryStatusPending,
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.order = append(self.order, entry.Id)
	self.entries[entry.Id] = entry
	return entry.Id
}

func (self *Batch) Remove(id string) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if _, ok := self.entries[id]; !ok {
		return ErrEntryNotFound
	}
	if _, ok := self.busy[id]; ok {
		return ErrEntryBusy
	}
	if len(self.order) == 1 {
		return ErrLastEntry
	}

	delete(self.entries, id)
	for i, v := range self.order {
		if v == id {
			self.order = append(self.order[:i], self.order[i+1:]...)
			break
		}
	}
	return nil
}

// Marks the entry as being edited
func (self *Batch) StartEditing(id string) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	entry, ok := self.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	if _, ok := self.busy[id]; ok {
		return ErrEntryBusy
	}
	entry.IsEditing = true
	return nil
}

// Replaces the identifier and the file. A nil file keeps the current one.
func (self *Batch) Edit(id, learnerId string, identifierType model.IdentifierType, file *model.CertificateFile) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	entry, ok := self.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	if _, ok := self.busy[id]; ok {
		return ErrEntryBusy
	}

	entry.LearnerId = strings.TrimSpace(learnerId)
	entry.IdentifierType = identifierType
	if file != nil {
		entry.CertificateFile = file
	}
	entry.IsEditing = false
	return nil
}

// Fails with ErrIncompleteBatch when any entry misses the learner id or the file
func (self *Batch) Validate() error {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	if len(self.order) == 0 {
		return fmt.Errorf("%w: batch is empty", ErrIncompleteBatch)
	}

	var incomplete []string
	for i, id := range self.order {
		if !self.entries[id].IsComplete() {
			incomplete = append(incomplete, fmt.Sprintf("#%d", i+1))
		}
	}
	if len(incomplete) > 0 {
		return fmt.Errorf("%w: entries %s", ErrIncompleteBatch, strings.Join(incomplete, ", "))
	}
	return nil
}

func (self *Batch) Len() int {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	return len(self.order)
}

func (self *Batch) Get(id string) (out model.BulkEntry, ok bool) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	entry, ok := self.entries[id]
	if !ok {
		return
	}
	return *entry, true
}

// Copies of all entries, in order
func (self *Batch) Entries() []model.BulkEntry {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	out := make([]model.BulkEntry, 0, len(self.order))
	for _, id := range self.order {
		out = append(out, *self.entries[id])
	}
	return out
}

// Ids of the entries in the given status, in order
func (self *Batch) WithStatus(status model.EntryStatus) (out []string) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	for _, id := range self.order {
		if self.entries[id].Status == status {
			out = append(out, id)
		}
	}
	return
}

// Entries currently in flight
func (self *Batch) Processing() []string {
	return self.WithStatus(model.EntryStatusProcessing)
}

func (self *Batch) Failed() []string {
	return self.WithStatus(model.EntryStatusError)
}

// Marks the entry as queued. Fails if it already is queued or in flight.
func (self *Batch) enqueue(id string) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	entry, ok := self.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	if _, ok := self.busy[id]; ok {
		return ErrEntryBusy
	}

	self.busy[id] = struct{}{}
	entry.Status = model.EntryStatusPending
	entry.IsEditing = false
	entry.Progress = nil
	return nil
}

// Queued entries to be retried must have failed
func (self *Batch) enqueueFailed(id string) error {
	self.mtx.RLock()
	entry, ok := self.entries[id]
	failed := ok && entry.Status == model.EntryStatusError
	_, busy := self.busy[id]
	self.mtx.RUnlock()

	if !ok {
		return ErrEntryNotFound
	}
	if busy {
		return ErrEntryBusy
	}
	if !failed {
		return ErrNotFailed
	}
	return self.enqueue(id)
}

// Moves a queued entry to processing and returns its snapshot. Removed entries are reported as not found.
func (self *Batch) begin(id string) (out model.BulkEntry, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	entry, ok := self.entries[id]
	if !ok {
		err = ErrEntryNotFound
		return
	}

	entry.Status = model.EntryStatusProcessing
	entry.Attempts++
	entry.Error = ""
	entry.Result = nil
	return *entry, nil
}

func (self *Batch) progress(id string, progress model.Progress) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if entry, ok := self.entries[id]; ok {
		entry.Progress = &progress
	}
}

// Records the outcome and releases the entry
func (self *Batch) finish(id string, result *model.IssuanceResult, cause error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if entry, ok := self.entries[id]; ok {
		entry.Progress = nil
		if cause != nil {
			entry.Status = model.EntryStatusError
			entry.Error = cause.Error()
		} else {
			entry.Status = model.EntryStatusSuccess
			entry.Result = result
		}
	}

	delete(self.busy, id)
	close(self.changed)
	self.changed = make(chan struct{})
}

// Blocks until no entry is queued or in flight
func (self *Batch) Wait(ctx context.Context) error {
	for {
		self.mtx.RLock()
		idle := len(self.busy) == 0
		changed := self.changed
		self.mtx.RUnlock()

		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}
