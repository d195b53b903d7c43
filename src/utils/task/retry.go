package task

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Implement operation retrying
type Retry struct {
	ctx            context.Context
	maxElapsedTime time.Duration
	maxInterval    time.Duration
	onError        func(error, time.Duration)
	isPermanent    func(error) bool
}

func NewRetry() *Retry {
	return &Retry{ctx: context.Background()}
}

func (self *Retry) WithMaxElapsedTime(maxElapsedTime time.Duration) *Retry {
	self.maxElapsedTime = maxElapsedTime
	return self
}

func (self *Retry) WithMaxInterval(maxInterval time.Duration) *Retry {
	self.maxInterval = maxInterval
	return self
}

func (self *Retry) WithContext(ctx context.Context) *Retry {
	self.ctx = ctx
	return self
}

func (self *Retry) WithOnError(v func(err error, next time.Duration)) *Retry {
	self.onError = v
	return self
}

// Errors for which isPermanent returns true stop retrying
func (self *Retry) WithPermanent(v func(error) bool) *Retry {
	self.isPermanent = v
	return self
}

func (self *Retry) onNotify(err error, duration time.Duration) {
	if self.onError != nil {
		self.onError(err, duration)
	}
}

func (self *Retry) Run(f func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = self.maxElapsedTime
	if self.maxInterval > 0 {
		b.MaxInterval = self.maxInterval
	}

	op := func() error {
		err := f()
		if err != nil && self.isPermanent != nil && self.isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.RetryNotify(op, backoff.WithContext(b, self.ctx), self.onNotify)
}
