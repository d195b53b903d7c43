package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/logger"
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/utils/monitoring"
	monitor_issuer "github.com/skillchain/issuer/src/utils/monitoring/issuer"
	"github.com/skillchain/issuer/src/utils/namematch"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Runs the learner, API key and blockchain checks. Every check runs to completion, a failing check never
// stops the others.
type Verifier struct {
	backend    Backend
	config     *config.Workflow
	matcher    *namematch.Matcher
	digilocker *DigiLocker
	monitor    monitoring.Monitor
	log        *logrus.Entry
}

func NewVerifier(config *config.Workflow, client Backend) (self *Verifier, err error) {
	strictness, err := namematch.ParseStrictness(config.NameMatchStrictness)
	if err != nil {
		return
	}

	self = new(Verifier)
	self.backend = client
	self.config = config
	self.matcher = namematch.NewMatcher(strictness)
	self.digilocker = NewDigiLocker(client, config.DigiLockerCacheTTL)
	self.monitor = monitor_issuer.NewMonitor()
	self.log = logger.NewSublogger("verifier")
	return
}

func (self *Verifier) WithMonitor(monitor monitoring.Monitor) *Verifier {
	self.monitor = monitor
	return self
}

func (self *Verifier) WithDigiLocker(digilocker *DigiLocker) *Verifier {
	self.digilocker = digilocker
	return self
}

func (self *Verifier) DigiLocker() *DigiLocker {
	return self.digilocker
}

// Profile data resolved by the learner check
type LearnerProfile struct {
	Name      string
	Address   string
	NameMatch namematch.Outcome
}

// Runs all checks and returns the final result. onUpdate, if set, receives a snapshot with all checks pending
// before any request is made and then a snapshot after every change. Snapshots are delivered one at a time.
func (self *Verifier) Verify(ctx context.Context, credentials backend.Credentials, draft *model.CredentialDraft, onUpdate func(model.VerificationResult)) model.VerificationResult {
	var mtx sync.Mutex
	result := model.NewVerificationResult()

	notify := func() {
		if onUpdate != nil {
			onUpdate(*result)
		}
	}

	mtx.Lock()
	notify()
	mtx.Unlock()

	self.monitor.GetReport().Verifier.State.Verifications.Inc()

	var profile LearnerProfile
	checks := map[model.CheckName]func(ctx context.Context) error{
		model.CheckLearner: func(ctx context.Context) (err error) {
			profile, err = self.checkLearner(ctx, credentials, draft)
			mtx.Lock()
			result.NameMatch = profile.NameMatch
			result.LearnerName = profile.Name
			result.LearnerAddress = profile.Address
			mtx.Unlock()
			return
		},
		model.CheckApiKey: func(ctx context.Context) error {
			return self.backend.CheckApiKeys(ctx, credentials)
		},
		model.CheckBlockchain: func(ctx context.Context) error {
			_, err := self.backend.GetNetworkStatus(ctx, credentials)
			return err
		},
	}

	// Checks capture their own errors, the group only waits for them
	var g errgroup.Group
	for _, name := range model.Checks {
		name, check := name, checks[name]
		g.Go(func() error {
			outcome := self.run(ctx, name, check)

			mtx.Lock()
			defer mtx.Unlock()
			result.Set(name, outcome)
			notify()
			return nil
		})
	}
	_ = g.Wait()

	mtx.Lock()
	defer mtx.Unlock()

	if result.AllVerified() {
		self.monitor.GetReport().Verifier.State.AllVerified.Inc()
	}
	self.log.WithField("learner", result.Learner.Status).
		WithField("api_key", result.ApiKey.Status).
		WithField("blockchain", result.Blockchain.Status).
		WithField("name_match", result.NameMatch).
		Info("Verification finished")

	return *result
}

// Runs only the learner check, with the same deadline as in Verify
func (self *Verifier) VerifyLearner(ctx context.Context, credentials backend.Credentials, draft *model.CredentialDraft) (out LearnerProfile, err error) {
	check := self.run(ctx, model.CheckLearner, func(ctx context.Context) (err error) {
		out, err = self.checkLearner(ctx, credentials, draft)
		return
	})
	if !check.IsSuccess() {
		err = &CheckError{Check: model.CheckLearner, Result: check}
	}
	return
}

// Runs a single check with its own deadline
func (self *Verifier) run(ctx context.Context, name model.CheckName, check func(ctx context.Context) error) model.Check {
	timeout := self.config.VerificationTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := check(checkCtx)
	if err == nil {
		return model.Check{Status: model.CheckStatusSuccess}
	}

	timedOut := errors.Is(err, backend.ErrTimeout) || errors.Is(checkCtx.Err(), context.DeadlineExceeded)
	if timedOut {
		self.monitor.GetReport().Verifier.Errors.Timeouts.Inc()
		err = fmt.Errorf("no response within %s: %w", timeout, err)
	}

	switch name {
	case model.CheckLearner:
		self.monitor.GetReport().Verifier.Errors.LearnerCheck.Inc()
	case model.CheckApiKey:
		self.monitor.GetReport().Verifier.Errors.ApiKeyCheck.Inc()
	case model.CheckBlockchain:
		self.monitor.GetReport().Verifier.Errors.BlockchainCheck.Inc()
	}

	self.log.WithError(err).WithField("check", name).WithField("timeout", timedOut).Warn("Check failed")
	return model.Check{
		Status:   model.CheckStatusError,
		Error:    err.Error(),
		TimedOut: timedOut,
	}
}

func (self *Verifier) checkLearner(ctx context.Context, credentials backend.Credentials, draft *model.CredentialDraft) (out LearnerProfile, err error) {
	out.NameMatch = namematch.NotApplicable

	if draft.IdentifierType.IsGovernmentId() {
		return self.checkGovernmentId(ctx, credentials, draft)
	}

	isLearner, err := self.backend.IsLearner(ctx, credentials, draft.LearnerIdentifier)
	if err != nil {
		return
	}
	if !isLearner.IsLearner {
		err = &backend.Error{Kind: backend.KindApplication, Message: ErrNotLearner.Error(), Err: ErrNotLearner}
		return
	}

	profile, err := self.backend.LookupWallet(ctx, credentials, draft.LearnerIdentifier)
	if err != nil {
		return
	}

	out.Name = profile.FullName
	out.Address = profile.WalletAddress
	if out.Address == "" {
		out.Address = draft.LearnerIdentifier
	}

	certificateName := draft.ExtractedLearnerName()
	out.NameMatch = self.matcher.Match(certificateName, profile.FullName)
	if !out.NameMatch.Passes() {
		self.monitor.GetReport().Verifier.Errors.NameMismatches.Inc()
		err = backend.NewApplicationError(fmt.Sprintf("name on certificate %q doesn't match learner name %q", certificateName, profile.FullName))
		return
	}
	return
}

// Government ids are trusted once DigiLocker returned a record for them. Aadhaar numbers are looked up on demand.
func (self *Verifier) checkGovernmentId(ctx context.Context, credentials backend.Credentials, draft *model.CredentialDraft) (out LearnerProfile, err error) {
	out.NameMatch = namematch.NotApplicable

	record, ok := self.digilocker.Get(draft.LearnerIdentifier)
	if ok {
		self.monitor.GetReport().Verifier.State.DigiLockerCached.Inc()
	} else {
		if draft.IdentifierType != model.IdentifierTypeAadhaar {
			err = &backend.Error{Kind: backend.KindApplication, Message: ErrGovernmentId.Error(), Err: ErrGovernmentId}
			return
		}

		record, err = self.digilocker.Lookup(ctx, credentials, draft.LearnerIdentifier)
		if err != nil {
			return
		}
		self.monitor.GetReport().Verifier.State.DigiLockerFetched.Inc()
	}

	out.Name = record.Name
	out.Address = draft.LearnerIdentifier
	return
}
