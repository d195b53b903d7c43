package bulk

import (
	"context"
	"fmt"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/logger"
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/utils/monitoring"
	"github.com/skillchain/issuer/src/workflow"

	"github.com/sirupsen/logrus"
)

const (
	StepExtract = "extract"
	StepVerify  = "verify"
)

// Full single credential issuance for one bulk entry: OCR, learner validation, create, issue and overlay
type Pipeline struct {
	extractor *workflow.Extractor
	verifier  *workflow.Verifier
	issuer    *workflow.Issuer
	log       *logrus.Entry
}

func NewPipeline(config *config.Workflow, client workflow.Backend) (self *Pipeline, err error) {
	self = new(Pipeline)
	self.extractor = workflow.NewExtractor(client)
	self.verifier, err = workflow.NewVerifier(config, client)
	if err != nil {
		return
	}
	self.issuer = workflow.NewIssuer(config, client)
	self.log = logger.NewSublogger("bulk-pipeline")
	return
}

func (self *Pipeline) WithMonitor(monitor monitoring.Monitor) *Pipeline {
	self.extractor.WithMonitor(monitor)
	self.verifier.WithMonitor(monitor)
	self.issuer.WithMonitor(monitor)
	return self
}

func (self *Pipeline) WithJournal(journal workflow.Recorder) *Pipeline {
	self.issuer.WithJournal(journal)
	return self
}

func (self *Pipeline) WithDigiLocker(digilocker *workflow.DigiLocker) *Pipeline {
	self.verifier.WithDigiLocker(digilocker)
	return self
}

func (self *Pipeline) WithSeedKeeper(seeds *workflow.SeedKeeper) *Pipeline {
	self.issuer.WithSeedKeeper(seeds)
	return self
}

func (self *Pipeline) Run(ctx context.Context, credentials backend.Credentials, batchId string, entry model.BulkEntry, onProgress func(model.Progress)) (out *model.IssuanceResult, err error) {
	progress := func(step, description string) {
		if onProgress != nil {
			onProgress(model.Progress{Step: step, Description: description})
		}
	}

	progress(StepExtract, "Extracting certificate details")
	fields, err := self.extractor.Extract(ctx, credentials, entry.CertificateFile, model.Details{})
	if err != nil {
		err = fmt.Errorf("extraction failed: %w", err)
		return
	}

	draft := &model.CredentialDraft{
		LearnerIdentifier: entry.LearnerId,
		IdentifierType:    entry.IdentifierType,
		CertificateFile:   entry.CertificateFile,
		Template:          entry.Template,
		Details:           model.Details(*fields),
		ExtractedFields:   fields,
	}

	progress(StepVerify, "Validating learner")
	profile, err := self.verifier.VerifyLearner(ctx, credentials, draft)
	if err != nil {
		err = fmt.Errorf("learner validation failed: %w", err)
		return
	}

	return self.issuer.Issue(ctx, credentials, &workflow.IssueRequest{
		Draft:          draft,
		LearnerName:    profile.Name,
		LearnerAddress: profile.Address,
		BatchId:        batchId,
		OnProgress:     onProgress,
	})
}
