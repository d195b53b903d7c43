package workflow

import (
	"context"
	"strings"
	"sync"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/logger"
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/utils/monitoring"

	"github.com/sirupsen/logrus"
)

// Single credential issuance. Holds the stage, the draft, the verification result and the issuance result, and
// only allows the operations enabled at the current stage.
type Workflow struct {
	config      *config.Config
	log         *logrus.Entry
	credentials backend.Credentials

	extractor *Extractor
	verifier  *Verifier
	issuer    *Issuer

	// One operation at a time
	opMtx sync.Mutex

	// State
	mtx          sync.RWMutex
	stage        Stage
	draft        *model.CredentialDraft
	verification *model.VerificationResult
	result       *model.IssuanceResult
}

func NewWorkflow(config *config.Config, client Backend) (self *Workflow, err error) {
	self = new(Workflow)
	self.config = config
	self.log = logger.NewSublogger("workflow")
	self.credentials = backend.CredentialsFromConfig(&config.Credentials)

	self.extractor = NewExtractor(client)
	self.verifier, err = NewVerifier(&config.Workflow, client)
	if err != nil {
		return
	}
	self.issuer = NewIssuer(&config.Workflow, client)

	self.reset()
	return
}

func (self *Workflow) WithCredentials(credentials backend.Credentials) *Workflow {
	self.credentials = credentials
	return self
}

func (self *Workflow) WithMonitor(monitor monitoring.Monitor) *Workflow {
	self.extractor.WithMonitor(monitor)
	self.verifier.WithMonitor(monitor)
	self.issuer.WithMonitor(monitor)
	return self
}

func (self *Workflow) WithJournal(journal Recorder) *Workflow {
	self.issuer.WithJournal(journal)
	return self
}

func (self *Workflow) WithDigiLocker(digilocker *DigiLocker) *Workflow {
	self.verifier.WithDigiLocker(digilocker)
	return self
}

// Government ids trusted by the learner check
func (self *Workflow) DigiLocker() *DigiLocker {
	return self.verifier.DigiLocker()
}

func (self *Workflow) WithSeedKeeper(seeds *SeedKeeper) *Workflow {
	self.issuer.WithSeedKeeper(seeds)
	return self
}

func (self *Workflow) reset() {
	self.stage = StageTemplateSelection
	self.draft = model.NewCredentialDraft()
	self.verification = nil
	self.result = nil
}

func (self *Workflow) Stage() Stage {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	return self.stage
}

// Operations enabled at the current stage
func (self *Workflow) Operations() []Operation {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	out := make([]Operation, 0, len(operations[self.stage]))
	for _, op := range operations[self.stage] {
		// Continue stays hidden until extraction succeeds
		if op == OpContinue && self.stage == StageDetailsEntry && self.draft.ExtractedFields == nil {
			continue
		}
		out = append(out, op)
	}
	return out
}

// Copy of the draft
func (self *Workflow) Draft() model.CredentialDraft {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	return *self.draft
}

// Copy of the latest verification result, nil before verification starts
func (self *Workflow) Verification() *model.VerificationResult {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	if self.verification == nil {
		return nil
	}
	v := *self.verification
	return &v
}

func (self *Workflow) Result() *model.IssuanceResult {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	return self.result
}

// Takes the operation lock and checks the stage allows op
func (self *Workflow) begin(op Operation) (end func(), err error) {
	if !self.opMtx.TryLock() {
		return nil, ErrBusy
	}

	self.mtx.RLock()
	allowed := self.stage.Allows(op)
	self.mtx.RUnlock()

	if !allowed {
		self.opMtx.Unlock()
		return nil, ErrNotAvailable
	}
	return self.opMtx.Unlock, nil
}

func (self *Workflow) SelectTemplate(template *model.Template) error {
	end, err := self.begin(OpSelectTemplate)
	if err != nil {
		return err
	}
	defer end()

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.draft.Template = template
	return nil
}

func (self *Workflow) SetLearnerIdentifier(identifier string, identifierType model.IdentifierType) error {
	end, err := self.begin(OpEditDetails)
	if err != nil {
		return err
	}
	defer end()

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.draft.LearnerIdentifier = strings.TrimSpace(identifier)
	self.draft.IdentifierType = identifierType
	return nil
}

// A new file needs a new extraction
func (self *Workflow) SetCertificateFile(file *model.CertificateFile) error {
	end, err := self.begin(OpEditDetails)
	if err != nil {
		return err
	}
	defer end()

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.draft.CertificateFile = file
	self.draft.ExtractedFields = nil
	return nil
}

func (self *Workflow) SetDetails(details model.Details) error {
	end, err := self.begin(OpEditDetails)
	if err != nil {
		return err
	}
	defer end()

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.draft.Details = details
	return nil
}

// Runs OCR on the certificate. On success the extracted fields replace the previous extraction and fill the
// form. On failure the draft stays untouched.
func (self *Workflow) Extract(ctx context.Context) (out *model.ExtractedFields, err error) {
	end, err := self.begin(OpExtract)
	if err != nil {
		return
	}
	defer end()

	self.mtx.RLock()
	file, previous := self.draft.CertificateFile, self.draft.Details
	self.mtx.RUnlock()

	out, err = self.extractor.Extract(ctx, self.credentials, file, previous)
	if err != nil {
		return
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.draft.ExtractedFields = out
	self.draft.Details = model.Details(*out)

	fields := *out
	return &fields, nil
}

func (self *Workflow) validateDetails() (errs ValidationErrors) {
	if self.draft.LearnerIdentifier == "" {
		errs = append(errs, ValidationError{Field: "learner_identifier", Message: "Enter the learner's identifier"})
	}
	if self.draft.CertificateFile == nil {
		errs = append(errs, ValidationError{Field: "certificate_file", Message: "Upload a certificate"})
	}
	if strings.TrimSpace(self.draft.Details.NsqfLevel) == "" {
		errs = append(errs, ValidationError{Field: "nsqf_level", Message: "Enter the NSQF level"})
	}
	if self.draft.ExtractedFields == nil {
		errs = append(errs, ValidationError{Field: "extracted_fields", Message: "Extract the certificate details first"})
	}
	return
}

// Moves to the next stage when the current stage's guard passes. Issuance has its own operation.
func (self *Workflow) Continue() error {
	end, err := self.begin(OpContinue)
	if err != nil {
		return err
	}
	defer end()

	self.mtx.Lock()
	defer self.mtx.Unlock()

	switch self.stage {
	case StageTemplateSelection:
		if self.draft.Template == nil {
			return ValidationErrors{{Field: "template", Message: "Select a template"}}
		}
		self.stage = StageDetailsEntry

	case StageDetailsEntry:
		if errs := self.validateDetails(); len(errs) > 0 {
			return errs
		}
		self.stage = StageVerification
		self.verification = model.NewVerificationResult()

	default:
		return ErrInvalidTransition
	}

	self.log.WithField("stage", self.stage).Debug("Stage changed")
	return nil
}

// Returns from verification to details entry. The verification result is discarded.
func (self *Workflow) Back() error {
	end, err := self.begin(OpBack)
	if err == ErrNotAvailable {
		return ErrInvalidTransition
	}
	if err != nil {
		return err
	}
	defer end()

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.stage = StageDetailsEntry
	self.verification = nil
	self.log.WithField("stage", self.stage).Debug("Stage changed")
	return nil
}

// Runs the checks. All of them are reset to pending before any request is made.
func (self *Workflow) Verify(ctx context.Context, onUpdate func(model.VerificationResult)) (out model.VerificationResult, err error) {
	end, err := self.begin(OpVerify)
	if err != nil {
		return
	}
	defer end()

	self.mtx.RLock()
	draft := *self.draft
	self.mtx.RUnlock()

	out = self.verifier.Verify(ctx, self.credentials, &draft, func(snapshot model.VerificationResult) {
		self.mtx.Lock()
		self.verification = &snapshot
		self.mtx.Unlock()

		if onUpdate != nil {
			onUpdate(snapshot)
		}
	})
	return
}

// Issues the credential. Needs every check to have succeeded and is only ever triggered explicitly.
func (self *Workflow) Issue(ctx context.Context, onProgress func(model.Progress)) (out *model.IssuanceResult, err error) {
	end, err := self.begin(OpIssue)
	if err != nil {
		return
	}
	defer end()

	self.mtx.RLock()
	verification := self.verification
	draft := *self.draft
	self.mtx.RUnlock()

	if verification == nil || !verification.AllVerified() {
		err = ErrNotVerified
		return
	}

	out, err = self.issuer.Issue(ctx, self.credentials, &IssueRequest{
		Draft:          &draft,
		LearnerName:    verification.LearnerName,
		LearnerAddress: verification.LearnerAddress,
		OnProgress:     onProgress,
	})
	if err != nil {
		return
	}

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.stage = StageIssued
	self.result = out
	self.draft = model.NewCredentialDraft()
	self.log.WithField("credential_id", out.CredentialId).Info("Credential issued")
	return
}

// Drops everything and starts over at template selection
func (self *Workflow) Cancel() {
	self.opMtx.Lock()
	defer self.opMtx.Unlock()

	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.reset()
}
