package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/backend/requests"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/logger"
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/utils/monitoring"
	monitor_issuer "github.com/skillchain/issuer/src/utils/monitoring/issuer"

	"github.com/sirupsen/logrus"
)

// Input of a single issuance
type IssueRequest struct {
	Draft *model.CredentialDraft

	// Resolved by the learner check
	LearnerName    string
	LearnerAddress string

	// Empty for single issuance
	BatchId string

	// Called before every step, may be nil
	OnProgress func(model.Progress)
}

// Creates the credential, issues it on chain and overlays the certificate. Steps run in order, each needs the
// previous step's output. A failed step stops the sequence, nothing is rolled back.
type Issuer struct {
	backend Backend
	config  *config.Workflow
	seeds   *SeedKeeper
	journal Recorder
	monitor monitoring.Monitor
	log     *logrus.Entry
}

func NewIssuer(config *config.Workflow, client Backend) (self *Issuer) {
	self = new(Issuer)
	self.backend = client
	self.config = config
	self.seeds = NewSeedKeeper(client, config.SteganographySeed)
	self.monitor = monitor_issuer.NewMonitor()
	self.log = logger.NewSublogger("issuer")
	return
}

func (self *Issuer) WithMonitor(monitor monitoring.Monitor) *Issuer {
	self.monitor = monitor
	self.seeds.WithMonitor(monitor)
	return self
}

func (self *Issuer) WithSeedKeeper(seeds *SeedKeeper) *Issuer {
	self.seeds = seeds
	return self
}

func (self *Issuer) WithJournal(journal Recorder) *Issuer {
	self.journal = journal
	return self
}

func (self *Issuer) SeedKeeper() *SeedKeeper {
	return self.seeds
}

type qrData struct {
	CredentialId    string `json:"credential_id"`
	VerificationUrl string `json:"verification_url,omitempty"`
	TransactionHash string `json:"transaction_hash,omitempty"`
}

func (self *Issuer) Issue(ctx context.Context, credentials backend.Credentials, req *IssueRequest) (out *model.IssuanceResult, err error) {
	draft := req.Draft
	if draft == nil || draft.CertificateFile == nil {
		err = ValidationErrors{{Field: "certificate_file", Message: "Upload a certificate first"}}
		return
	}

	progress := func(step Step, description string) {
		if req.OnProgress != nil {
			req.OnProgress(model.Progress{Step: string(step), Description: description})
		}
	}

	log := self.log.WithField("learner", draft.LearnerIdentifier)
	idempotencyKey := NewIdempotencyKey()

	fail := func(step Step, cause error) error {
		switch step {
		case StepCreate:
			self.monitor.GetReport().Issuer.Errors.CreateCredential.Inc()
		case StepIssue:
			self.monitor.GetReport().Issuer.Errors.IssueOnChain.Inc()
		case StepOverlay:
			self.monitor.GetReport().Issuer.Errors.Overlay.Inc()
		}
		log.WithError(cause).WithField("step", step).Error("Issuance failed")
		self.record(func() error {
			return self.journal.OnFailed(ctx, req.BatchId, idempotencyKey, draft.LearnerIdentifier, string(step), cause)
		})
		return &StepError{Step: step, Err: cause}
	}

	// Watermark needs the seed on the backend, checked before anything is created
	if self.config.AddSteganography {
		progress(StepSeed, "Checking steganography seed")
		err = self.seeds.EnsureSynced(ctx, credentials)
		if err != nil {
			err = fail(StepSeed, err)
			return
		}
	}

	// Create
	progress(StepCreate, "Creating credential")
	created, err := self.backend.CreateCredential(ctx, credentials,
		NewCreateCredentialRequest(self.config, draft, req.LearnerName, idempotencyKey))
	if err != nil {
		err = fail(StepCreate, err)
		return
	}
	credentialId := created.GetId()
	self.monitor.GetReport().Issuer.State.CredentialsCreated.Inc()
	log = log.WithField("credential_id", credentialId)
	log.Info("Credential created")
	self.record(func() error {
		return self.journal.OnCreated(ctx, req.BatchId, idempotencyKey, draft.LearnerIdentifier, credentialId)
	})

	// Issue on chain, confirmation isn't awaited
	learnerAddress := req.LearnerAddress
	if learnerAddress == "" {
		learnerAddress = draft.LearnerIdentifier
	}
	progress(StepIssue, "Issuing on blockchain")
	issued, err := self.backend.IssueOnChain(ctx, credentials, &requests.IssueOnChain{
		CredentialId:        credentialId,
		LearnerAddress:      learnerAddress,
		GenerateQr:          true,
		WaitForConfirmation: false,
	})
	if err != nil {
		err = fail(StepIssue, err)
		return
	}
	self.monitor.GetReport().Issuer.State.CredentialsIssued.Inc()
	log.WithField("tx", issued.TransactionHash).Info("Credential issued on chain")
	self.record(func() error {
		return self.journal.OnIssued(ctx, idempotencyKey, issued.TransactionHash)
	})

	// Overlay
	progress(StepOverlay, "Protecting certificate")
	qr, err := json.Marshal(qrData{
		CredentialId:    credentialId,
		VerificationUrl: issued.QrCode.VerificationUrl,
		TransactionHash: issued.TransactionHash,
	})
	if err != nil {
		err = fail(StepOverlay, err)
		return
	}
	overlay, err := self.backend.OverlayCertificate(ctx, credentials, draft.CertificateFile, &requests.Overlay{
		CredentialId:     credentialId,
		AddQrCode:        self.config.AddQrCode,
		AddSteganography: self.config.AddSteganography,
		QrData:           string(qr),
	})
	if err != nil {
		err = fail(StepOverlay, err)
		return
	}
	self.monitor.GetReport().Issuer.State.CertificatesReady.Inc()
	self.record(func() error {
		return self.journal.OnOverlaid(ctx, idempotencyKey, overlay.CertificateUrl)
	})

	out = &model.IssuanceResult{
		CredentialId:    credentialId,
		TransactionHash: issued.TransactionHash,
		CredentialHash:  issued.CredentialHash,
		CertificateUrl:  overlay.CertificateUrl,
		QrCode: model.QrCodePayload{
			Image:           issued.QrCode.Image,
			VerificationUrl: issued.QrCode.VerificationUrl,
		},
		IssuedAt: time.Now().UTC(),
		Network:  issued.Network,
	}
	log.WithField("url", out.CertificateUrl).Info("Certificate ready")
	return
}

// Journal failures never fail the issuance
func (self *Issuer) record(f func() error) {
	if self.journal == nil {
		return
	}
	err := f()
	if err != nil {
		self.monitor.GetReport().Issuer.Errors.Journal.Inc()
		self.log.WithError(err).Error("Failed to write journal")
	}
}
