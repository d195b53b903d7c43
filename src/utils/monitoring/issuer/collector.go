package monitor_issuer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Verification
	Verifications     *prometheus.Desc
	AllVerified       *prometheus.Desc
	OcrExtractions    *prometheus.Desc
	DigiLockerCached  *prometheus.Desc
	DigiLockerFetched *prometheus.Desc
	LearnerCheckError *prometheus.Desc
	ApiKeyCheckError  *prometheus.Desc
	ChainCheckError   *prometheus.Desc
	CheckTimeouts     *prometheus.Desc
	NameMismatches    *prometheus.Desc

	// Issuance
	CredentialsCreated    *prometheus.Desc
	CredentialsIssued     *prometheus.Desc
	CertificatesReady     *prometheus.Desc
	SeedsSynced           *prometheus.Desc
	OcrExtractionError    *prometheus.Desc
	CreateCredentialError *prometheus.Desc
	IssueOnChainError     *prometheus.Desc
	OverlayError          *prometheus.Desc
	SeedSyncError         *prometheus.Desc
	JournalError          *prometheus.Desc

	// Bulk
	Batches             *prometheus.Desc
	RejectedBatches     *prometheus.Desc
	EntriesQueued       *prometheus.Desc
	EntriesProcessing   *prometheus.Desc
	EntriesProcessed    *prometheus.Desc
	EntriesSucceeded    *prometheus.Desc
	EntriesFailed       *prometheus.Desc
	EntriesRetried      *prometheus.Desc
	ConsecutiveFailures *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "issuer",
	}

	return &Collector{
		Verifications:     prometheus.NewDesc("verifications", "", nil, labels),
		AllVerified:       prometheus.NewDesc("all_verified", "", nil, labels),
		OcrExtractions:    prometheus.NewDesc("ocr_extractions", "", nil, labels),
		DigiLockerCached:  prometheus.NewDesc("digilocker_cached", "", nil, labels),
		DigiLockerFetched: prometheus.NewDesc("digilocker_fetched", "", nil, labels),
		LearnerCheckError: prometheus.NewDesc("learner_check_error", "", nil, labels),
		ApiKeyCheckError:  prometheus.NewDesc("api_key_check_error", "", nil, labels),
		ChainCheckError:   prometheus.NewDesc("blockchain_check_error", "", nil, labels),
		CheckTimeouts:     prometheus.NewDesc("check_timeouts", "", nil, labels),
		NameMismatches:    prometheus.NewDesc("name_mismatches", "", nil, labels),

		CredentialsCreated:    prometheus.NewDesc("credentials_created", "", nil, labels),
		CredentialsIssued:     prometheus.NewDesc("credentials_issued", "", nil, labels),
		CertificatesReady:     prometheus.NewDesc("certificates_ready", "", nil, labels),
		SeedsSynced:           prometheus.NewDesc("seeds_synced", "", nil, labels),
		OcrExtractionError:    prometheus.NewDesc("ocr_extraction_error", "", nil, labels),
		CreateCredentialError: prometheus.NewDesc("create_credential_error", "", nil, labels),
		IssueOnChainError:     prometheus.NewDesc("issue_on_chain_error", "", nil, labels),
		OverlayError:          prometheus.NewDesc("overlay_error", "", nil, labels),
		SeedSyncError:         prometheus.NewDesc("seed_sync_error", "", nil, labels),
		JournalError:          prometheus.NewDesc("journal_error", "", nil, labels),

		Batches:             prometheus.NewDesc("batches", "", nil, labels),
		RejectedBatches:     prometheus.NewDesc("rejected_batches", "", nil, labels),
		EntriesQueued:       prometheus.NewDesc("entries_queued", "", nil, labels),
		EntriesProcessing:   prometheus.NewDesc("entries_processing", "", nil, labels),
		EntriesProcessed:    prometheus.NewDesc("entries_processed", "", nil, labels),
		EntriesSucceeded:    prometheus.NewDesc("entries_succeeded", "", nil, labels),
		EntriesFailed:       prometheus.NewDesc("entries_failed", "", nil, labels),
		EntriesRetried:      prometheus.NewDesc("entries_retried", "", nil, labels),
		ConsecutiveFailures: prometheus.NewDesc("consecutive_failures", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.Verifications
	ch <- self.AllVerified
	ch <- self.OcrExtractions
	ch <- self.DigiLockerCached
	ch <- self.DigiLockerFetched
	ch <- self.LearnerCheckError
	ch <- self.ApiKeyCheckError
	ch <- self.ChainCheckError
	ch <- self.CheckTimeouts
	ch <- self.NameMismatches

	ch <- self.CredentialsCreated
	ch <- self.CredentialsIssued
	ch <- self.CertificatesReady
	ch <- self.SeedsSynced
	ch <- self.OcrExtractionError
	ch <- self.CreateCredentialError
	ch <- self.IssueOnChainError
	ch <- self.OverlayError
	ch <- self.SeedSyncError
	ch <- self.JournalError

	ch <- self.Batches
	ch <- self.RejectedBatches
	ch <- self.EntriesQueued
	ch <- self.EntriesProcessing
	ch <- self.EntriesProcessed
	ch <- self.EntriesSucceeded
	ch <- self.EntriesFailed
	ch <- self.EntriesRetried
	ch <- self.ConsecutiveFailures
}

func counter(ch chan<- prometheus.Metric, desc *prometheus.Desc, v uint64) {
	ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v))
}

func gauge(ch chan<- prometheus.Metric, desc *prometheus.Desc, v int64) {
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(v))
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	verifier := self.monitor.Report.Verifier
	counter(ch, self.Verifications, verifier.State.Verifications.Load())
	counter(ch, self.AllVerified, verifier.State.AllVerified.Load())
	counter(ch, self.OcrExtractions, verifier.State.OcrExtractions.Load())
	counter(ch, self.DigiLockerCached, verifier.State.DigiLockerCached.Load())
	counter(ch, self.DigiLockerFetched, verifier.State.DigiLockerFetched.Load())
	counter(ch, self.LearnerCheckError, verifier.Errors.LearnerCheck.Load())
	counter(ch, self.ApiKeyCheckError, verifier.Errors.ApiKeyCheck.Load())
	counter(ch, self.ChainCheckError, verifier.Errors.BlockchainCheck.Load())
	counter(ch, self.CheckTimeouts, verifier.Errors.Timeouts.Load())
	counter(ch, self.NameMismatches, verifier.Errors.NameMismatches.Load())

	issuer := self.monitor.Report.Issuer
	counter(ch, self.CredentialsCreated, issuer.State.CredentialsCreated.Load())
	counter(ch, self.CredentialsIssued, issuer.State.CredentialsIssued.Load())
	counter(ch, self.CertificatesReady, issuer.State.CertificatesReady.Load())
	counter(ch, self.SeedsSynced, issuer.State.SeedsSynced.Load())
	counter(ch, self.OcrExtractionError, issuer.Errors.OcrExtraction.Load())
	counter(ch, self.CreateCredentialError, issuer.Errors.CreateCredential.Load())
	counter(ch, self.IssueOnChainError, issuer.Errors.IssueOnChain.Load())
	counter(ch, self.OverlayError, issuer.Errors.Overlay.Load())
	counter(ch, self.SeedSyncError, issuer.Errors.SeedSync.Load())
	counter(ch, self.JournalError, issuer.Errors.Journal.Load())

	bulk := self.monitor.Report.Bulk
	counter(ch, self.Batches, bulk.State.Batches.Load())
	counter(ch, self.RejectedBatches, bulk.State.RejectedBatches.Load())
	gauge(ch, self.EntriesQueued, bulk.State.EntriesQueued.Load())
	gauge(ch, self.EntriesProcessing, bulk.State.EntriesProcessing.Load())
	counter(ch, self.EntriesProcessed, bulk.State.EntriesProcessed.Load())
	counter(ch, self.EntriesSucceeded, bulk.State.EntriesSucceeded.Load())
	counter(ch, self.EntriesFailed, bulk.State.EntriesFailed.Load())
	counter(ch, self.EntriesRetried, bulk.State.EntriesRetried.Load())
	gauge(ch, self.ConsecutiveFailures, bulk.State.ConsecutiveFailures.Load())
}
