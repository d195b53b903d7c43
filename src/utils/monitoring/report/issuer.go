package report

import (
	"go.uber.org/atomic"
)

type IssuerErrors struct {
	OcrExtraction    atomic.Uint64 `json:"ocr_extraction"`
	CreateCredential atomic.Uint64 `json:"create_credential"`
	IssueOnChain     atomic.Uint64 `json:"issue_on_chain"`
	Overlay          atomic.Uint64 `json:"overlay"`
	SeedSync         atomic.Uint64 `json:"seed_sync"`
	Journal          atomic.Uint64 `json:"journal"`
}

type IssuerState struct {
	CredentialsCreated atomic.Uint64 `json:"credentials_created"`
	CredentialsIssued  atomic.Uint64 `json:"credentials_issued"`
	CertificatesReady  atomic.Uint64 `json:"certificates_ready"`
	SeedsSynced        atomic.Uint64 `json:"seeds_synced"`
}

type IssuerReport struct {
	State  IssuerState  `json:"state"`
	Errors IssuerErrors `json:"errors"`
}
