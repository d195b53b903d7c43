package workflow

import (
	"context"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/backend/requests"
	"github.com/skillchain/issuer/src/utils/backend/responses"
	"github.com/skillchain/issuer/src/utils/model"
)

// Remote calls used by the workflow, implemented by *backend.Client
type Backend interface {
	GetApiKeys(ctx context.Context, credentials backend.Credentials) (responses.ApiKeys, error)
	CheckApiKeys(ctx context.Context, credentials backend.Credentials) error
	ExtractOCR(ctx context.Context, credentials backend.Credentials, file *model.CertificateFile) (*responses.ExtractOCR, error)
	IsLearner(ctx context.Context, credentials backend.Credentials, id string) (*responses.IsLearner, error)
	LookupWallet(ctx context.Context, credentials backend.Credentials, email string) (*responses.WalletProfile, error)
	GetDigiLockerByAadhaar(ctx context.Context, credentials backend.Credentials, aadhaar string) (*responses.DigiLocker, error)
	GetNetworkStatus(ctx context.Context, credentials backend.Credentials) (*responses.NetworkStatus, error)
	CreateCredential(ctx context.Context, credentials backend.Credentials, body *requests.CreateCredential) (*responses.CreateCredential, error)
	IssueOnChain(ctx context.Context, credentials backend.Credentials, body *requests.IssueOnChain) (*responses.IssueOnChain, error)
	OverlayCertificate(ctx context.Context, credentials backend.Credentials, file *model.CertificateFile, body *requests.Overlay) (*responses.Overlay, error)
	SyncSteganographySeed(ctx context.Context, credentials backend.Credentials, seed string) error
}

var _ Backend = (*backend.Client)(nil)

// Receives the progress of every issued credential. Implemented by *journal.Journal.
type Recorder interface {
	OnCreated(ctx context.Context, batchId, idempotencyKey, learnerId, credentialId string) error
	OnIssued(ctx context.Context, idempotencyKey, transactionHash string) error
	OnOverlaid(ctx context.Context, idempotencyKey, certificateUrl string) error
	OnFailed(ctx context.Context, batchId, idempotencyKey, learnerId, step string, cause error) error
}

// Fills in the API key when the configuration doesn't have one. The first active key of the account is used.
func ResolveCredentials(ctx context.Context, client Backend, credentials backend.Credentials) (out backend.Credentials, err error) {
	if credentials.HasApiKey() {
		return credentials, nil
	}

	keys, err := client.GetApiKeys(ctx, credentials)
	if err != nil {
		return
	}
	for _, k := range keys {
		if k.IsActive && k.Key != "" {
			return credentials.WithApiKey(k.Key), nil
		}
	}
	err = backend.ErrNoApiKey
	return
}
