package backend

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/skillchain/issuer/src/utils/backend/requests"
	"github.com/skillchain/issuer/src/utils/backend/responses"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/model"
)

// Thin wrappers over the REST API. One request per call, no retries beyond the configured ones.
type Client struct {
	*BaseClient
}

func NewClient(config *config.Backend) (self *Client) {
	self = new(Client)
	self.BaseClient = newBaseClient(config)
	return
}

func (self *Client) GetApiKeys(ctx context.Context, credentials Credentials) (out responses.ApiKeys, err error) {
	resp, err := self.request(ctx, credentials, authBearer).
		SetResult(&responses.ApiKeys{}).
		ForceContentType("application/json").
		Get("/issuer/api-keys")
	if err != nil {
		err = classify(err)
		return
	}

	keys, ok := resp.Result().(*responses.ApiKeys)
	if !ok {
		err = ErrFailedToParse
		return
	}
	return *keys, nil
}

// Only the status matters, the body is not read
func (self *Client) CheckApiKeys(ctx context.Context, credentials Credentials) (err error) {
	_, err = self.request(ctx, credentials, authBearer).
		Get("/issuer/api-keys")
	if err != nil {
		err = classify(err)
	}
	return
}

func (self *Client) ExtractOCR(ctx context.Context, credentials Credentials, file *model.CertificateFile) (out *responses.ExtractOCR, err error) {
	resp, err := self.request(ctx, credentials, authApiKey).
		SetMultipartField("file", file.Name, file.MimeType, file.Reader()).
		SetResult(&responses.ExtractOCR{}).
		ForceContentType("application/json").
		Post("/issuer/credentials/extract-ocr")
	if err != nil {
		err = classify(err)
		return
	}

	out, ok := resp.Result().(*responses.ExtractOCR)
	if !ok {
		err = ErrFailedToParse
		return
	}

	if responses.Failed(out.Success) {
		err = NewApplicationError(orDefault(out.Message, "text extraction failed"))
		return
	}
	return
}

func (self *Client) IsLearner(ctx context.Context, credentials Credentials, id string) (out *responses.IsLearner, err error) {
	resp, err := self.request(ctx, credentials, authBearer|authApiKey).
		SetPathParam("id", id).
		SetResult(&responses.IsLearner{}).
		ForceContentType("application/json").
		Get("/issuer/users/{id}/is-learner")
	if err != nil {
		err = classify(err)
		return
	}

	out, ok := resp.Result().(*responses.IsLearner)
	if !ok {
		err = ErrFailedToParse
		return
	}
	return
}

func (self *Client) LookupWallet(ctx context.Context, credentials Credentials, email string) (out *responses.WalletProfile, err error) {
	resp, err := self.request(ctx, credentials, authBearer|authApiKey).
		SetPathParam("email", email).
		SetResult(&responses.WalletProfile{}).
		ForceContentType("application/json").
		Get("/wallet/lookup/{email}")
	if err != nil {
		err = classify(err)
		return
	}

	out, ok := resp.Result().(*responses.WalletProfile)
	if !ok {
		err = ErrFailedToParse
		return
	}
	return
}

func (self *Client) SearchUsers(ctx context.Context, credentials Credentials, query string) (out responses.Users, err error) {
	resp, err := self.request(ctx, credentials, authBearer).
		SetQueryParam("q", query).
		SetResult(&responses.Users{}).
		ForceContentType("application/json").
		Get("/users/search")
	if err != nil {
		err = classify(err)
		return
	}

	users, ok := resp.Result().(*responses.Users)
	if !ok {
		err = ErrFailedToParse
		return
	}
	return *users, nil
}

func (self *Client) GetDigiLockerByAadhaar(ctx context.Context, credentials Credentials, aadhaar string) (out *responses.DigiLocker, err error) {
	resp, err := self.request(ctx, credentials, authBearer).
		SetPathParam("no", aadhaar).
		SetResult(&responses.DigiLocker{}).
		ForceContentType("application/json").
		Get("/learners/digilocker-data/by-aadhar/{no}")
	if err != nil {
		err = classify(err)
		return
	}

	out, ok := resp.Result().(*responses.DigiLocker)
	if !ok {
		err = ErrFailedToParse
		return
	}
	return
}

func (self *Client) CreateCredential(ctx context.Context, credentials Credentials, body *requests.CreateCredential) (out *responses.CreateCredential, err error) {
	resp, err := self.request(ctx, credentials, authBearer|authApiKey).
		SetBody(body).
		SetResult(&responses.CreateCredential{}).
		ForceContentType("application/json").
		SetHeader("Content-Type", "application/json").
		Post("/issuer/credentials")
	if err != nil {
		err = classify(err)
		return
	}

	out, ok := resp.Result().(*responses.CreateCredential)
	if !ok {
		err = ErrFailedToParse
		return
	}

	if responses.Failed(out.Success) {
		err = NewApplicationError(orDefault(out.Message, "credential creation failed"))
		return
	}
	if out.GetId() == "" {
		err = NewApplicationError("credential id missing in response")
		return
	}
	return
}

func (self *Client) IssueOnChain(ctx context.Context, credentials Credentials, body *requests.IssueOnChain) (out *responses.IssueOnChain, err error) {
	resp, err := self.request(ctx, credentials, authBearer).
		SetBody(body).
		SetResult(&responses.IssueOnChain{}).
		ForceContentType("application/json").
		SetHeader("Content-Type", "application/json").
		Post("/blockchain/credentials/issue")
	if err != nil {
		err = classify(err)
		return
	}

	out, ok := resp.Result().(*responses.IssueOnChain)
	if !ok {
		err = ErrFailedToParse
		return
	}

	if responses.Failed(out.Success) {
		err = NewApplicationError(orDefault(out.Message, "blockchain issuance failed"))
		return
	}
	return
}

// Any 2xx is a reachable network. The body is informative only and may be empty or in an unknown shape.
func (self *Client) GetNetworkStatus(ctx context.Context, credentials Credentials) (out *responses.NetworkStatus, err error) {
	resp, err := self.request(ctx, credentials, authBearer|authApiKey).
		Get("/blockchain/network/status")
	if err != nil {
		err = classify(err)
		return
	}

	out = new(responses.NetworkStatus)
	if !decodeOptional(resp.Body(), out) {
		self.log.WithField("status", resp.StatusCode()).Debug("Network status body not understood")
	}
	return
}

// Seed is sent as the raw request body
func (self *Client) SyncSteganographySeed(ctx context.Context, credentials Credentials, seed string) (err error) {
	resp, err := self.request(ctx, credentials, authBearer|authApiKey).
		SetHeader("Content-Type", "text/plain").
		SetBody(seed).
		Post("/issuer/steganography-seed")
	if err != nil {
		err = classify(err)
		return
	}

	out := new(responses.SeedSync)
	if decodeOptional(resp.Body(), out) && responses.Failed(out.Success) {
		err = NewApplicationError(orDefault(out.Message, "seed sync failed"))
	}
	return
}

func (self *Client) OverlayCertificate(ctx context.Context, credentials Credentials, file *model.CertificateFile, body *requests.Overlay) (out *responses.Overlay, err error) {
	form := map[string]string{
		"credential_id":     body.CredentialId,
		"add_qr_code":       strconv.FormatBool(body.AddQrCode),
		"add_steganography": strconv.FormatBool(body.AddSteganography),
	}
	if body.QrData != "" {
		form["qr_data"] = body.QrData
	}

	resp, err := self.request(ctx, credentials, authBearer|authApiKey).
		SetMultipartField("certificate_file", file.Name, file.MimeType, file.Reader()).
		SetMultipartFormData(form).
		SetResult(&responses.Overlay{}).
		ForceContentType("application/json").
		Post("/issuer/credentials/overlay-qr")
	if err != nil {
		err = classify(err)
		return
	}

	out, ok := resp.Result().(*responses.Overlay)
	if !ok {
		err = ErrFailedToParse
		return
	}

	if responses.Failed(out.Success) {
		err = NewApplicationError(orDefault(out.Message, "certificate overlay failed"))
		return
	}
	return
}

// Bodies of some endpoints are optional, empty or non-JSON bodies are ignored
func decodeOptional(body []byte, out interface{}) bool {
	if len(body) == 0 {
		return false
	}
	return json.Unmarshal(body, out) == nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
