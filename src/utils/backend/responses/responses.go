package responses

import (
	"encoding/json"
)

type ApiKey struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// Response of GET /issuer/api-keys. Accepts a bare list or an object wrapping it.
type ApiKeys []ApiKey

func (self *ApiKeys) UnmarshalJSON(data []byte) error {
	return unmarshalList(data, (*[]ApiKey)(self), "api_keys", "keys", "data")
}

// Response of POST /issuer/credentials/extract-ocr
type ExtractOCR struct {
	Success *bool                  `json:"success"`
	Message string                 `json:"message"`
	Result  map[string]interface{} `json:"result"`
	Data    map[string]interface{} `json:"data"`
}

// Nested object holding the extracted fields
func (self *ExtractOCR) Fields() map[string]interface{} {
	if self.Result != nil {
		if nested, ok := self.Result["extracted_data"].(map[string]interface{}); ok {
			return nested
		}
		return self.Result
	}
	if self.Data != nil {
		if nested, ok := self.Data["extracted_data"].(map[string]interface{}); ok {
			return nested
		}
		return self.Data
	}
	return nil
}

// Response of GET /issuer/users/{id}/is-learner
type IsLearner struct {
	IsLearner bool   `json:"is_learner"`
	UserId    string `json:"user_id"`
}

// Response of GET /wallet/lookup/{email}
type WalletProfile struct {
	UserId        string `json:"user_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
}

type User struct {
	Id       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Response of GET /users/search
type Users []User

func (self *Users) UnmarshalJSON(data []byte) error {
	return unmarshalList(data, (*[]User)(self), "users", "results", "data")
}

// Response of GET /learners/digilocker-data/by-aadhar/{no}
type DigiLocker struct {
	AadharNumber string `json:"aadhar_number"`
	Name         string `json:"name"`
	DateOfBirth  string `json:"dob"`
	Gender       string `json:"gender"`
	PanNumber    string `json:"pan_number"`
}

// Response of POST /issuer/credentials
type CreateCredential struct {
	Success      *bool  `json:"success"`
	Message      string `json:"message"`
	Id           string `json:"id"`
	CredentialId string `json:"credential_id"`
}

func (self *CreateCredential) GetId() string {
	if self.CredentialId != "" {
		return self.CredentialId
	}
	return self.Id
}

type QrCode struct {
	Image           string `json:"qr_code_image"`
	VerificationUrl string `json:"verification_url"`
}

// Response of POST /blockchain/credentials/issue
type IssueOnChain struct {
	Success         *bool  `json:"success"`
	Message         string `json:"message"`
	TransactionHash string `json:"transaction_hash"`
	CredentialHash  string `json:"credential_hash"`
	Network         string `json:"network"`
	Status          string `json:"status"`
	QrCode          QrCode `json:"qr_code"`
}

// Response of GET /blockchain/network/status
type NetworkStatus struct {
	Network     string `json:"network"`
	ChainId     int64  `json:"chain_id"`
	BlockNumber int64  `json:"block_number"`
	Connected   bool   `json:"connected"`
}

// Response of POST /issuer/credentials/overlay-qr
type Overlay struct {
	Success        *bool  `json:"success"`
	Message        string `json:"message"`
	CertificateUrl string `json:"certificate_url"`
	QrCodeUrl      string `json:"qr_code_url"`
}

// Response of POST /issuer/steganography-seed
type SeedSync struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// Explicit failure reported with a 2xx status
func Failed(success *bool) bool {
	return success != nil && !*success
}

func unmarshalList[T any](data []byte, out *[]T, keys ...string) error {
	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	for _, key := range keys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		return json.Unmarshal(raw, out)
	}
	*out = nil
	return nil
}
