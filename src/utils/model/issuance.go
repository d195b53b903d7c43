package model

import "time"

type QrCodePayload struct {
	// Base64 encoded image
	Image           string `json:"image"`
	VerificationUrl string `json:"verification_url"`
}

// Output of a successful issuance. Immutable after creation.
type IssuanceResult struct {
	CredentialId    string        `json:"credential_id"`
	TransactionHash string        `json:"transaction_hash,omitempty"`
	CredentialHash  string        `json:"credential_hash,omitempty"`
	CertificateUrl  string        `json:"certificate_url"`
	QrCode          QrCodePayload `json:"qr_code"`
	IssuedAt        time.Time     `json:"issued_at"`
	Network         string        `json:"network,omitempty"`
}
