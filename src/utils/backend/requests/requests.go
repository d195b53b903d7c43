package requests

// Body of POST /issuer/credentials
type CreateCredential struct {
	VcPayload      VcPayload         `json:"vc_payload"`
	LearnerId      string            `json:"learner_id"`
	CredentialType string            `json:"credential_type,omitempty"`
	IdempotencyKey string            `json:"idempotency_key"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// W3C verifiable credential as accepted by the backend
type VcPayload struct {
	Context           []string          `json:"@context"`
	Type              []string          `json:"type"`
	Issuer            Issuer            `json:"issuer"`
	IssuanceDate      string            `json:"issuanceDate"`
	ExpirationDate    string            `json:"expirationDate,omitempty"`
	CredentialSubject CredentialSubject `json:"credentialSubject"`
}

type Issuer struct {
	Id   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type CredentialSubject struct {
	Id          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Achievement Achievement `json:"achievement"`
}

type Achievement struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	NsqfLevel   string   `json:"nsqf_level,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	TemplateId  string   `json:"template_id,omitempty"`
}

// Body of POST /blockchain/credentials/issue
type IssueOnChain struct {
	CredentialId        string `json:"credential_id"`
	LearnerAddress      string `json:"learner_address"`
	GenerateQr          bool   `json:"generate_qr"`
	WaitForConfirmation bool   `json:"wait_for_confirmation"`
}

// Form fields of POST /issuer/credentials/overlay-qr, the file goes separately
type Overlay struct {
	CredentialId     string
	AddQrCode        bool
	AddSteganography bool

	// JSON encoded QR payload
	QrData string
}
