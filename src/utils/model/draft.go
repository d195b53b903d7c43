package model

// Values of the details form. Filled by the user and by OCR extraction.
type Details struct {
	Title       string   `json:"title" mapstructure:"title"`
	IssuerName  string   `json:"issuer" mapstructure:"issuer"`
	IssueDate   string   `json:"issue_date" mapstructure:"issue_date"`
	ExpiryDate  string   `json:"expiry_date" mapstructure:"expiry_date"`
	Skills      []string `json:"skills" mapstructure:"skills"`
	LearnerName string   `json:"learner_name" mapstructure:"learner_name"`
	NsqfLevel   string   `json:"nsqf_level" mapstructure:"nsqf_level"`
	Description string   `json:"description" mapstructure:"description"`
	Tags        []string `json:"tags" mapstructure:"tags"`
}

// Fields read from the certificate. Set once per extraction and only displayed afterwards.
type ExtractedFields Details

// Each field missing in the extraction is taken from the previous form values
func (self ExtractedFields) MergedWith(previous Details) ExtractedFields {
	if self.Title == "" {
		self.Title = previous.Title
	}
	if self.IssuerName == "" {
		self.IssuerName = previous.IssuerName
	}
	if self.IssueDate == "" {
		self.IssueDate = previous.IssueDate
	}
	if self.ExpiryDate == "" {
		self.ExpiryDate = previous.ExpiryDate
	}
	if len(self.Skills) == 0 {
		self.Skills = previous.Skills
	}
	if self.LearnerName == "" {
		self.LearnerName = previous.LearnerName
	}
	if self.NsqfLevel == "" {
		self.NsqfLevel = previous.NsqfLevel
	}
	if self.Description == "" {
		self.Description = previous.Description
	}
	if len(self.Tags) == 0 {
		self.Tags = previous.Tags
	}
	return self
}

// In-progress issuance record
type CredentialDraft struct {
	LearnerIdentifier string
	IdentifierType    IdentifierType
	CertificateFile   *CertificateFile
	Template          *Template
	Details           Details

	// Nil until OCR extraction succeeds
	ExtractedFields *ExtractedFields
}

func NewCredentialDraft() *CredentialDraft {
	return &CredentialDraft{
		IdentifierType: IdentifierTypeEmail,
	}
}

// Learner name read from the certificate, empty if extraction didn't find one
func (self *CredentialDraft) ExtractedLearnerName() string {
	if self.ExtractedFields == nil {
		return ""
	}
	return self.ExtractedFields.LearnerName
}
