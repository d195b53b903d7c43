package model

type EntryStatus string

const (
	EntryStatusPending    EntryStatus = "pending"
	EntryStatusProcessing EntryStatus = "processing"
	EntryStatusSuccess    EntryStatus = "success"
	EntryStatusError      EntryStatus = "error"
)

type Progress struct {
	Step        string `json:"step"`
	Description string `json:"description"`
}

// One row of a bulk batch
type BulkEntry struct {
	Id              string           `json:"id"`
	LearnerId       string           `json:"learner_id"`
	IdentifierType  IdentifierType   `json:"identifier_type"`
	CertificateFile *CertificateFile `json:"-"`
	Template        *Template        `json:"template,omitempty"`
	Status          EntryStatus      `json:"status"`
	Error           string           `json:"error,omitempty"`
	Result          *IssuanceResult  `json:"result,omitempty"`
	Progress        *Progress        `json:"progress,omitempty"`
	IsEditing       bool             `json:"is_editing"`
	Attempts        int              `json:"attempts"`
}

// Both the identifier and the file are required before a batch starts
func (self *BulkEntry) IsComplete() bool {
	return self.LearnerId != "" && self.CertificateFile != nil
}
