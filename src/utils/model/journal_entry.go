package model

import "time"

// Local record of a credential going through issuance. One row per idempotency key.
type JournalEntry struct {
	IdempotencyKey  string       `gorm:"primaryKey; not null; comment:Key sent with the create request"`
	BatchId         string       `gorm:"index; comment:Bulk batch the credential belongs to, empty for single issuance"`
	LearnerId       string       `gorm:"index; not null"`
	CredentialId    string       `gorm:"index"`
	State           JournalState `gorm:"not null; index"`
	FailedStep      string
	Error           string
	TransactionHash string
	CertificateUrl  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}
