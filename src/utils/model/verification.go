package model

import "github.com/skillchain/issuer/src/utils/namematch"

type CheckStatus string

const (
	CheckStatusPending CheckStatus = "pending"
	CheckStatusSuccess CheckStatus = "success"
	CheckStatusError   CheckStatus = "error"
)

type CheckName string

const (
	CheckLearner    CheckName = "learner"
	CheckApiKey     CheckName = "api_key"
	CheckBlockchain CheckName = "blockchain"
)

var Checks = []CheckName{CheckLearner, CheckApiKey, CheckBlockchain}

// Outcome of a single check
type Check struct {
	Status CheckStatus `json:"status"`

	// Error message shown next to the check
	Error string `json:"error,omitempty"`

	// Set when the check was aborted after its deadline
	TimedOut bool `json:"timed_out,omitempty"`
}

func (self Check) IsSuccess() bool {
	return self.Status == CheckStatusSuccess
}

// Outcomes of the three independent checks run before issuance
type VerificationResult struct {
	Learner    Check `json:"learner"`
	ApiKey     Check `json:"api_key"`
	Blockchain Check `json:"blockchain"`

	NameMatch namematch.Outcome `json:"name_match"`

	// Profile resolved by the learner check
	LearnerName    string `json:"learner_name,omitempty"`
	LearnerAddress string `json:"learner_address,omitempty"`
}

// All checks start pending
func NewVerificationResult() *VerificationResult {
	return &VerificationResult{
		Learner:    Check{Status: CheckStatusPending},
		ApiKey:     Check{Status: CheckStatusPending},
		Blockchain: Check{Status: CheckStatusPending},
		NameMatch:  namematch.NotApplicable,
	}
}

// Derived on every read, never stored
func (self *VerificationResult) AllVerified() bool {
	return self.Learner.IsSuccess() && self.ApiKey.IsSuccess() && self.Blockchain.IsSuccess()
}

func (self *VerificationResult) Get(name CheckName) Check {
	switch name {
	case CheckLearner:
		return self.Learner
	case CheckApiKey:
		return self.ApiKey
	case CheckBlockchain:
		return self.Blockchain
	}
	return Check{}
}

func (self *VerificationResult) Set(name CheckName, check Check) {
	switch name {
	case CheckLearner:
		self.Learner = check
	case CheckApiKey:
		self.ApiKey = check
	case CheckBlockchain:
		self.Blockchain = check
	}
}
