package report

import (
	"go.uber.org/atomic"
)

type VerifierErrors struct {
	LearnerCheck    atomic.Uint64 `json:"learner_check"`
	ApiKeyCheck     atomic.Uint64 `json:"api_key_check"`
	BlockchainCheck atomic.Uint64 `json:"blockchain_check"`
	Timeouts        atomic.Uint64 `json:"timeouts"`
	NameMismatches  atomic.Uint64 `json:"name_mismatches"`
}

type VerifierState struct {
	Verifications     atomic.Uint64 `json:"verifications"`
	AllVerified       atomic.Uint64 `json:"all_verified"`
	OcrExtractions    atomic.Uint64 `json:"ocr_extractions"`
	DigiLockerCached  atomic.Uint64 `json:"digilocker_cached"`
	DigiLockerFetched atomic.Uint64 `json:"digilocker_fetched"`
}

type VerifierReport struct {
	State  VerifierState  `json:"state"`
	Errors VerifierErrors `json:"errors"`
}
