package config

import (
	"time"

	"github.com/spf13/viper"
)

type Workflow struct {
	// Each verification check is aborted after this time
	VerificationTimeout time.Duration

	// How forgiving the learner name comparison is: strict, standard or lenient
	NameMatchStrictness string

	// Overlay a QR code on the certificate
	AddQrCode bool

	// Embed a steganographic watermark in the certificate. Requires a synced seed.
	AddSteganography bool

	// Hex encoded seed used by the steganography watermark
	SteganographySeed string

	// Issuer data put into the verifiable credential
	IssuerName string
	IssuerId   string

	// Credential type put next to VerifiableCredential
	CredentialType string

	// How long a government id fetched from DigiLocker is trusted
	DigiLockerCacheTTL time.Duration
}

func setWorkflowDefaults() {
	viper.SetDefault("Workflow.VerificationTimeout", "30s")
	viper.SetDefault("Workflow.NameMatchStrictness", "lenient")
	viper.SetDefault("Workflow.AddQrCode", "true")
	viper.SetDefault("Workflow.AddSteganography", "false")
	viper.SetDefault("Workflow.SteganographySeed", "")
	viper.SetDefault("Workflow.IssuerName", "")
	viper.SetDefault("Workflow.IssuerId", "")
	viper.SetDefault("Workflow.CredentialType", "SkillCredential")
	viper.SetDefault("Workflow.DigiLockerCacheTTL", "30m")
}
