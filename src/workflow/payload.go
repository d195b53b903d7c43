package workflow

import (
	"time"

	"github.com/skillchain/issuer/src/utils/backend/requests"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/model"
)

const credentialsContext = "https://www.w3.org/2018/credentials/v1"

// Builds the create request from the draft. learnerName is the name confirmed by verification, if any.
func NewCreateCredentialRequest(config *config.Workflow, draft *model.CredentialDraft, learnerName, idempotencyKey string) *requests.CreateCredential {
	details := draft.Details

	issuanceDate := details.IssueDate
	if issuanceDate == "" {
		issuanceDate = time.Now().UTC().Format(time.RFC3339)
	}

	issuerName := details.IssuerName
	if issuerName == "" {
		issuerName = config.IssuerName
	}

	if learnerName == "" {
		learnerName = details.LearnerName
	}

	types := []string{"VerifiableCredential"}
	if config.CredentialType != "" && config.CredentialType != "VerifiableCredential" {
		types = append(types, config.CredentialType)
	}

	achievement := requests.Achievement{
		Name:        details.Title,
		Description: details.Description,
		NsqfLevel:   details.NsqfLevel,
		Skills:      details.Skills,
		Tags:        details.Tags,
	}

	metadata := map[string]string{
		"identifier_type": string(draft.IdentifierType),
	}
	if draft.Template != nil {
		achievement.TemplateId = draft.Template.Id
		metadata["template_name"] = draft.Template.Name
	}
	if draft.CertificateFile != nil {
		metadata["certificate_file"] = draft.CertificateFile.Name
	}

	return &requests.CreateCredential{
		VcPayload: requests.VcPayload{
			Context: []string{credentialsContext},
			Type:    types,
			Issuer: requests.Issuer{
				Id:   config.IssuerId,
				Name: issuerName,
			},
			IssuanceDate:   issuanceDate,
			ExpirationDate: details.ExpiryDate,
			CredentialSubject: requests.CredentialSubject{
				Id:          draft.LearnerIdentifier,
				Name:        learnerName,
				Achievement: achievement,
			},
		},
		LearnerId:      draft.LearnerIdentifier,
		CredentialType: config.CredentialType,
		IdempotencyKey: idempotencyKey,
		Metadata:       metadata,
	}
}
