package cmd

import (
	"strings"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/logger"
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/workflow"

	"github.com/spf13/cobra"
)

// Draft given on the command line
type draftFlags struct {
	learner        string
	identifierType string
	file           string
	templateId     string
	templateName   string
	aadhaar        string

	// Overrides of the extracted values
	title       string
	issuerName  string
	issueDate   string
	expiryDate  string
	skills      []string
	learnerName string
	nsqfLevel   string
	description string
	tags        []string
}

func (self *draftFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&self.learner, "learner", "", "learner email, Aadhaar or PAN number")
	flags.StringVar(&self.identifierType, "type", "email", "learner identifier type: email, aadhaar or pan")
	flags.StringVar(&self.file, "file", "", "certificate file (pdf, png or jpeg)")
	flags.StringVar(&self.templateId, "template", "default", "certificate template id")
	flags.StringVar(&self.templateName, "template-name", "", "certificate template name")
	flags.StringVar(&self.aadhaar, "aadhaar", "", "Aadhaar number fetched from DigiLocker before verification")

	flags.StringVar(&self.title, "title", "", "credential title")
	flags.StringVar(&self.issuerName, "issuer-name", "", "name of the issuing organization")
	flags.StringVar(&self.issueDate, "issue-date", "", "issue date")
	flags.StringVar(&self.expiryDate, "expiry-date", "", "expiry date")
	flags.StringSliceVar(&self.skills, "skills", nil, "comma separated skills")
	flags.StringVar(&self.learnerName, "learner-name", "", "learner name printed on the certificate")
	flags.StringVar(&self.nsqfLevel, "nsqf-level", "", "NSQF level, 1 to 10")
	flags.StringVar(&self.description, "description", "", "credential description")
	flags.StringSliceVar(&self.tags, "tags", nil, "comma separated tags")

	_ = cmd.MarkFlagRequired("learner")
	_ = cmd.MarkFlagRequired("file")
}

// Explicitly set flags win over the extracted values
func (self *draftFlags) apply(cmd *cobra.Command, details model.Details) model.Details {
	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = strings.TrimSpace(value)
		}
	}
	set("title", &details.Title, self.title)
	set("issuer-name", &details.IssuerName, self.issuerName)
	set("issue-date", &details.IssueDate, self.issueDate)
	set("expiry-date", &details.ExpiryDate, self.expiryDate)
	set("learner-name", &details.LearnerName, self.learnerName)
	set("nsqf-level", &details.NsqfLevel, self.nsqfLevel)
	set("description", &details.Description, self.description)
	if flags.Changed("skills") {
		details.Skills = self.skills
	}
	if flags.Changed("tags") {
		details.Tags = self.tags
	}
	return details
}

// Walks the workflow from template selection up to the verification stage
func (self *draftFlags) prepare(cmd *cobra.Command, credentials backend.Credentials, wf *workflow.Workflow) (err error) {
	log := logger.NewSublogger("draft")

	identifierType, err := model.ParseIdentifierType(self.identifierType)
	if err != nil {
		return
	}

	file, err := model.LoadCertificateFile(self.file)
	if err != nil {
		return
	}

	err = wf.SelectTemplate(&model.Template{Id: self.templateId, Name: self.templateName})
	if err != nil {
		return
	}

	err = wf.Continue()
	if err != nil {
		return
	}

	err = wf.SetLearnerIdentifier(self.learner, identifierType)
	if err != nil {
		return
	}

	err = wf.SetCertificateFile(file)
	if err != nil {
		return
	}

	fields, err := wf.Extract(applicationCtx)
	if err != nil {
		return
	}
	log.WithField("title", fields.Title).WithField("learner_name", fields.LearnerName).Info("Extracted certificate details")

	draft := wf.Draft()
	err = wf.SetDetails(self.apply(cmd, draft.Details))
	if err != nil {
		return
	}

	if self.aadhaar != "" {
		_, err = wf.DigiLocker().Lookup(applicationCtx, credentials, self.aadhaar)
		if err != nil {
			return
		}
	}

	return wf.Continue()
}

func logVerification(result model.VerificationResult) {
	log := logger.NewSublogger("verify")
	for _, name := range model.Checks {
		check := result.Get(name)
		log.WithField("check", name).
			WithField("status", check.Status).
			WithField("error", check.Error).
			Debug("Check updated")
	}
}
