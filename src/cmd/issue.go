package cmd

import (
	"github.com/skillchain/issuer/src/utils/logger"
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/workflow"

	"github.com/spf13/cobra"
)

func init() {
	issueDraft.register(issueCmd)
	RootCmd.AddCommand(issueCmd)
}

var issueDraft draftFlags

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Verifies and issues a single credential",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("issue-cmd")

		client, credentials, err := connect()
		if err != nil {
			return
		}

		journal, err := openJournal()
		if err != nil {
			return
		}
		if journal != nil {
			defer journal.Close()
		}

		wf, err := workflow.NewWorkflow(conf, client)
		if err != nil {
			return
		}
		wf.WithCredentials(credentials)
		if journal != nil {
			wf.WithJournal(journal)
		}

		err = issueDraft.prepare(cmd, credentials, wf)
		if err != nil {
			return
		}

		verification, err := wf.Verify(applicationCtx, logVerification)
		if err != nil {
			return
		}
		if !verification.AllVerified() {
			_ = printJSON(cmd, verification)
			return workflow.ErrNotVerified
		}

		result, err := wf.Issue(applicationCtx, func(progress model.Progress) {
			log.WithField("step", progress.Step).Info(progress.Description)
		})
		if err != nil {
			log.WithField("step", workflow.FailedStep(err)).Error("Issuance failed")
			return
		}

		return printJSON(cmd, result)
	},
}
