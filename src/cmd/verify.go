package cmd

import (
	"github.com/skillchain/issuer/src/workflow"

	"github.com/spf13/cobra"
)

func init() {
	verifyDraft.register(verifyCmd)
	RootCmd.AddCommand(verifyCmd)
}

var verifyDraft draftFlags

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Runs the pre-issuance checks for a single credential",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		client, credentials, err := connect()
		if err != nil {
			return
		}

		wf, err := workflow.NewWorkflow(conf, client)
		if err != nil {
			return
		}
		wf.WithCredentials(credentials)

		err = verifyDraft.prepare(cmd, credentials, wf)
		if err != nil {
			return
		}

		result, err := wf.Verify(applicationCtx, logVerification)
		if err != nil {
			return
		}

		err = printJSON(cmd, result)
		if err != nil {
			return
		}

		if !result.AllVerified() {
			return workflow.ErrNotVerified
		}
		return
	},
}
