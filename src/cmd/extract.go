package cmd

import (
	"github.com/skillchain/issuer/src/utils/model"
	"github.com/skillchain/issuer/src/workflow"

	"github.com/spf13/cobra"
)

func init() {
	extractCmd.Flags().StringVar(&extractFile, "file", "", "certificate file")
	_ = extractCmd.MarkFlagRequired("file")
	RootCmd.AddCommand(extractCmd)
}

var extractFile string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Reads certificate details with OCR",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		file, err := model.LoadCertificateFile(extractFile)
		if err != nil {
			return
		}

		client, credentials, err := connect()
		if err != nil {
			return
		}

		fields, err := workflow.NewExtractor(client).Extract(applicationCtx, credentials, file, model.Details{})
		if err != nil {
			return
		}
		return printJSON(cmd, fields)
	},
}
