package cmd

import (
	"errors"
	"fmt"

	"github.com/skillchain/issuer/src/bulk"
	"github.com/skillchain/issuer/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	bulkCmd.Flags().StringVar(&bulkManifest, "manifest", "", "CSV file with learner_id, certificate_file, identifier_type and template_id columns")
	bulkCmd.Flags().IntVar(&bulkRetries, "retry-failed", 0, "how many times failed entries are retried")
	bulkCmd.Flags().BoolVar(&bulkServe, "serve", false, "keep the monitoring server running after the batch finishes")
	_ = bulkCmd.MarkFlagRequired("manifest")
	RootCmd.AddCommand(bulkCmd)
}

var (
	bulkManifest string
	bulkRetries  int
	bulkServe    bool
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Issues credentials for every entry of a manifest",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("bulk-cmd")

		batch, err := bulk.LoadManifest(bulkManifest)
		if err != nil {
			return
		}

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

		controller, err := bulk.NewController(conf, client)
		if err != nil {
			return
		}
		controller.WithCredentials(credentials)
		if journal != nil {
			controller.WithJournal(journal)
		}

		err = controller.Start()
		if err != nil {
			return
		}
		defer controller.StopWait()

		err = controller.Runner.Run(applicationCtx, batch)
		if err != nil {
			return
		}

		for attempt := 0; attempt < bulkRetries; attempt++ {
			failed := batch.Failed()
			if len(failed) == 0 {
				break
			}

			log.WithField("attempt", attempt+1).WithField("count", len(failed)).Info("Retrying failed entries")
			for _, id := range failed {
				err = controller.Runner.Retry(applicationCtx, batch, id)
				if err != nil && !errors.Is(err, bulk.ErrEntryBusy) {
					return
				}
			}

			err = controller.Runner.Wait(applicationCtx, batch)
			if err != nil {
				return
			}
		}

		err = printJSON(cmd, batch.Entries())
		if err != nil {
			return
		}

		if bulkServe && conf.Monitor.Enabled {
			select {
			case <-controller.CtxRunning.Done():
			case <-applicationCtx.Done():
			}
		}

		if failed := batch.Failed(); len(failed) > 0 {
			return fmt.Errorf("%d of %d entries failed", len(failed), batch.Len())
		}
		return
	},
}
