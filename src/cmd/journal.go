package cmd

import (
	"errors"

	"github.com/skillchain/issuer/src/utils/journal"

	"github.com/spf13/cobra"
)

func init() {
	journalCmd.AddCommand(journalUnfinishedCmd)
	journalCmd.AddCommand(journalGetCmd)
	RootCmd.AddCommand(journalCmd)
}

var errJournalDisabled = errors.New("journal is disabled")

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspects the local issuance journal",
}

var journalUnfinishedCmd = &cobra.Command{
	Use:   "unfinished",
	Short: "Lists credentials created on the backend but never completed",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		return withJournal(func(j *journal.Journal) error {
			entries, err := j.Unfinished(applicationCtx)
			if err != nil {
				return err
			}
			return printJSON(cmd, entries)
		})
	},
}

var journalGetCmd = &cobra.Command{
	Use:   "get <idempotency-key>",
	Short: "Shows the journal entry of a single issuance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		return withJournal(func(j *journal.Journal) error {
			entry, err := j.Get(applicationCtx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, entry)
		})
	},
}

func withJournal(f func(j *journal.Journal) error) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	if j == nil {
		return errJournalDisabled
	}
	defer j.Close()
	return f(j)
}
