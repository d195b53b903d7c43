package cmd

import (
	"encoding/json"

	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/journal"
	"github.com/skillchain/issuer/src/workflow"

	"github.com/spf13/cobra"
)

// Client and credentials with the API key resolved
func connect() (client *backend.Client, credentials backend.Credentials, err error) {
	client = backend.NewClient(&conf.Backend)
	credentials, err = workflow.ResolveCredentials(applicationCtx, client, backend.CredentialsFromConfig(&conf.Credentials))
	return
}

// Journal if enabled in the configuration, nil otherwise
func openJournal() (*journal.Journal, error) {
	if !conf.Journal.Enabled {
		return nil, nil
	}
	return journal.Open(applicationCtx, &conf.Journal)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
