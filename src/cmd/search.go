package cmd

import (
	"strings"

	"github.com/skillchain/issuer/src/utils/backend"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Searches users by name or email",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		client := backend.NewClient(&conf.Backend)
		users, err := client.SearchUsers(applicationCtx, backend.CredentialsFromConfig(&conf.Credentials), strings.Join(args, " "))
		if err != nil {
			return
		}
		return printJSON(cmd, users)
	},
}
