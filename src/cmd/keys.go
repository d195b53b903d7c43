package cmd

import (
	"github.com/skillchain/issuer/src/utils/backend"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Lists API keys of the issuer account",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		client := backend.NewClient(&conf.Backend)
		keys, err := client.GetApiKeys(applicationCtx, backend.CredentialsFromConfig(&conf.Credentials))
		if err != nil {
			return
		}

		// Never print the keys themselves
		type key struct {
			Id        string `json:"id"`
			Name      string `json:"name"`
			IsActive  bool   `json:"is_active"`
			CreatedAt string `json:"created_at,omitempty"`
		}
		out := make([]key, 0, len(keys))
		for _, k := range keys {
			out = append(out, key{Id: k.Id, Name: k.Name, IsActive: k.IsActive, CreatedAt: k.CreatedAt})
		}
		return printJSON(cmd, out)
	},
}
