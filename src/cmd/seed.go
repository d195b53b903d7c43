package cmd

import (
	"fmt"

	"github.com/skillchain/issuer/src/workflow"

	"github.com/spf13/cobra"
)

func init() {
	seedSyncCmd.Flags().StringVar(&seedValue, "seed", "", "hex encoded seed, defaults to the configured one")
	seedSyncCmd.Flags().BoolVar(&seedGenerate, "generate", false, "generate a new seed before syncing")

	seedCmd.AddCommand(seedGenerateCmd)
	seedCmd.AddCommand(seedSyncCmd)
	RootCmd.AddCommand(seedCmd)
}

var (
	seedValue    string
	seedGenerate bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Manages the steganography seed",
}

var seedGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Prints a new random seed",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		seed, err := workflow.GenerateSeed()
		if err != nil {
			return
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), seed)
		return
	},
}

var seedSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sends the seed to the backend",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		client, credentials, err := connect()
		if err != nil {
			return
		}

		seed := seedValue
		if seed == "" {
			seed = conf.Workflow.SteganographySeed
		}
		keeper := workflow.NewSeedKeeper(client, seed)

		if seedGenerate {
			_, err = keeper.Generate()
			if err != nil {
				return
			}
		}

		err = keeper.Sync(applicationCtx, credentials)
		if err != nil {
			return
		}

		if seedGenerate {
			// New seed has to be put into the configuration
			_, err = fmt.Fprintln(cmd.OutOrStdout(), keeper.Seed())
		}
		return
	},
}
