package main

import (
	"github.com/spf13/cobra"

	"foodcart-routing-service/internal/adapters/repositories"
	"foodcart-routing-service/internal/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Initialize the schema and load demo data from a JSON or YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := repositories.LoadSeed(seedFile)
		if err != nil {
			return err
		}

		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}
		return st.Seed(cmd.Context(), seed)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "data/seeds/demo.json", "seed file (.json, .yaml or .yml)")
	rootCmd.AddCommand(seedCmd)
}
