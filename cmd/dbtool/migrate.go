package main

import (
	"github.com/spf13/cobra"

	"foodcart-routing-service/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables in the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.Migrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
