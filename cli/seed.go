package cli

import (
	"earthborne-tracker/catalog"
	"earthborne-tracker/database"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate the schema and load the card library and storylines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Postgres(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		return catalog.Seed(db, logger)
	},
}
