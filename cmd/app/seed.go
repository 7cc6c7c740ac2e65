package app

import (
	"github.com/spf13/cobra"

	"github.com/stockbook/inventory-api/internal/db/seed"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

var admin seed.Admin

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and a demo catalogue on an empty database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf, err := boot(configPath)
		if err != nil {
			return err
		}

		database, err := openDB(conf)
		if err != nil {
			return err
		}
		defer closeDB(database)

		if err = dao.InitTables(cmd.Context(), database); err != nil {
			return err
		}

		return seed.RunAll(cmd.Context(), seed.Seeders(database, admin), func(name string, seeded bool) {
			if seeded {
				cmd.Printf("Seeded: %s\n", name)
				return
			}
			cmd.Printf("Skipped: %s (not empty)\n", name)
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&admin.Name, "admin-name", "Administrator", "name of the seeded admin")
	seedCmd.Flags().StringVar(&admin.Email, "admin-email", "admin@example.com", "email of the seeded admin")
	seedCmd.Flags().StringVar(&admin.Password, "admin-password", "admin12345", "password of the seeded admin")
}
