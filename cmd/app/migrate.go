package app

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stockbook/inventory-api/internal/db/migrate"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		runner, done, err := newRunner()
		if err != nil {
			return err
		}
		defer done()

		applied, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		printNames(cmd, "Migrated", applied)

		return nil
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		runner, done, err := newRunner()
		if err != nil {
			return err
		}
		defer done()

		reverted, err := runner.Rollback(cmd.Context())
		if err != nil {
			return err
		}
		printNames(cmd, "Rolled back", reverted)

		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		runner, done, err := newRunner()
		if err != nil {
			return err
		}
		defer done()

		statuses, err := runner.Status(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
		for _, st := range statuses {
			batch := "-"
			if st.Ran {
				batch = fmt.Sprint(st.Batch)
			}
			fmt.Fprintf(w, "%s\t%t\t%s\n", st.Name, st.Ran, batch)
		}

		return w.Flush()
	},
}

func newRunner() (*migrate.Runner, func(), error) {
	conf, err := boot(configPath)
	if err != nil {
		return nil, nil, err
	}

	database, err := openDB(conf)
	if err != nil {
		return nil, nil, err
	}

	runner, err := migrate.NewRunner(database, dao.Migrations())
	if err != nil {
		closeDB(database)
		return nil, nil, fmt.Errorf("migrate.NewRunner -> %w", err)
	}

	return runner, func() { closeDB(database) }, nil
}

func printNames(cmd *cobra.Command, verb string, names []string) {
	if len(names) == 0 {
		cmd.Println("Nothing to do.")
		return
	}
	for _, name := range names {
		cmd.Printf("%s: %s\n", verb, name)
	}
}
