package main

import (
	"errors"
	"fmt"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/config"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/fixtures"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

type SeedOptions struct {
	Count       int
	FirstChatID int64
}

var sopts SeedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with fake employees for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver != config.StoreDriverPostgres {
			return errors.New("seed requires STORE_DRIVER=postgres")
		}

		db, err := database.NewPostgreSQLDB(cmd.Context(), cfg.DatabaseURL(), database.PoolOptions{MaxConns: 2, MinConns: 1})
		if err != nil {
			return err
		}
		defer db.Close()

		seeded, err := fixtures.SeedEmployees(cmd.Context(), postgresql.NewEmployeeRepository(db), sopts.Count, sopts.FirstChatID)
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d employees\n", len(seeded))
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVarP(&sopts.Count, "count", "c", 20, "Number of employees to create")
	seedCmd.Flags().Int64VarP(&sopts.FirstChatID, "first-chat-id", "f", 900000, "Chat ID of the first seeded employee")
}
