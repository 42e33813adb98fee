package main

import (
	"errors"
	"fmt"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/config"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the PostgreSQL tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver != config.StoreDriverPostgres {
			return errors.New("migrate requires STORE_DRIVER=postgres")
		}

		db, err := database.NewPostgreSQLDB(cmd.Context(), cfg.DatabaseURL(), database.PoolOptions{MaxConns: 2, MinConns: 1})
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("schema is up to date")
		return nil
	},
}
