package main

import (
	"log"
	"log/slog"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/config"
	appHTTP "github.com/Mgabr90/mansoura-attendance-system-sub000/internal/handler/http"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "attendance",
	Short:         "Location-gated attendance tracking over chat, with scheduled reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		slog.SetDefault(appHTTP.NewLogger(cfg.SlogLevel(),
			slog.String("app", "attendance"),
			slog.String("env", cfg.App.Env),
		))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, jobsCmd, migrateCmd, seedCmd, tokenCmd, hashPasswordCmd)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatalf("Error executing command: %s", err)
	}
}
