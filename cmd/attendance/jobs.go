package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and run scheduled jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs and their schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a.scheduler.Jobs())
	},
}

var jobsTriggerCmd = &cobra.Command{
	Use:   "trigger <job>",
	Short: "Run one job now, through the same wrapper as scheduled runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.shutdown(cmd.Context())

		ok, err := a.scheduler.TriggerManually(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		info, err := a.scheduler.Job(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("job %s failed after %s: %s", info.Name, info.LastDuration, info.LastError)
		}
		fmt.Printf("job %s completed in %s\n", info.Name, info.LastDuration)
		return nil
	},
}

func init() {
	jobsCmd.AddCommand(jobsListCmd, jobsTriggerCmd)
}
