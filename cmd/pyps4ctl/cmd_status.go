package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ps4golib/pyps4go"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a single console's current status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireIPAddress(); err != nil {
			return err
		}
		status, ok, err := pyps4go.GetStatus(cmd.Context(), flagIPAddress)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no response")
			return nil
		}
		fmt.Printf("status: %s\n", status.Status)
		fmt.Printf("host-name: %s\n", status.HostName)
		fmt.Printf("host-id: %s\n", status.HostID)
		fmt.Printf("system-version: %s\n", status.SystemVersion)
		if status.RunningAppTitleID != "" {
			fmt.Printf("running: %s (%s)\n", status.RunningAppName, status.RunningAppTitleID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
