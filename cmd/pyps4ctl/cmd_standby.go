package main

import (
	"github.com/spf13/cobra"
)

var standbyCmd = &cobra.Command{
	Use:   "standby",
	Short: "Put a logged-in console into standby",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openConsole(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		return c.Standby(ctx)
	},
}

func init() {
	rootCmd.AddCommand(standbyCmd)
}
