package main

import (
	"github.com/spf13/cobra"
)

var wakeupCmd = &cobra.Command{
	Use:   "wakeup",
	Short: "Wake a console from standby",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openConsole(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		return c.Wakeup(ctx)
	},
}

func init() {
	rootCmd.AddCommand(wakeupCmd)
}
