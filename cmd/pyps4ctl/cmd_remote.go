package main

import (
	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:   "remote <button>",
	Short: "Send a single remote-control button press",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openConsole(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		return c.RemoteControl(ctx, args[0], 0)
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
}
