package main

import (
	"github.com/spf13/cobra"
)

var startPreviousTitleID string

var startCmd = &cobra.Command{
	Use:   "start <titleid>",
	Short: "Boot a title by its CUSA/title ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := openConsole(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		return c.StartTitle(ctx, args[0], startPreviousTitleID)
	},
}

func init() {
	startCmd.Flags().StringVar(&startPreviousTitleID, "previous-titleid", "", "currently running title, to auto-confirm the close prompt")
	rootCmd.AddCommand(startCmd)
}
