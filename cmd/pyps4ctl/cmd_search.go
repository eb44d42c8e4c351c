package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ps4golib/pyps4go"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Sweep the LAN for PS4 consoles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		host := flagIPAddress
		if host == "" {
			host = "255.255.255.255"
		}
		statuses, err := pyps4go.Discover(ctx, host, 3*time.Second)
		if err != nil {
			return err
		}
		if len(statuses) == 0 {
			fmt.Println("no consoles found")
			return nil
		}
		for _, s := range statuses {
			fmt.Printf("%s\t%s\t%s\t%s\n", s.HostIP, s.HostName, s.Status, s.SystemVersion)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
