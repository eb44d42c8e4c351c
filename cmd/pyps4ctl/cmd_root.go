package main

import (
	"github.com/spf13/cobra"
)

// Persistent flags shared by every subcommand (spec.md §6).
var (
	flagIPAddress  string
	flagCredential string
	flagPort       int
)

var rootCmd = &cobra.Command{
	Use:           "pyps4ctl",
	Short:         "Control a PS4 console over the 2nd Screen remote protocol",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagIPAddress, "ip-address", "i", "", "console IPv4 address")
	rootCmd.PersistentFlags().StringVarP(&flagCredential, "credentials", "c", "", "64-char PSN account credential")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", 997, "TCP control port")
}
