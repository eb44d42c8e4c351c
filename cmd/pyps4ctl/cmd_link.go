package main

import (
	"fmt"
	"unicode"

	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <pin>",
	Short: "Pair with a console using the 8-digit PIN it displays",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pin := args[0]
		for _, r := range pin {
			if !unicode.IsDigit(r) {
				return fmt.Errorf("pin must be all digits, got %q", pin)
			}
		}
		ctx := cmd.Context()
		c, err := openConsole(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.Login(ctx, pin); err != nil {
			return err
		}
		fmt.Println("linked")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
}
