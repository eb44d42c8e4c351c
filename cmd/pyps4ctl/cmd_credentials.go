package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ps4golib/pyps4go"
	"github.com/ps4golib/pyps4go/pkg/store/jsonstore"
)

var (
	credentialsDeviceName string
	credentialsTimeout    time.Duration
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Capture a PSN account credential from the official 2nd Screen app",
	Long: "Listens for the official PS4 2nd Screen mobile app to search for this\n" +
		"host and send its WAKEUP, then saves the account credential it carries\n" +
		"to the default credential store for later use by the other subcommands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fmt.Println("waiting for the 2nd Screen app to connect...")
		cred, err := pyps4go.CaptureCredential(ctx, credentialsDeviceName, credentialsTimeout)
		if err != nil {
			return err
		}
		dir, err := jsonstore.DefaultDir()
		if err != nil {
			return err
		}
		st, err := jsonstore.New(dir)
		if err != nil {
			return err
		}
		if err := st.SaveCredential(ctx, cred); err != nil {
			return err
		}
		fmt.Printf("credential saved to %s\n", dir)
		return nil
	},
}

func init() {
	credentialsCmd.Flags().StringVar(&credentialsDeviceName, "device-name", "pyps4ctl", "device name advertised to the 2nd Screen app")
	credentialsCmd.Flags().DurationVar(&credentialsTimeout, "timeout", 2*time.Minute, "how long to wait for the app")
	rootCmd.AddCommand(credentialsCmd)
}
