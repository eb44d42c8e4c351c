package main

import (
	"context"
	"fmt"

	"github.com/ps4golib/pyps4go"
	"github.com/ps4golib/pyps4go/pkg/store/jsonstore"
)

// resolveCredential returns flagCredential if set, else falls back to the
// default JSON credential store, matching the original CLI's behavior of
// reusing a previously captured/linked credential.
func resolveCredential(ctx context.Context) (string, error) {
	if flagCredential != "" {
		return flagCredential, nil
	}
	dir, err := jsonstore.DefaultDir()
	if err != nil {
		return "", err
	}
	st, err := jsonstore.New(dir)
	if err != nil {
		return "", err
	}
	cred, ok, err := st.LoadCredential(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no credential given with -c and none found in %s; run \"pyps4ctl credentials\" first", dir)
	}
	return cred, nil
}

func requireIPAddress() error {
	if flagIPAddress == "" {
		return fmt.Errorf("-i/--ip-address is required")
	}
	return nil
}

func openConsole(ctx context.Context) (*pyps4go.Console, error) {
	if err := requireIPAddress(); err != nil {
		return nil, err
	}
	cred, err := resolveCredential(ctx)
	if err != nil {
		return nil, err
	}
	return pyps4go.NewConsole(flagIPAddress, cred, pyps4go.WithPort(flagPort))
}
