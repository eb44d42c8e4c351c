// Package store defines the persistence interfaces spec.md §6 enumerates
// as external glue: a captured credential, a registry of discovered
// consoles, and a cache of title-id-to-name lookups. None of the core
// protocol packages (pkg/frame, pkg/ddp, pkg/credential, pkg/discovery,
// pkg/session, pkg/console) import this package; it exists purely for the
// CLI's persistence needs.
package store

import "context"

// ConsoleRecord is a discovered console's last-known identity, the
// equivalent of one entry in the original's .ps4_info.json.
type ConsoleRecord struct {
	Host          string
	HostID        string
	HostName      string
	Credential    string
	DeviceName    string
	SystemVersion string
}

// CredentialStore persists the single captured PSN credential, mirroring
// .ps4_creds.json.
type CredentialStore interface {
	SaveCredential(ctx context.Context, credential string) error
	LoadCredential(ctx context.Context) (string, bool, error)
}

// ConsoleRegistry persists known consoles, mirroring .ps4_info.json.
type ConsoleRegistry interface {
	SaveConsole(ctx context.Context, rec ConsoleRecord) error
	LoadConsoles(ctx context.Context) ([]ConsoleRecord, error)
	DeleteConsole(ctx context.Context, host string) error
}

// GameCache persists a title-id to display-name lookup cache, mirroring
// .ps4_games.json.
type GameCache interface {
	SaveTitleName(ctx context.Context, titleID, name string) error
	LookupTitleName(ctx context.Context, titleID string) (string, bool, error)
}
