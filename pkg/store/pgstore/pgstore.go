// Package pgstore is an optional pkg/store.ConsoleRegistry backend,
// adapted from shadowmesh's pkg/persistence/postgres.go PostgresStore (same
// connection-string assembly, InitSchema-on-connect, and
// INSERT ... ON CONFLICT upsert shape, repointed from the peer table to the
// discovered-console registry).
package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ps4golib/pyps4go/pkg/store"
)

// Config mirrors shadowmesh's persistence.Config.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Store is a Postgres-backed store.ConsoleRegistry.
type Store struct {
	db *sql.DB
}

// New connects, pings, and initializes the schema, exactly as shadowmesh's
// NewPostgresStore does.
func New(cfg Config) (*Store, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("pgstore: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("pgstore: init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS consoles (
		host VARCHAR(45) PRIMARY KEY,
		host_id VARCHAR(64) NOT NULL,
		host_name VARCHAR(255) NOT NULL,
		credential VARCHAR(64) NOT NULL,
		device_name VARCHAR(255) NOT NULL,
		system_version VARCHAR(32) NOT NULL,
		updated_at TIMESTAMP DEFAULT NOW()
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveConsole implements store.ConsoleRegistry.
func (s *Store) SaveConsole(ctx context.Context, rec store.ConsoleRecord) error {
	const query = `
		INSERT INTO consoles (host, host_id, host_name, credential, device_name, system_version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (host)
		DO UPDATE SET
			host_id = EXCLUDED.host_id,
			host_name = EXCLUDED.host_name,
			credential = EXCLUDED.credential,
			device_name = EXCLUDED.device_name,
			system_version = EXCLUDED.system_version,
			updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.Host, rec.HostID, rec.HostName, rec.Credential, rec.DeviceName, rec.SystemVersion)
	return err
}

// LoadConsoles implements store.ConsoleRegistry.
func (s *Store) LoadConsoles(ctx context.Context) ([]store.ConsoleRecord, error) {
	const query = `
		SELECT host, host_id, host_name, credential, device_name, system_version
		FROM consoles
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []store.ConsoleRecord
	for rows.Next() {
		var rec store.ConsoleRecord
		if err := rows.Scan(&rec.Host, &rec.HostID, &rec.HostName, &rec.Credential, &rec.DeviceName, &rec.SystemVersion); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeleteConsole implements store.ConsoleRegistry.
func (s *Store) DeleteConsole(ctx context.Context, host string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM consoles WHERE host = $1`, host)
	return err
}

// Close closes the underlying database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
