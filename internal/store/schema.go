package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "embed"
)

//go:embed schema.sql
var baseSchema string

// schemaVersion is the registry version this build reads and writes.
const schemaVersion = 2

// upgrades[v] moves a registry from version v to v+1.
var upgrades = map[int]string{
	1: `ALTER TABLE feeds ADD COLUMN post_type TEXT NOT NULL DEFAULT ''`,
}

// migrate creates the version 1 tables when missing, then applies every
// upgrade step between the stored version and schemaVersion in one
// transaction.
func migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, baseSchema); err != nil {
		return fmt.Errorf("create registry tables: %w", err)
	}

	from, err := registryVersion(ctx, tx)
	if err != nil {
		return err
	}
	if from > schemaVersion {
		return fmt.Errorf("registry schema version %d is newer than supported %d", from, schemaVersion)
	}

	for v := from; v < schemaVersion; v++ {
		stmt, ok := upgrades[v]
		if !ok {
			return fmt.Errorf("no upgrade from registry version %d", v)
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("upgrade registry %d -> %d: %w", v, v+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO metadata(key, value) VALUES('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, strconv.Itoa(schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// registryVersion reads the stored version. A registry without one was just
// created from baseSchema and is at version 1.
func registryVersion(ctx context.Context, tx *sql.Tx) (int, error) {
	var raw string
	err := tx.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("bad schema version %q", raw)
	}
	return v, nil
}
