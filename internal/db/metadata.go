//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/pgEdge/pgedge-posload/internal/logging"
)

const metadataTable = "posload_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
// It is not part of the destination schema, so a reload keeps it.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS posload_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// SaveMetadata upserts load metadata. Call it with the load transaction so
// the metadata only changes when the load commits.
func SaveMetadata(ctx context.Context, db DB, metadata map[string]string) error {
	if _, err := db.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		_, err := db.Exec(ctx, `
            INSERT INTO posload_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, metadata[key])
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Int("keys", len(keys)).
		Msg("Saved metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, db DB, key string) (string, error) {
	var value string
	err := db.QueryRow(ctx, `
        SELECT value FROM posload_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, db DB) (map[string]string, error) {
	rows, err := db.Query(ctx, `SELECT key, value FROM posload_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, db DB) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, metadataTable).Scan(&exists)
	return exists, err
}
