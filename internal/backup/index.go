package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS backup_records (
	id            TEXT PRIMARY KEY,
	shop          TEXT NOT NULL,
	theme_id      INTEGER NOT NULL,
	asset_key     TEXT NOT NULL,
	filename      TEXT NOT NULL UNIQUE,
	created_at_ms INTEGER NOT NULL,
	size_bytes    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_backup_records_asset
	ON backup_records (shop, theme_id, asset_key, created_at_ms DESC);
`

// Index is the SQLite record table that makes "latest backup of an asset" a
// keyed lookup instead of a directory scan.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (creating if needed) the index database at path.
func OpenIndex(path string) (*Index, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("backup index: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("backup index: open: %w", err)
	}
	// A single connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("backup index: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("backup index: schema: %w", err)
	}
	return &Index{db: db}, nil
}

func (i *Index) Close() error {
	return i.db.Close()
}

func (i *Index) Insert(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO backup_records (id, shop, theme_id, asset_key, filename, created_at_ms, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := i.db.ExecContext(ctx, query,
		rec.ID,
		rec.Shop,
		rec.ThemeID,
		rec.AssetKey,
		rec.Filename,
		rec.CreatedAt.UnixMilli(),
		rec.Size,
	)
	if err != nil {
		return fmt.Errorf("backup index: insert %s: %w", rec.Filename, err)
	}
	return nil
}

// Latest returns the newest record for the asset, or nil when there is none.
func (i *Index) Latest(ctx context.Context, shop string, themeID int64, assetKey string) (*Record, error) {
	query := `
		SELECT id, shop, theme_id, asset_key, filename, created_at_ms, size_bytes
		FROM backup_records
		WHERE shop = ? AND theme_id = ? AND asset_key = ?
		ORDER BY created_at_ms DESC
		LIMIT 1
	`
	rec, err := scanRecord(i.db.QueryRowContext(ctx, query, shop, themeID, assetKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("backup index: latest: %w", err)
	}
	return rec, nil
}

// List returns every record for the shop's theme, newest first.
func (i *Index) List(ctx context.Context, shop string, themeID int64) ([]Record, error) {
	query := `
		SELECT id, shop, theme_id, asset_key, filename, created_at_ms, size_bytes
		FROM backup_records
		WHERE shop = ? AND theme_id = ?
		ORDER BY created_at_ms DESC, asset_key ASC
	`
	rows, err := i.db.QueryContext(ctx, query, shop, themeID)
	if err != nil {
		return nil, fmt.Errorf("backup index: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var createdMs int64
	err := row.Scan(
		&rec.ID,
		&rec.Shop,
		&rec.ThemeID,
		&rec.AssetKey,
		&rec.Filename,
		&createdMs,
		&rec.Size,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &rec, nil
}
