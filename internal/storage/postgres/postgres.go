package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store implements types.ObjectStore using a PostgreSQL table keyed by
// (bucket, path).
type Store struct {
	db     *sql.DB
	table  string // Table name for storing objects
	bucket string // "Bucket" name (namespace)
}

// NewStore opens a connection and creates the table if needed.
func NewStore(ctx context.Context, connStr, table, bucket string) (*Store, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	store := &Store{
		db:     db,
		table:  table,
		bucket: bucket,
	}

	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (p *Store) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			bucket VARCHAR(255) NOT NULL,
			path VARCHAR(4096) NOT NULL,
			data BYTEA,
			size BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			PRIMARY KEY (bucket, path)
		);
		CREATE INDEX IF NOT EXISTS idx_%s_prefix ON %s(path text_pattern_ops);
	`, p.table, p.table, p.table)

	_, err := p.db.ExecContext(ctx, query)
	return err
}

// escapeLike makes prefix match literally inside a LIKE pattern.
func escapeLike(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix)
}

// Exists checks if an object exists
func (p *Store) Exists(ctx context.Context, path string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE path = $1 AND bucket = $2 LIMIT 1", p.table)
	var exists int
	err := p.db.QueryRowContext(ctx, query, path, p.bucket).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	return true, nil
}

// List lists objects with the given prefix
func (p *Store) List(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf(`SELECT path FROM %s WHERE bucket = $1 AND path LIKE $2 ESCAPE '\' ORDER BY path COLLATE "C"`, p.table)
	rows, err := p.db.QueryContext(ctx, query, p.bucket, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// Copy duplicates the row at src under dst, replacing any existing dst.
func (p *Store) Copy(ctx context.Context, src, dst string) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (bucket, path, data, size, updated_at)
		SELECT bucket, $1, data, size, NOW() FROM %[1]s WHERE bucket = $2 AND path = $3
		ON CONFLICT (bucket, path)
		DO UPDATE SET
			data = EXCLUDED.data,
			size = EXCLUDED.size,
			updated_at = NOW()
	`, p.table)

	result, err := p.db.ExecContext(ctx, query, dst, p.bucket, src)
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("copy of %s affected no rows", src)
	}
	return nil
}

// Delete deletes an object. Missing rows are not an error.
func (p *Store) Delete(ctx context.Context, path string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE path = $1 AND bucket = $2", p.table)
	if _, err := p.db.ExecContext(ctx, query, path, p.bucket); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// Put writes object data
func (p *Store) Put(ctx context.Context, path string, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (bucket, path, data, size, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (bucket, path)
		DO UPDATE SET
			data = EXCLUDED.data,
			size = EXCLUDED.size,
			updated_at = NOW()
	`, p.table)

	if _, err := p.db.ExecContext(ctx, query, p.bucket, path, data, len(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Close closes the database connection
func (p *Store) Close() error {
	return p.db.Close()
}
