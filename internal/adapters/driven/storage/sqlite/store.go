package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/tutorforge/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.KnowledgeRepository = (*Store)(nil)

// dbFileName is the database file inside the data directory.
const dbFileName = "knowledge.db"

// Store is the SQLite knowledge repository.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in dataDir.
// If dataDir is empty, defaults to ~/.tutorforge.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tutorforge")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL lets concurrent runs read while the indexer writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_knowledge.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert stores records, replacing any with the same id, in one transaction.
func (s *Store) Upsert(ctx context.Context, records []driven.KnowledgeRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", domain.ErrResourceWrite, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO knowledge_items (id, text, item_type, metadata, vector)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			item_type = excluded.item_type,
			metadata = excluded.metadata,
			vector = excluded.vector,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare: %w", domain.ErrResourceWrite, err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.Item.ID == "" {
			return fmt.Errorf("%w: knowledge item without id", domain.ErrInvalidArgument)
		}
		metadataJSON, err := json.Marshal(r.Item.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.Item.ID, r.Item.Text, r.Item.Metadata[domain.MetaType],
			string(metadataJSON), float32SliceToBytes(r.Vector),
		); err != nil {
			return fmt.Errorf("%w: upsert %s: %w", domain.ErrResourceWrite, r.Item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrResourceWrite, err)
	}
	return nil
}

// Scan calls fn for every record in insertion order until fn returns false.
func (s *Store) Scan(ctx context.Context, fn func(driven.KnowledgeRecord) bool) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, metadata, vector FROM knowledge_items ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("querying knowledge items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec          driven.KnowledgeRecord
			metadataJSON string
			vector       []byte
		)
		if err := rows.Scan(&rec.Item.ID, &rec.Item.Text, &metadataJSON, &vector); err != nil {
			return fmt.Errorf("scanning knowledge item: %w", err)
		}
		if metadataJSON != "" && metadataJSON != "null" {
			if err := json.Unmarshal([]byte(metadataJSON), &rec.Item.Metadata); err != nil {
				return fmt.Errorf("unmarshalling metadata of %s: %w", rec.Item.ID, err)
			}
		}
		rec.Vector = bytesToFloat32Slice(vector)
		if !fn(rec) {
			break
		}
	}
	return rows.Err()
}

// Count returns the number of stored items.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting knowledge items: %w", err)
	}
	return n, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
