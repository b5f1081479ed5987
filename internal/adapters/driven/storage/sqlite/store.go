package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/devpulse-labs/pulse-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pulse/data/pulse.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pulse", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pulse.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// SignalStore returns a SignalStore interface backed by this store.
func (s *Store) SignalStore() driven.SignalStore {
	return &signalStore{store: s}
}

// DedupStore returns a DedupStore interface backed by this store.
func (s *Store) DedupStore() driven.DedupStore {
	return &dedupStore{store: s}
}

// IntelligenceStore returns an IntelligenceStore interface backed by this store.
func (s *Store) IntelligenceStore() driven.IntelligenceStore {
	return &intelligenceStore{store: s}
}

// TraceStore returns a TraceStore interface backed by this store.
func (s *Store) TraceStore() driven.TraceStore {
	return &traceStore{store: s}
}

// FeedbackStore returns a FeedbackStore interface backed by this store.
func (s *Store) FeedbackStore() driven.FeedbackStore {
	return &feedbackStore{store: s}
}

// VectorIndex returns a VectorIndex interface backed by this store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Signal Store ====================

// signalStore implements driven.SignalStore.
type signalStore struct {
	store *Store
}

var _ driven.SignalStore = (*signalStore)(nil)

// Insert writes a signal, or bumps the stored version when the content
// hash changed. The single upsert statement is the atomic arbiter for
// concurrent ingestions of the same (source, external_id): exactly one
// observes Admitted.
func (s *signalStore) Insert(ctx context.Context, signal *domain.Signal) (domain.AdmitDecision, error) {
	payloadJSON, err := json.Marshal(signal.Payload)
	if err != nil {
		return 0, fmt.Errorf("marshalling payload: %w", err)
	}

	if signal.IngestedAt.IsZero() {
		signal.IngestedAt = time.Now().UTC()
	}
	newID := uuid.NewString()

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO signals (id, source, external_id, title, content, url, payload, content_hash, version, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(source, external_id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			url = excluded.url,
			payload = excluded.payload,
			content_hash = excluded.content_hash,
			version = signals.version + 1,
			ingested_at = excluded.ingested_at
		WHERE signals.content_hash <> excluded.content_hash
		RETURNING id, version
	`, newID, signal.Source, signal.ExternalID, signal.Title, signal.Content,
		signal.URL, string(payloadJSON), signal.ContentHash, signal.IngestedAt)

	var storedID string
	var storedVersion int
	err = row.Scan(&storedID, &storedVersion)
	if errors.Is(err, sql.ErrNoRows) {
		// The conflict clause declined the update: an identical version
		// is already stored.
		existing, gerr := s.GetByExternalID(ctx, signal.Source, signal.ExternalID)
		if gerr != nil {
			return 0, gerr
		}
		*signal = *existing
		return domain.DuplicateUnchanged, nil
	}
	if err != nil {
		return 0, fmt.Errorf("inserting signal: %w", errors.Join(domain.ErrPersistenceUnavailable, err))
	}

	signal.ID = storedID
	signal.Version = storedVersion
	if storedID == newID {
		return domain.Admitted, nil
	}
	return domain.DuplicateChanged, nil
}

// Get retrieves a signal by ID.
func (s *signalStore) Get(ctx context.Context, id string) (*domain.Signal, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source, external_id, title, content, url, payload, content_hash, version, ingested_at
		FROM signals WHERE id = ?
	`, id)
	return scanSignal(row)
}

// GetByExternalID retrieves a signal by its natural key.
func (s *signalStore) GetByExternalID(ctx context.Context, source domain.SourceKind, externalID string) (*domain.Signal, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source, external_id, title, content, url, payload, content_hash, version, ingested_at
		FROM signals WHERE source = ? AND external_id = ?
	`, source, externalID)
	return scanSignal(row)
}

// List returns recent signals, newest first.
func (s *signalStore) List(ctx context.Context, limit int) ([]domain.Signal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source, external_id, title, content, url, payload, content_hash, version, ingested_at
		FROM signals ORDER BY ingested_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying signals: %w", err)
	}
	defer rows.Close()

	var signals []domain.Signal //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sig domain.Signal
		var payloadJSON string
		var ingestedAt sql.NullTime
		if err := rows.Scan(&sig.ID, &sig.Source, &sig.ExternalID, &sig.Title, &sig.Content,
			&sig.URL, &payloadJSON, &sig.ContentHash, &sig.Version, &ingestedAt); err != nil {
			return nil, fmt.Errorf("scanning signal: %w", err)
		}
		if err := json.Unmarshal([]byte(payloadJSON), &sig.Payload); err != nil {
			return nil, fmt.Errorf("unmarshaling payload: %w", err)
		}
		if ingestedAt.Valid {
			sig.IngestedAt = ingestedAt.Time
		}
		signals = append(signals, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating signals: %w", err)
	}
	return signals, nil
}

// scanSignal scans a single signal row.
func scanSignal(row *sql.Row) (*domain.Signal, error) {
	var sig domain.Signal
	var payloadJSON string
	var ingestedAt sql.NullTime
	if err := row.Scan(&sig.ID, &sig.Source, &sig.ExternalID, &sig.Title, &sig.Content,
		&sig.URL, &payloadJSON, &sig.ContentHash, &sig.Version, &ingestedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning signal: %w", err)
	}
	if err := json.Unmarshal([]byte(payloadJSON), &sig.Payload); err != nil {
		return nil, fmt.Errorf("unmarshaling payload: %w", err)
	}
	if ingestedAt.Valid {
		sig.IngestedAt = ingestedAt.Time
	}
	return &sig, nil
}

// ==================== Dedup Store ====================

// dedupStore implements driven.DedupStore.
type dedupStore struct {
	store *Store
}

var _ driven.DedupStore = (*dedupStore)(nil)

// Admit reports whether a signal version has been seen before.
func (s *dedupStore) Admit(ctx context.Context, source domain.SourceKind, externalID, contentHash string) (domain.AdmitDecision, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT content_hash FROM signals WHERE source = ? AND external_id = ?",
		source, externalID)

	var storedHash string
	err := row.Scan(&storedHash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Admitted, nil
	}
	if err != nil {
		return 0, fmt.Errorf("dedup lookup: %w", errors.Join(domain.ErrDedupUnavailable, err))
	}

	if storedHash == contentHash {
		return domain.DuplicateUnchanged, nil
	}
	return domain.DuplicateChanged, nil
}

// ==================== Helpers ====================

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
