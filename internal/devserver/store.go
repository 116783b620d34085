package devserver

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/backoffice/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrNotFound is returned for an unknown record id.
	ErrNotFound = errors.New("record not found")
	// ErrStaleVersion is returned when an update names a version that is no
	// longer current.
	ErrStaleVersion = errors.New("stale version")
)

// Reserved keys are owned by the store and never taken from a request body.
const (
	keyID      = "id"
	keyVersion = "version"
)

// Store keeps records of every collection as JSON documents in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = "file:" + path
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info(log.CatDevServer, "database ready", "path", path)
	return &Store{db: db, now: time.Now}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	// m.Close would close db as well; the store owns it.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Document is one stored record as served over HTTP.
type Document map[string]any

func (s *Store) scan(row interface{ Scan(...any) error }) (Document, error) {
	var (
		id, version int64
		data        string
	)
	if err := row.Scan(&id, &version, &data); err != nil {
		return nil, err
	}
	doc, err := decodeDocument([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", id, err)
	}
	doc[keyID] = json.Number(strconv.FormatInt(id, 10))
	doc[keyVersion] = json.Number(strconv.FormatInt(version, 10))
	return doc, nil
}

func decodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

func encodeDocument(doc Document) (string, error) {
	clean := make(Document, len(doc))
	for k, v := range doc {
		if k == keyID || k == keyVersion {
			continue
		}
		clean[k] = v
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(b), nil
}

// List returns every record of collection in id order.
func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version, data FROM records WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	docs := []Document{}
	for rows.Next() {
		doc, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Get returns one record.
func (s *Store) Get(ctx context.Context, collection string, id int64) (Document, error) {
	doc, err := s.scan(s.db.QueryRowContext(ctx,
		`SELECT id, version, data FROM records WHERE collection = ? AND id = ?`, collection, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%d: %w", collection, id, err)
	}
	return doc, nil
}

// Create inserts a record and returns it with its id and version.
func (s *Store) Create(ctx context.Context, collection string, doc Document) (Document, error) {
	data, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records (collection, data, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		collection, data, now, now)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", collection, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", collection, err)
	}
	return s.Get(ctx, collection, id)
}

// Update applies patch to a record. Keys present in patch replace stored
// values (null included); absent keys are kept. When replace is set the
// stored document is replaced instead. A "version" in patch must match the
// stored version or ErrStaleVersion is returned.
func (s *Store) Update(ctx context.Context, collection string, id int64, patch Document, replace bool) (Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update %s/%d: %w", collection, id, err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.scan(tx.QueryRowContext(ctx,
		`SELECT id, version, data FROM records WHERE collection = ? AND id = ?`, collection, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s/%d: %w", collection, id, err)
	}

	if want, ok := patch[keyVersion]; ok && want != nil {
		if fmt.Sprint(want) != fmt.Sprint(current[keyVersion]) {
			return nil, ErrStaleVersion
		}
	}

	next := current
	if replace {
		next = Document{}
	}
	for k, v := range patch {
		next[k] = v
	}
	data, err := encodeDocument(next)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET data = ?, version = version + 1, updated_at = ? WHERE collection = ? AND id = ?`,
		data, s.now().Unix(), collection, id); err != nil {
		return nil, fmt.Errorf("update %s/%d: %w", collection, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update %s/%d: %w", collection, id, err)
	}
	return s.Get(ctx, collection, id)
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, collection string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%d: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%d: %w", collection, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
