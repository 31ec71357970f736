package persist

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// stmtDef names one prepared statement by purpose, mirroring the
// teacher's stmtDef/prepareAll helper in internal/sync/state.go.
type stmtDef struct {
	name string
	sql  string
}

var adapterStatements = []stmtDef{
	{name: "upsert", sql: `
		INSERT INTO type_set_snapshot (type_set_name, version_seq, content_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(type_set_name) DO UPDATE SET
			version_seq = excluded.version_seq,
			content_json = excluded.content_json,
			updated_at = excluded.updated_at`},
	{name: "select", sql: `SELECT version_seq, content_json FROM type_set_snapshot WHERE type_set_name = ?`},
}

// SQLiteAdapter is the reference StorageAdapter implementation (spec §1,
// §6). Grounded on the teacher's SQLiteStore (internal/sync/state.go):
// embedded goose migrations, WAL pragmas, and a prepareAll-style statement
// cache, repointed at whole-type-set JSON blobs instead of per-item rows
// since the persisted unit here is a FileContents, not a filesystem item.
type SQLiteAdapter struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// OpenSQLiteAdapter opens (creating if absent) a SQLite database at path,
// applies WAL pragmas, runs goose migrations, and prepares statements.
func OpenSQLiteAdapter(ctx context.Context, path string) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: opening sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_size_limit=67108864",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("persist: applying pragma %q: %w", p, err)
		}
	}

	goose.SetBaseFS(migrationFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: running migrations: %w", err)
	}

	a := &SQLiteAdapter{db: db, stmts: make(map[string]*sql.Stmt)}
	if err := a.prepareAll(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return a, nil
}

func (a *SQLiteAdapter) prepareAll(ctx context.Context) error {
	for _, def := range adapterStatements {
		stmt, err := a.db.PrepareContext(ctx, def.sql)
		if err != nil {
			return fmt.Errorf("persist: preparing statement %q: %w", def.name, err)
		}
		a.stmts[def.name] = stmt
	}

	return nil
}

// Close releases prepared statements and the underlying database handle.
func (a *SQLiteAdapter) Close() error {
	for _, stmt := range a.stmts {
		_ = stmt.Close()
	}

	return a.db.Close()
}

// Load implements StorageAdapter.
func (a *SQLiteAdapter) Load(ctx context.Context, typeSetName string) (FileContents, error) {
	row := a.stmts["select"].QueryRowContext(ctx, typeSetName)

	var (
		seq  uint64
		blob string
	)

	if err := row.Scan(&seq, &blob); err != nil {
		if err == sql.ErrNoRows {
			return FileContents{}, nil
		}
		return FileContents{}, fmt.Errorf("persist: loading %q: %w", typeSetName, err)
	}

	var fc FileContents
	if err := json.Unmarshal([]byte(blob), &fc); err != nil {
		return FileContents{}, fmt.Errorf("persist: decoding %q: %w", typeSetName, err)
	}

	fc.PersistedVersionSeq = seq

	return fc, nil
}

// Save implements StorageAdapter.
func (a *SQLiteAdapter) Save(ctx context.Context, typeSetName string, content FileContents) error {
	normalizeOrder(&content)

	blob, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("persist: encoding %q: %w", typeSetName, err)
	}

	_, err = a.stmts["upsert"].ExecContext(ctx, typeSetName, content.PersistedVersionSeq, string(blob), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("persist: saving %q: %w", typeSetName, err)
	}

	return nil
}

var _ StorageAdapter = (*SQLiteAdapter)(nil)
