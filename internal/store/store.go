// Package store persists the LCA data model the synchronization engine works
// against: nodes, named scalar parameters, and the exchange graph. Everything
// lives in a single SQLite database so state survives process restarts and
// bulk writes can share one transaction with the recalculation pass.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	db_name TEXT NOT NULL,
	code TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	unit TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	UNIQUE(db_name, code)
);
CREATE TABLE IF NOT EXISTS parameters (
	name TEXT PRIMARY KEY,
	amount REAL NOT NULL,
	source_variable TEXT NOT NULL DEFAULT '',
	source_units TEXT NOT NULL DEFAULT '',
	target_units TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS exchanges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_id INTEGER NOT NULL REFERENCES nodes(id),
	target_id INTEGER NOT NULL REFERENCES nodes(id),
	amount REAL NOT NULL,
	formula TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL,
	UNIQUE(parent_id, target_id)
);
CREATE TABLE IF NOT EXISTS exchange_groups (
	exchange_id INTEGER NOT NULL REFERENCES exchanges(id) ON DELETE CASCADE,
	group_name TEXT NOT NULL,
	PRIMARY KEY(exchange_id, group_name)
);
`

// querier is satisfied by both *sql.DB and *sql.Tx so every operation can run
// standalone or inside a caller-owned transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a SQLite-backed store of nodes, parameters, and exchanges.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the store at path. Use ":memory:" for an
// ephemeral store in tests.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, &ValidationError{Reason: "store path is required"}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store %s: %w", path, err)
	}
	// The engine serializes writes behind the evaluation lock; a single
	// connection keeps the in-memory variant coherent as well.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Tx groups store operations into one atomic transaction.
type Tx struct {
	tx *sql.Tx
}

// InTx runs fn inside a single transaction. The transaction is rolled back if
// fn returns an error, leaving the store at its pre-call state.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddNode inserts or updates a node identified by its key and returns its id.
// Used during environment setup and by tests; the engine itself only resolves.
func (s *Store) AddNode(ctx context.Context, node models.Node) (int64, error) {
	if node.Key.Database == "" || node.Key.Code == "" {
		return 0, &ValidationError{Reason: "node key requires database and code"}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO nodes (db_name, code, name, unit, location) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(db_name, code) DO UPDATE SET name=excluded.name, unit=excluded.unit, location=excluded.location`,
		node.Key.Database, node.Key.Code, node.Name, node.Unit, node.Location)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert node %s: %w", node.Key, err)
	}
	return s.Resolve(ctx, node.Key)
}

// Resolve maps a node key to its id, failing with NotFoundError when the key
// does not exist in the data model.
func (s *Store) Resolve(ctx context.Context, key models.NodeKey) (int64, error) {
	return resolveNode(ctx, s.db, key)
}

func resolveNode(ctx context.Context, q querier, key models.NodeKey) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM nodes WHERE db_name = ? AND code = ?`,
		key.Database, key.Code).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, &NotFoundError{Kind: "node", Ref: key.String()}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve node %s: %w", key, err)
	}
	return id, nil
}

// Node fetches a node by id.
func (s *Store) Node(ctx context.Context, id int64) (*models.Node, error) {
	var n models.Node
	n.ID = id
	err := s.db.QueryRowContext(ctx,
		`SELECT db_name, code, name, unit, location FROM nodes WHERE id = ?`, id).
		Scan(&n.Key.Database, &n.Key.Code, &n.Name, &n.Unit, &n.Location)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "node", Ref: fmt.Sprintf("id=%d", id)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load node %d: %w", id, err)
	}
	return &n, nil
}

// Cleanup removes every exchange tagged with group and all engine-managed
// parameters, resetting persisted state between independent runs.
func (s *Store) Cleanup(ctx context.Context, group string) error {
	return s.InTx(ctx, func(tx *Tx) error {
		if _, err := tx.tx.ExecContext(ctx, `
			DELETE FROM exchanges WHERE id IN (
				SELECT exchange_id FROM exchange_groups WHERE group_name = ?)`, group); err != nil {
			return fmt.Errorf("failed to delete exchanges in group %s: %w", group, err)
		}
		if _, err := tx.tx.ExecContext(ctx, `DELETE FROM parameters`); err != nil {
			return fmt.Errorf("failed to delete parameters: %w", err)
		}
		return nil
	})
}

// validScalar rejects the float values that cannot act as exchange amounts or
// parameter values.
func validScalar(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
