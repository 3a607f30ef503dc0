package db

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/Project-Sylos/Folio/internal/utils"
	_ "github.com/marcboeker/go-duckdb"
)

// DB wraps the DuckDB connection holding the history drive of one account
type DB struct {
	conn *sql.DB
	mu   sync.Mutex // Protects all database operations from concurrent access
	now  func() time.Time
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// New opens (or creates) the database at dbPath, initializes and verifies
// the schema and makes sure the account row exists
func New(dbPath string, store types.StoreConfig) (*DB, error) {
	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}

	if err := db.InitializeSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.VerifyTablesExist(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.ensureAccount(store); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// idArg turns a nullable id into a query argument
func idArg(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableID(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return types.IDPtr(n.Int64)
}

// parentFilter returns a WHERE fragment matching col against a nullable id
func parentFilter(col string, id *int64) (string, []any) {
	if id == nil {
		return col + " IS NULL", nil
	}
	return col + " = ?", []any{*id}
}

const folderColumns = `f.id, f.name, f.parent_id, f.created_at,
	(SELECT COUNT(*) FROM folders c WHERE c.parent_id = f.id) +
	(SELECT COUNT(*) FROM histories h WHERE h.folder_id = f.id) AS children_count`

func scanFolder(scan func(dest ...any) error) (*types.FolderNode, error) {
	var (
		f         types.FolderNode
		parent    sql.NullInt64
		createdAt time.Time
	)
	if err := scan(&f.ID, &f.Name, &parent, &createdAt, &f.ChildrenCount); err != nil {
		return nil, err
	}
	f.ParentID = nullableID(parent)
	f.CreatedAt = types.Timestamp{Time: createdAt}
	return &f, nil
}

// ListFolders returns the direct subfolders of parentID (nil = root) by name
func (db *DB) ListFolders(parentID *int64) ([]types.FolderNode, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if parentID != nil {
		if err := folderExists(db.conn, *parentID); err != nil {
			return nil, err
		}
	}

	where, args := parentFilter("f.parent_id", parentID)
	rows, err := db.conn.Query(`SELECT `+folderColumns+` FROM folders f WHERE `+where+` ORDER BY f.name, f.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query folders under %s: %w", types.FormatID(parentID), err)
	}
	defer rows.Close()

	folders := []types.FolderNode{}
	for rows.Next() {
		f, err := scanFolder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folders: %w", err)
	}
	return folders, nil
}

// GetFolder returns one folder
func (db *DB) GetFolder(id int64) (*types.FolderNode, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return getFolder(db.conn, id)
}

func getFolder(q querier, id int64) (*types.FolderNode, error) {
	f, err := scanFolder(q.QueryRow(`SELECT `+folderColumns+` FROM folders f WHERE f.id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("folder %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder %d: %w", id, err)
	}
	return f, nil
}

func folderExists(q querier, id int64) error {
	var n int
	if err := q.QueryRow(`SELECT COUNT(*) FROM folders WHERE id = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("failed to look up folder %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("folder %d: %w", id, ErrNotFound)
	}
	return nil
}

// checkSiblingName fails with ErrConflict when parentID already holds a
// folder called name, other than except
func checkSiblingName(q querier, parentID *int64, name string, except int64) error {
	where, args := parentFilter("parent_id", parentID)
	args = append(args, name, except)
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM folders WHERE `+where+` AND name = ? AND id <> ?`, args...).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to check sibling names: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("folder %q already exists here: %w", name, ErrConflict)
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name must not be empty: %w", ErrInvalidInput)
	}
	return name, nil
}

// CreateFolder creates name under parentID (nil = root)
func (db *DB) CreateFolder(name string, parentID *int64) (*types.FolderNode, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	return createFolder(db.conn, name, parentID, db.now())
}

func createFolder(q querier, name string, parentID *int64, createdAt time.Time) (*types.FolderNode, error) {
	if parentID != nil {
		if err := folderExists(q, *parentID); err != nil {
			return nil, err
		}
	}
	if err := checkSiblingName(q, parentID, name, -1); err != nil {
		return nil, err
	}

	var id int64
	err := q.QueryRow(
		`INSERT INTO folders (name, parent_id, created_at) VALUES (?, ?, ?) RETURNING id`,
		name, idArg(parentID), createdAt.UTC(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert folder %q: %w", name, err)
	}
	return getFolder(q, id)
}

// RenameFolder changes a folder's name, keeping sibling names unique
func (db *DB) RenameFolder(id int64, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	f, err := getFolder(db.conn, id)
	if err != nil {
		return err
	}
	if err := checkSiblingName(db.conn, f.ParentID, name, id); err != nil {
		return err
	}
	if _, err := db.conn.Exec(`UPDATE folders SET name = ? WHERE id = ?`, name, id); err != nil {
		return fmt.Errorf("failed to rename folder %d: %w", id, err)
	}
	return nil
}

// subtreeIDs returns id and the ids of all its descendant folders
func subtreeIDs(q querier, id int64) ([]int64, error) {
	rows, err := q.Query(`
WITH RECURSIVE subtree(id) AS (
	SELECT id FROM folders WHERE id = ?
	UNION ALL
	SELECT f.id FROM folders f JOIN subtree s ON f.parent_id = s.id
)
SELECT id FROM subtree`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query subtree of folder %d: %w", id, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var child int64
		if err := rows.Scan(&child); err != nil {
			return nil, fmt.Errorf("failed to scan subtree id: %w", err)
		}
		ids = append(ids, child)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subtree: %w", err)
	}
	return ids, nil
}

// isDescendant reports whether candidate is folder id itself or lies below it
func isDescendant(q querier, id, candidate int64) (bool, error) {
	ids, err := subtreeIDs(q, id)
	if err != nil {
		return false, err
	}
	for _, sub := range ids {
		if sub == candidate {
			return true, nil
		}
	}
	return false, nil
}

// DeleteFolder deletes a folder with every folder and history below it.
// Storage usage drops by the size of the deleted histories, and the default
// folder is cleared when it was inside the subtree.
func (db *DB) DeleteFolder(id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := folderExists(db.conn, id); err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids, err := subtreeIDs(tx, id)
	if err != nil {
		return err
	}

	var freed int64
	for _, folderID := range ids {
		var size int64
		if err := tx.QueryRow(`SELECT COALESCE(SUM(size), 0) FROM histories WHERE folder_id = ?`, folderID).Scan(&size); err != nil {
			return fmt.Errorf("failed to size folder %d: %w", folderID, err)
		}
		freed += size
		if _, err := tx.Exec(`DELETE FROM histories WHERE folder_id = ?`, folderID); err != nil {
			return fmt.Errorf("failed to delete histories of folder %d: %w", folderID, err)
		}
		if _, err := tx.Exec(`UPDATE account SET default_folder_id = NULL WHERE default_folder_id = ?`, folderID); err != nil {
			return fmt.Errorf("failed to clear default folder: %w", err)
		}
	}
	// Children first so no row ever points at a deleted parent
	for i := len(ids) - 1; i >= 0; i-- {
		if _, err := tx.Exec(`DELETE FROM folders WHERE id = ?`, ids[i]); err != nil {
			return fmt.Errorf("failed to delete folder %d: %w", ids[i], err)
		}
	}
	if err := addStorageUsed(tx, -freed); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MoveFolder reparents a folder under parentID (nil = root). A folder
// cannot move into itself or one of its descendants.
func (db *DB) MoveFolder(id int64, parentID *int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	f, err := getFolder(db.conn, id)
	if err != nil {
		return err
	}
	if parentID != nil {
		if err := folderExists(db.conn, *parentID); err != nil {
			return fmt.Errorf("target %w", err)
		}
		nested, err := isDescendant(db.conn, id, *parentID)
		if err != nil {
			return err
		}
		if nested {
			return fmt.Errorf("cannot move folder %d into itself or its descendant %d: %w", id, *parentID, ErrInvalidMove)
		}
	}
	if err := checkSiblingName(db.conn, parentID, f.Name, id); err != nil {
		return err
	}

	if _, err := db.conn.Exec(`UPDATE folders SET parent_id = ? WHERE id = ?`, idArg(parentID), id); err != nil {
		return fmt.Errorf("failed to move folder %d: %w", id, err)
	}
	return nil
}

// folderPath returns the display path of a folder, e.g. "/Projects/2024"
func folderPath(q querier, id int64) (string, error) {
	var names []string
	seen := map[int64]bool{}
	for cur := types.IDPtr(id); cur != nil; {
		if seen[*cur] {
			return "", fmt.Errorf("folder %d has a cyclic ancestry", id)
		}
		seen[*cur] = true

		var (
			name   string
			parent sql.NullInt64
		)
		err := q.QueryRow(`SELECT name, parent_id FROM folders WHERE id = ?`, *cur).Scan(&name, &parent)
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("folder %d: %w", *cur, ErrNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("failed to walk ancestry of folder %d: %w", id, err)
		}
		names = append([]string{name}, names...)
		cur = nullableID(parent)
	}
	return utils.JoinPath(names...), nil
}
