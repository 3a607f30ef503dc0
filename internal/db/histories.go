package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Project-Sylos/Folio/internal/generator"
	"github.com/Project-Sylos/Folio/internal/types"
)

const historyColumns = `id, folder_id, name, calculation_type, input, output, timestamp, size`

func scanHistory(scan func(dest ...any) error) (*types.HistoryItem, error) {
	var (
		h      types.HistoryItem
		folder sql.NullInt64
		name   sql.NullString
		ts     time.Time
	)
	if err := scan(&h.ID, &folder, &name, &h.CalculationType, &h.Input, &h.Output, &ts, &h.Size); err != nil {
		return nil, err
	}
	h.FolderID = nullableID(folder)
	if name.Valid {
		h.Name = &name.String
	}
	h.Timestamp = types.Timestamp{Time: ts}
	return &h, nil
}

func queryHistories(q querier, query string, args ...any) ([]types.HistoryItem, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query histories: %w", err)
	}
	defer rows.Close()

	histories := []types.HistoryItem{}
	for rows.Next() {
		h, err := scanHistory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		histories = append(histories, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating histories: %w", err)
	}
	return histories, nil
}

// ListHistories returns the histories of a folder, newest first
func (db *DB) ListHistories(folderID int64) ([]types.HistoryItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := folderExists(db.conn, folderID); err != nil {
		return nil, err
	}
	return queryHistories(db.conn,
		`SELECT `+historyColumns+` FROM histories WHERE folder_id = ? ORDER BY timestamp DESC, id DESC`, folderID)
}

// GetHistory returns one history
func (db *DB) GetHistory(id int64) (*types.HistoryItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return getHistory(db.conn, id)
}

func getHistory(q querier, id int64) (*types.HistoryItem, error) {
	h, err := scanHistory(q.QueryRow(`SELECT `+historyColumns+` FROM histories WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("history %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history %d: %w", id, err)
	}
	return h, nil
}

// SearchHistories matches name as a case-insensitive substring of the
// history name, or of the calculation type for unnamed histories
func (db *DB) SearchHistories(name string) ([]types.HistoryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []types.HistoryItem{}, nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	pattern := "%" + escapeLike(name) + "%"
	return queryHistories(db.conn, `
SELECT `+historyColumns+` FROM histories
WHERE COALESCE(name, calculation_type) ILIKE ? ESCAPE '\'
ORDER BY timestamp DESC, id DESC`, pattern)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// InsertHistory stores a calculation record. A nil FolderID files it under
// the account's default folder, if one is set. Size is computed from the
// payloads and added to the account's usage.
func (db *DB) InsertHistory(h types.HistoryItem) (*types.HistoryItem, error) {
	if strings.TrimSpace(h.CalculationType) == "" {
		return nil, fmt.Errorf("calculation_type must not be empty: %w", ErrInvalidInput)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if h.FolderID == nil {
		acct, err := getAccount(tx)
		if err != nil {
			return nil, err
		}
		h.FolderID = acct.DefaultFolderID
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = types.Timestamp{Time: db.now()}
	}
	id, err := insertHistory(tx, h)
	if err != nil {
		return nil, err
	}
	out, err := getHistory(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return out, nil
}

func insertHistory(q querier, h types.HistoryItem) (int64, error) {
	if h.FolderID != nil {
		if err := folderExists(q, *h.FolderID); err != nil {
			return 0, err
		}
	}
	var name any
	if h.Name != nil && strings.TrimSpace(*h.Name) != "" {
		name = strings.TrimSpace(*h.Name)
	}
	size := generator.HistorySize(h.Input, h.Output)

	var id int64
	err := q.QueryRow(`
INSERT INTO histories (folder_id, name, calculation_type, input, output, timestamp, size)
VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		idArg(h.FolderID), name, h.CalculationType, h.Input, h.Output, h.Timestamp.UTC(), size,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history: %w", err)
	}
	if err := addStorageUsed(q, size); err != nil {
		return 0, err
	}
	return id, nil
}

// RenameHistory sets a history's display name
func (db *DB) RenameHistory(id int64, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := getHistory(db.conn, id); err != nil {
		return err
	}
	if _, err := db.conn.Exec(`UPDATE histories SET name = ? WHERE id = ?`, name, id); err != nil {
		return fmt.Errorf("failed to rename history %d: %w", id, err)
	}
	return nil
}

// MoveHistory files a history under folderID (nil = root)
func (db *DB) MoveHistory(id int64, folderID *int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := getHistory(db.conn, id); err != nil {
		return err
	}
	if folderID != nil {
		if err := folderExists(db.conn, *folderID); err != nil {
			return fmt.Errorf("target %w", err)
		}
	}
	if _, err := db.conn.Exec(`UPDATE histories SET folder_id = ? WHERE id = ?`, idArg(folderID), id); err != nil {
		return fmt.Errorf("failed to move history %d: %w", id, err)
	}
	return nil
}

// DeleteHistory removes a history and releases its size from the usage
func (db *DB) DeleteHistory(id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	h, err := getHistory(db.conn, id)
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM histories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete history %d: %w", id, err)
	}
	if err := addStorageUsed(tx, -h.Size); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
