package db

import (
	"database/sql"
	"fmt"

	"github.com/Project-Sylos/Folio/internal/types"
	log "github.com/sirupsen/logrus"
)

// Account is the single account row: identity, storage usage and the
// default folder for new results
type Account struct {
	types.UserInfo
	StorageUsed     int64
	StorageLimit    int64
	DefaultFolderID *int64
}

// ensureAccount creates the account row from the store configuration the
// first time the database is opened. Later opens keep the stored usage and
// preferences but pick up a changed storage limit.
func (db *DB) ensureAccount(store types.StoreConfig) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM account`).Scan(&n); err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if n > 0 {
		if _, err := db.conn.Exec(`UPDATE account SET storage_limit = ? WHERE id = ?`, store.StorageLimit, accountID); err != nil {
			return fmt.Errorf("failed to update storage limit: %w", err)
		}
		return nil
	}

	_, err := db.conn.Exec(`
INSERT INTO account (id, username, email, is_admin, subscription_end, storage_used, storage_limit, default_folder_id)
VALUES (?, ?, ?, ?, NULL, 0, ?, NULL)`,
		accountID, store.Username, store.Email, store.Admin, store.StorageLimit)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	log.Infof("[db] created account %s", store.Username)
	return nil
}

// Account returns the account row
func (db *DB) Account() (*Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return getAccount(db.conn)
}

func getAccount(q querier) (*Account, error) {
	var (
		a      Account
		subEnd sql.NullTime
		defID  sql.NullInt64
	)
	err := q.QueryRow(`
SELECT username, email, is_admin, subscription_end, storage_used, storage_limit, default_folder_id
FROM account WHERE id = ?`, accountID).Scan(
		&a.Username, &a.Email, &a.IsAdmin, &subEnd, &a.StorageUsed, &a.StorageLimit, &defID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if subEnd.Valid {
		t := subEnd.Time.UTC()
		a.SubscriptionEnd = &t
	}
	a.DefaultFolderID = nullableID(defID)
	return &a, nil
}

func addStorageUsed(q querier, delta int64) error {
	if delta == 0 {
		return nil
	}
	_, err := q.Exec(`UPDATE account SET storage_used = GREATEST(storage_used + ?, 0) WHERE id = ?`, delta, accountID)
	if err != nil {
		return fmt.Errorf("failed to update storage usage: %w", err)
	}
	return nil
}

// StorageInfo returns the tracked usage against the limit
func (db *DB) StorageInfo() (*types.StorageInfo, error) {
	a, err := db.Account()
	if err != nil {
		return nil, err
	}
	return &types.StorageInfo{Used: a.StorageUsed, Limit: a.StorageLimit}, nil
}

// RecalculateStorage recomputes usage as the sum of all history sizes,
// correcting any drift in the tracked value
func (db *DB) RecalculateStorage() (*types.StorageInfo, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var used int64
	if err := db.conn.QueryRow(`SELECT COALESCE(SUM(size), 0) FROM histories`).Scan(&used); err != nil {
		return nil, fmt.Errorf("failed to sum history sizes: %w", err)
	}
	if _, err := db.conn.Exec(`UPDATE account SET storage_used = ? WHERE id = ?`, used, accountID); err != nil {
		return nil, fmt.Errorf("failed to store storage usage: %w", err)
	}
	a, err := getAccount(db.conn)
	if err != nil {
		return nil, err
	}
	return &types.StorageInfo{Used: a.StorageUsed, Limit: a.StorageLimit}, nil
}

// SetDefaultFolder marks folder id as the target for new results
func (db *DB) SetDefaultFolder(id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := folderExists(db.conn, id); err != nil {
		return err
	}
	if _, err := db.conn.Exec(`UPDATE account SET default_folder_id = ? WHERE id = ?`, id, accountID); err != nil {
		return fmt.Errorf("failed to set default folder: %w", err)
	}
	return nil
}

// DefaultFolder returns the default folder and its display path. Without a
// default folder the path is the root, "/".
func (db *DB) DefaultFolder() (*types.DefaultFolder, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, err := getAccount(db.conn)
	if err != nil {
		return nil, err
	}
	df := &types.DefaultFolder{Path: "/", DefaultFolderID: a.DefaultFolderID}
	if a.DefaultFolderID != nil {
		path, err := folderPath(db.conn, *a.DefaultFolderID)
		if err != nil {
			return nil, err
		}
		df.Path = path
	}
	return df, nil
}
