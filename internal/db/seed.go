package db

import (
	"fmt"
	"time"

	"github.com/Project-Sylos/Folio/internal/generator"
	"github.com/Project-Sylos/Folio/internal/types"
	log "github.com/sirupsen/logrus"
)

// SubscriptionDays is the subscription granted to a seeded non-admin account
const SubscriptionDays = 30

// Seed fills an empty drive with a generated demo tree. A drive that
// already holds folders or histories is left alone. It returns the number
// of folders and histories inserted.
func (db *DB) Seed(cfg types.SeedConfig) (int, int, error) {
	base := db.now()
	tree, err := generator.GenerateTree(cfg, base)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to generate seed tree: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var existing int
	if err := db.conn.QueryRow(`SELECT (SELECT COUNT(*) FROM folders) + (SELECT COUNT(*) FROM histories)`).Scan(&existing); err != nil {
		return 0, 0, fmt.Errorf("failed to count existing items: %w", err)
	}
	if existing > 0 {
		log.Infof("[db] drive already holds %d items; skipping seed", existing)
		return 0, 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var nFolders, nHistories int
	var insert func(folders []generator.Folder, parent *int64) error
	insert = func(folders []generator.Folder, parent *int64) error {
		for _, f := range folders {
			created, err := createFolder(tx, f.Name, parent, base)
			if err != nil {
				return err
			}
			nFolders++
			for _, h := range f.Histories {
				_, err := insertHistory(tx, types.HistoryItem{
					FolderID:        types.IDPtr(created.ID),
					Name:            h.Name,
					CalculationType: h.CalculationType,
					Input:           h.Input,
					Output:          h.Output,
					Timestamp:       types.Timestamp{Time: h.Timestamp},
				})
				if err != nil {
					return err
				}
				nHistories++
			}
			if err := insert(f.Children, types.IDPtr(created.ID)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(tree, nil); err != nil {
		return 0, 0, fmt.Errorf("failed to insert seed tree: %w", err)
	}

	acct, err := getAccount(tx)
	if err != nil {
		return 0, 0, err
	}
	if !acct.IsAdmin && acct.SubscriptionEnd == nil {
		end := base.Add(SubscriptionDays * 24 * time.Hour).UTC()
		if _, err := tx.Exec(`UPDATE account SET subscription_end = ? WHERE id = ?`, end, accountID); err != nil {
			return 0, 0, fmt.Errorf("failed to set subscription end: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Infof("[db] seeded %d folders and %d histories", nFolders, nHistories)
	return nFolders, nHistories, nil
}
