package drive

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Project-Sylos/Folio/internal/remote"
	"github.com/Project-Sylos/Folio/internal/types"
	log "github.com/sirupsen/logrus"
)

// Confirmer gates destructive actions. Confirm is asked once per action
// and nothing is sent to the service unless it returns true.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Confirmed approves every prompt; for callers that already asked
var Confirmed Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// Mutations creates, renames and deletes items, keeping the navigator's
// list in step, and runs history searches outside the open folder.
type Mutations struct {
	nav    *Navigator
	remote remote.Collaborator
	banner *Banner

	mu        sync.Mutex
	busy      int
	results   []types.HistoryItem
	searching bool
	query     string
	searchGen uint64 // Generation of the most recently issued search
}

func NewMutations(nav *Navigator, c remote.Collaborator, banner *Banner) *Mutations {
	return &Mutations{nav: nav, remote: c, banner: banner, results: []types.HistoryItem{}}
}

func (m *Mutations) begin() func() {
	m.mu.Lock()
	m.busy++
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.busy--
		m.mu.Unlock()
	}
}

// Busy reports whether a mutation is in flight
func (m *Mutations) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy > 0
}

// CreateFolder creates name under parentID (nil = root). The new folder is
// appended to the list when parentID is the open folder.
func (m *Mutations) CreateFolder(ctx context.Context, name string, parentID *int64) (*types.FolderNode, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	defer m.begin()()

	folder, err := m.remote.CreateFolder(ctx, name, parentID)
	if err != nil {
		m.banner.Report("Failed to create folder", err)
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}
	if !m.nav.AppendFolder(parentID, *folder) {
		log.Debugf("[drive] folder %d created outside the open folder", folder.ID)
	}
	return folder, nil
}

// DeleteFolder removes a folder and everything below it once confirmed
func (m *Mutations) DeleteFolder(ctx context.Context, id int64, confirm Confirmer) error {
	prompt := fmt.Sprintf("Delete folder %d and all of its contents? This cannot be undone.", id)
	return m.delete(ctx, types.ItemRef{Type: types.ItemTypeFolder, ID: id}, prompt, confirm, m.remote.DeleteFolder)
}

// DeleteHistory removes a history item once confirmed
func (m *Mutations) DeleteHistory(ctx context.Context, id int64, confirm Confirmer) error {
	prompt := fmt.Sprintf("Delete history %d? This cannot be undone.", id)
	return m.delete(ctx, types.ItemRef{Type: types.ItemTypeHistory, ID: id}, prompt, confirm, m.remote.DeleteHistory)
}

func (m *Mutations) delete(ctx context.Context, ref types.ItemRef, prompt string, confirm Confirmer, call func(context.Context, int64) error) error {
	if confirm == nil || !confirm.Confirm(ctx, prompt) {
		return ErrNotConfirmed
	}
	defer m.begin()()

	if err := call(ctx, ref.ID); err != nil {
		if reloadErr := m.nav.Reload(ctx); reloadErr != nil {
			log.Warnf("[drive] reload after failed delete: %v", reloadErr)
		}
		// Reported last so a failed reload does not replace the message
		m.banner.Report("Failed to delete "+string(ref.Type), err)
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	m.nav.RemoveItem(ref)
	log.Infof("[drive] deleted %s", ref)
	return nil
}

// Rename renames a folder or history and patches the row in place
func (m *Mutations) Rename(ctx context.Context, ref types.ItemRef, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	defer m.begin()()

	var err error
	switch ref.Type {
	case types.ItemTypeFolder:
		err = m.remote.RenameFolder(ctx, ref.ID, name)
	case types.ItemTypeHistory:
		err = m.remote.RenameHistory(ctx, ref.ID, name)
	default:
		return fmt.Errorf("cannot rename unknown item type %q", ref.Type)
	}
	if err != nil {
		m.banner.Report("Failed to rename "+string(ref.Type), err)
		return fmt.Errorf("failed to rename %s: %w", ref, err)
	}
	m.nav.PatchName(ref, name)
	return nil
}

// SetDefaultFolder marks folder id as the target for new calculation results
func (m *Mutations) SetDefaultFolder(ctx context.Context, id int64) error {
	defer m.begin()()
	if err := m.remote.SetDefaultFolder(ctx, id); err != nil {
		m.banner.Report("Failed to set default folder", err)
		return fmt.Errorf("failed to set default folder %d: %w", id, err)
	}
	return nil
}

// DefaultFolder returns the account's default folder
func (m *Mutations) DefaultFolder(ctx context.Context) (*types.DefaultFolder, error) {
	df, err := m.remote.DefaultFolder(ctx)
	if err != nil {
		m.banner.Report("Failed to load default folder", err)
		return nil, fmt.Errorf("failed to get default folder: %w", err)
	}
	return df, nil
}

// Search lists histories matching name across all folders. A blank query
// clears the results without calling the service. Only the newest search
// stores its results; an older one still in flight returns ErrSuperseded.
func (m *Mutations) Search(ctx context.Context, name string) ([]types.HistoryItem, error) {
	name = strings.TrimSpace(name)

	m.mu.Lock()
	m.searchGen++
	gen := m.searchGen
	if name == "" {
		m.results = []types.HistoryItem{}
		m.query = ""
		m.searching = false
		m.mu.Unlock()
		return nil, nil
	}
	m.searching = true
	m.mu.Unlock()

	found, err := m.remote.SearchHistories(ctx, name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.searchGen {
		log.Debugf("[drive] discarding stale search for %q", name)
		return nil, ErrSuperseded
	}
	m.searching = false
	if err != nil {
		m.banner.Report("Search failed", err)
		return nil, fmt.Errorf("failed to search histories for %q: %w", name, err)
	}
	m.results = append([]types.HistoryItem{}, found...)
	m.query = name
	return found, nil
}

// SearchResults returns the last successful query and its results
func (m *Mutations) SearchResults() (string, []types.HistoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query, append([]types.HistoryItem{}, m.results...)
}

// Searching reports whether a search is in flight
func (m *Mutations) Searching() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searching
}
