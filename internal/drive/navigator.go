package drive

import (
	"context"
	"fmt"
	"sync"

	"github.com/Project-Sylos/Folio/internal/remote"
	"github.com/Project-Sylos/Folio/internal/types"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Navigator owns the open folder: its item list and the breadcrumb trail.
// Other components change that state only through the methods below.
type Navigator struct {
	remote remote.Collaborator
	banner *Banner

	mu      sync.Mutex
	items   []types.Item
	crumbs  []types.Breadcrumb
	loading bool
	gen     uint64             // Generation of the most recently issued load
	cancel  context.CancelFunc // Cancels the load of generation gen

	// Destination of the load in flight, re-issued by Reload
	target *int64
	trail  func([]types.Breadcrumb) []types.Breadcrumb
}

// NewNavigator creates a navigator positioned at the root with an empty
// item list pending the first load.
func NewNavigator(c remote.Collaborator, banner *Banner) *Navigator {
	return &Navigator{
		remote: c,
		banner: banner,
		items:  []types.Item{},
		crumbs: []types.Breadcrumb{types.RootCrumb()},
	}
}

// EnterFolder loads folder id (nil = root) and makes it the open folder.
// On failure the previous items and breadcrumbs are left untouched.
func (n *Navigator) EnterFolder(ctx context.Context, id *int64, name string) error {
	return n.load(ctx, id, func(crumbs []types.Breadcrumb) []types.Breadcrumb {
		return enterCrumb(crumbs, id, name)
	})
}

// GoToParent re-enters the crumb above the open folder. At the root it
// reloads the root.
func (n *Navigator) GoToParent(ctx context.Context) error {
	crumbs := n.Breadcrumbs()
	if len(crumbs) <= 1 {
		return n.GoToRoot(ctx)
	}
	parent := crumbs[len(crumbs)-2]
	return n.EnterFolder(ctx, parent.ID, parent.Name)
}

// GoToRoot resets the trail to the single root crumb and loads the root
func (n *Navigator) GoToRoot(ctx context.Context) error {
	return n.load(ctx, nil, func([]types.Breadcrumb) []types.Breadcrumb {
		return []types.Breadcrumb{types.RootCrumb()}
	})
}

// Reload refetches the open folder without changing the trail. While a
// navigation is in flight it re-issues that navigation instead, so the
// user still lands on the folder they asked for, with fresh contents.
func (n *Navigator) Reload(ctx context.Context) error {
	n.mu.Lock()
	if n.loading {
		id, trail := n.target, n.trail
		n.mu.Unlock()
		return n.load(ctx, id, trail)
	}
	n.mu.Unlock()

	id, _ := n.CurrentFolder()
	return n.load(ctx, id, cloneCrumbs)
}

// load fetches folder id and, if this is still the newest load when the
// response arrives, replaces the items and rewrites the trail with crumbs.
func (n *Navigator) load(ctx context.Context, id *int64, crumbs func([]types.Breadcrumb) []types.Breadcrumb) error {
	n.mu.Lock()
	n.gen++
	gen := n.gen
	if n.cancel != nil {
		n.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.loading = true
	n.target, n.trail = id, crumbs
	n.mu.Unlock()

	defer func() {
		cancel()
		n.mu.Lock()
		if n.gen == gen {
			n.loading = false
			n.cancel = nil
			n.target, n.trail = nil, nil
		}
		n.mu.Unlock()
	}()

	items, err := n.fetch(loadCtx, id)

	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		log.Debugf("[navigator] discarding stale load of folder %s", types.FormatID(id))
		return ErrSuperseded
	}
	if err != nil {
		n.banner.Report("Failed to load folder", err)
		return fmt.Errorf("failed to load folder %s: %w", types.FormatID(id), err)
	}
	n.items = items
	n.crumbs = crumbs(n.crumbs)
	return nil
}

// fetch lists the subfolders of id and, for concrete folders, its
// histories. The root never lists histories.
func (n *Navigator) fetch(ctx context.Context, id *int64) ([]types.Item, error) {
	var (
		folders   []types.FolderNode
		histories []types.HistoryItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := n.remote.ListFolders(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to list folders: %w", err)
		}
		folders = f
		return nil
	})
	if id != nil {
		folderID := *id
		g.Go(func() error {
			h, err := n.remote.ListHistories(gctx, folderID)
			if err != nil {
				return fmt.Errorf("failed to list histories: %w", err)
			}
			histories = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]types.Item, 0, len(folders)+len(histories))
	for _, f := range folders {
		items = append(items, types.FolderItem(f))
	}
	for _, h := range histories {
		items = append(items, types.HistoryRow(h))
	}
	return items, nil
}

// Items returns a copy of the open folder's rows
func (n *Navigator) Items() []types.Item {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]types.Item{}, n.items...)
}

// Breadcrumbs returns a copy of the trail, root first
func (n *Navigator) Breadcrumbs() []types.Breadcrumb {
	n.mu.Lock()
	defer n.mu.Unlock()
	return cloneCrumbs(n.crumbs)
}

// CurrentFolder returns the id (nil = root) and name of the open folder
func (n *Navigator) CurrentFolder() (*int64, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	last := n.crumbs[len(n.crumbs)-1]
	if last.ID == nil {
		return nil, last.Name
	}
	return types.IDPtr(*last.ID), last.Name
}

// Loading reports whether a folder load is in flight
func (n *Navigator) Loading() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.loading
}

// Find returns the row identified by ref
func (n *Navigator) Find(ref types.ItemRef) (types.Item, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i := n.indexOf(ref); i >= 0 {
		return n.items[i], true
	}
	return types.Item{}, false
}

func (n *Navigator) indexOf(ref types.ItemRef) int {
	for i, it := range n.items {
		if it.Type == ref.Type && it.ID == ref.ID {
			return i
		}
	}
	return -1
}

// Reorder moves the row at from to position to, locally only
func (n *Navigator) Reorder(from, to int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if from < 0 || from >= len(n.items) || to < 0 || to >= len(n.items) {
		return fmt.Errorf("%w: move %d to %d in a list of %d", ErrBadIndex, from, to, len(n.items))
	}
	if from == to {
		return nil
	}
	moved := n.items[from]
	items := make([]types.Item, 0, len(n.items))
	items = append(items, n.items[:from]...)
	items = append(items, n.items[from+1:]...)
	items = append(items[:to], append([]types.Item{moved}, items[to:]...)...)
	n.items = items
	return nil
}

// AppendFolder adds a newly created folder to the list when parentID is
// the open folder, and reports whether it did.
func (n *Navigator) AppendFolder(parentID *int64, folder types.FolderNode) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !types.SameID(n.crumbs[len(n.crumbs)-1].ID, parentID) {
		return false
	}
	n.items = append(n.items, types.FolderItem(folder))
	return true
}

// RemoveItem drops the row identified by ref, reporting whether it was present
func (n *Navigator) RemoveItem(ref types.ItemRef) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := n.indexOf(ref)
	if i < 0 {
		return false
	}
	items := make([]types.Item, 0, len(n.items)-1)
	items = append(items, n.items[:i]...)
	n.items = append(items, n.items[i+1:]...)
	return true
}

// PatchName renames the row identified by ref in place, and the crumb of
// a renamed folder on the trail. It reports whether anything changed.
func (n *Navigator) PatchName(ref types.ItemRef, name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	patched := false
	if ref.Type == types.ItemTypeFolder {
		for j := range n.crumbs {
			if n.crumbs[j].ID != nil && *n.crumbs[j].ID == ref.ID {
				n.crumbs[j].Name = name
				patched = true
			}
		}
	}

	i := n.indexOf(ref)
	if i < 0 {
		return patched
	}
	it := n.items[i]
	it.Name = name
	switch {
	case it.Folder != nil:
		f := *it.Folder
		f.Name = name
		it.Folder = &f
	case it.History != nil:
		h := *it.History
		h.Name = &name
		it.History = &h
	}
	n.items[i] = it
	return true
}

// Close cancels any load in flight
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		n.cancel()
	}
}
