// Package drive is the client-side core of the history drive: folder
// navigation with breadcrumbs, drag-and-drop reparenting, storage accounting
// and item mutations. Every operation reports its own failures on the shared
// Banner and also returns them, wrapped, to the caller.
package drive

import (
	"context"
	"time"

	"github.com/Project-Sylos/Folio/internal/remote"
	"github.com/Project-Sylos/Folio/internal/types"
)

// Options tunes a Drive
type Options struct {
	DismissAfter time.Duration // Banner lifetime; DefaultDismissAfter when zero
}

// Drive bundles the components around one collaborator and one banner
type Drive struct {
	Banner    *Banner
	Navigator *Navigator
	Engine    *Engine
	Storage   *StorageView
	Mutations *Mutations
}

func New(c remote.Collaborator, opts Options) *Drive {
	banner := NewBanner(opts.DismissAfter)
	nav := NewNavigator(c, banner)
	return &Drive{
		Banner:    banner,
		Navigator: nav,
		Engine:    NewEngine(nav, c, banner),
		Storage:   NewStorageView(c, banner),
		Mutations: NewMutations(nav, c, banner),
	}
}

// Open performs the initial loads: the root listing and the storage usage
func (d *Drive) Open(ctx context.Context) error {
	if err := d.Navigator.GoToRoot(ctx); err != nil {
		return err
	}
	return d.Storage.Load(ctx)
}

// State is the read-only view exposed to a UI layer
type State struct {
	Items         []types.Item        `json:"items"`
	Breadcrumbs   []types.Breadcrumb  `json:"breadcrumbs"`
	Loading       bool                `json:"loading"`
	Storage       types.StorageInfo   `json:"storage"`
	StoragePct    float64             `json:"storage_percent"`
	StorageText   string              `json:"storage_text"`
	Highlight     types.DragTarget    `json:"highlight"`
	Error         string              `json:"error,omitempty"`
	Busy          bool                `json:"busy"`
	Searching     bool                `json:"searching"`
	SearchQuery   string              `json:"search_query,omitempty"`
	SearchResults []types.HistoryItem `json:"search_results"`
}

// Snapshot copies the current state of every component
func (d *Drive) Snapshot() State {
	info, _ := d.Storage.Info()
	query, results := d.Mutations.SearchResults()
	return State{
		Items:         d.Navigator.Items(),
		Breadcrumbs:   d.Navigator.Breadcrumbs(),
		Loading:       d.Navigator.Loading() || d.Storage.Loading(),
		Storage:       info,
		StoragePct:    d.Storage.Percent(),
		StorageText:   d.Storage.Display(),
		Highlight:     d.Engine.Highlight(),
		Error:         d.Banner.Message(),
		Busy:          d.Mutations.Busy(),
		Searching:     d.Mutations.Searching(),
		SearchQuery:   query,
		SearchResults: results,
	}
}

// Close tears the drag engine down, cancels loads and clears the banner
func (d *Drive) Close() {
	d.Engine.Teardown()
	d.Navigator.Close()
	d.Banner.Dismiss()
}
