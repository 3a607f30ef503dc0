// Package sdk wires configuration, the history service client, the session
// and the drive core into one handle for applications embedding Folio.
package sdk

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/Project-Sylos/Folio/internal/config"
	"github.com/Project-Sylos/Folio/internal/drive"
	"github.com/Project-Sylos/Folio/internal/foliofs"
	"github.com/Project-Sylos/Folio/internal/remote"
	"github.com/Project-Sylos/Folio/internal/session"
	"github.com/Project-Sylos/Folio/internal/types"
)

// Folio is the public SDK handle for the history drive
type Folio struct {
	config  *types.Config
	client  *remote.Client
	session *session.Context
	drive   *drive.Drive
}

// New creates a Folio instance from the config file at configPath. An
// empty path uses the defaults plus FOLIO_* environment overrides.
func New(configPath string) (*Folio, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Folio: %w", err)
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig creates a Folio instance from an already loaded configuration
func NewWithConfig(cfg *types.Config) *Folio {
	client := remote.NewClient(cfg.Remote)
	sess := session.New(client)
	client.OnUnauthorized = sess.Invalidate

	return &Folio{
		config:  cfg,
		client:  client,
		session: sess,
		drive:   drive.New(client, drive.Options{DismissAfter: cfg.Banner.DismissAfter.Std()}),
	}
}

// Open loads the root folder and the storage usage
func (f *Folio) Open(ctx context.Context) error {
	return f.drive.Open(ctx)
}

// Drive returns the drive core: navigator, drag engine, storage and mutations
func (f *Folio) Drive() *drive.Drive {
	return f.drive
}

// Whoami returns the signed-in account, cached for the life of the session
func (f *Folio) Whoami(ctx context.Context) (*types.UserInfo, error) {
	return f.session.Current(ctx)
}

// Session returns the process-wide session
func (f *Folio) Session() *session.Context {
	return f.session
}

// History returns one history record with its payloads
func (f *Folio) History(ctx context.Context, id int64) (*types.HistoryItem, error) {
	return f.client.GetHistory(ctx, id)
}

// Invoke runs a named calculation on the service
func (f *Folio) Invoke(ctx context.Context, name string, params map[string]any) (*types.Result, error) {
	return f.client.InvokeFunction(ctx, name, params)
}

// AsFS returns a read-only fs.FS over the drive: folders are directories
// and each history is a JSON document. ctx bounds every service call the
// view makes, so it can be used with fs.WalkDir or os.CopyFS.
func (f *Folio) AsFS(ctx context.Context) fs.FS {
	return foliofs.New(ctx, f.client)
}

// GetConfig returns the current configuration
func (f *Folio) GetConfig() *types.Config {
	return f.config
}

// Close stops pending timers and in-flight loads and detaches the drag engine
func (f *Folio) Close() error {
	f.drive.Close()
	return nil
}

// Re-export types for convenience
type (
	Config        = types.Config
	FolderNode    = types.FolderNode
	HistoryItem   = types.HistoryItem
	Item          = types.Item
	ItemRef       = types.ItemRef
	Breadcrumb    = types.Breadcrumb
	StorageInfo   = types.StorageInfo
	DefaultFolder = types.DefaultFolder
	UserInfo      = types.UserInfo
	Result        = types.Result
	DragIntent    = types.DragIntent
	DropResult    = drive.DropResult
	Confirmer     = drive.Confirmer
)

// Re-export constants
const (
	ItemTypeFolder  = types.ItemTypeFolder
	ItemTypeHistory = types.ItemTypeHistory
)
