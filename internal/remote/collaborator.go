package remote

import (
	"context"

	"github.com/Project-Sylos/Folio/internal/types"
)

// Collaborator is the history service as seen by the drive core.
// Transport and auth are the implementation's concern.
type Collaborator interface {
	ListFolders(ctx context.Context, parentID *int64) ([]types.FolderNode, error)
	ListHistories(ctx context.Context, folderID int64) ([]types.HistoryItem, error)
	CreateFolder(ctx context.Context, name string, parentID *int64) (*types.FolderNode, error)
	DeleteFolder(ctx context.Context, id int64) error
	RenameFolder(ctx context.Context, id int64, name string) error
	RenameHistory(ctx context.Context, id int64, name string) error
	DeleteHistory(ctx context.Context, id int64) error
	MoveItem(ctx context.Context, id int64, parentID *int64, itemType types.ItemType) error
	StorageInfo(ctx context.Context) (*types.StorageInfo, error)
	RecalculateStorage(ctx context.Context) (*types.StorageInfo, error)
	SetDefaultFolder(ctx context.Context, id int64) error
	DefaultFolder(ctx context.Context) (*types.DefaultFolder, error)
	SearchHistories(ctx context.Context, name string) ([]types.HistoryItem, error)
}

var _ Collaborator = (*Client)(nil)
