// Package foliofs projects the history drive as a read-only fs.FS: folders
// are directories and each history is a JSON document named after it.
// The virtual root lists folders only, like the drive itself.
package foliofs

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/Project-Sylos/Folio/internal/types"
)

// Source is the part of the history service the view reads
type Source interface {
	ListFolders(ctx context.Context, parentID *int64) ([]types.FolderNode, error)
	ListHistories(ctx context.Context, folderID int64) ([]types.HistoryItem, error)
}

// FS is a read-only view of the drive. Every Open walks the tree from the
// root, so the view always reflects the service.
type FS struct {
	ctx context.Context
	src Source
}

var (
	_ fs.FS        = (*FS)(nil)
	_ fs.ReadDirFS = (*FS)(nil)
	_ fs.StatFS    = (*FS)(nil)
)

// New returns a view over src. ctx bounds every service call it makes.
func New(ctx context.Context, src Source) *FS {
	return &FS{ctx: ctx, src: src}
}

// node is one resolved entry: the root, a folder or a history document
type node struct {
	name    string
	folder  *types.FolderNode
	history *types.HistoryItem
	data    []byte
}

func (n *node) isDir() bool {
	return n.history == nil
}

func (n *node) folderID() *int64 {
	if n.folder == nil {
		return nil
	}
	return types.IDPtr(n.folder.ID)
}

func (n *node) modTime() time.Time {
	switch {
	case n.history != nil:
		return n.history.Timestamp.Time
	case n.folder != nil:
		return n.folder.CreatedAt.Time
	}
	return time.Time{}
}

var nameReplacer = strings.NewReplacer("/", "-", "\\", "-", ":", "-")

// entryName makes a display name usable as a path element
func entryName(s string) string {
	s = nameReplacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// HistoryFileName is the document name of h: its name, or its calculation
// type when unnamed, followed by the id
func HistoryFileName(h types.HistoryItem) string {
	base := h.CalculationType
	if h.Name != nil && strings.TrimSpace(*h.Name) != "" {
		base = *h.Name
	}
	return fmt.Sprintf("%s #%d.json", entryName(base), h.ID)
}

func (f *FS) children(dir *node) ([]*node, error) {
	folders, err := f.src.ListFolders(f.ctx, dir.folderID())
	if err != nil {
		return nil, err
	}
	nodes := make([]*node, 0, len(folders))
	for i := range folders {
		nodes = append(nodes, &node{name: entryName(folders[i].Name), folder: &folders[i]})
	}

	if dir.folder != nil {
		histories, err := f.src.ListHistories(f.ctx, dir.folder.ID)
		if err != nil {
			return nil, err
		}
		for i := range histories {
			data, err := json.MarshalIndent(histories[i], "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to render history %d: %w", histories[i].ID, err)
			}
			nodes = append(nodes, &node{name: HistoryFileName(histories[i]), history: &histories[i], data: data})
		}
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].name < nodes[j].name })
	return nodes, nil
}

// resolve walks name from the root one element at a time
func (f *FS) resolve(op, name string) (*node, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	cur := &node{name: "."}
	if name == "." {
		return cur, nil
	}

	for _, part := range strings.Split(name, "/") {
		if !cur.isDir() {
			return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
		}
		children, err := f.children(cur)
		if err != nil {
			return nil, &fs.PathError{Op: op, Path: name, Err: err}
		}
		var next *node
		for _, c := range children {
			if c.name == part {
				next = c
				break
			}
		}
		if next == nil {
			return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
		}
		cur = next
	}
	return cur, nil
}

func (f *FS) entries(op, name string, dir *node) ([]fs.DirEntry, error) {
	children, err := f.children(dir)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}
	entries := make([]fs.DirEntry, len(children))
	for i, c := range children {
		entries[i] = newDirEntry(c)
	}
	return entries, nil
}

// Open implements fs.FS
func (f *FS) Open(name string) (fs.File, error) {
	n, err := f.resolve("open", name)
	if err != nil {
		return nil, err
	}
	if !n.isDir() {
		return &historyFile{node: n}, nil
	}
	entries, err := f.entries("open", name, n)
	if err != nil {
		return nil, err
	}
	return &folderDir{node: n, entries: entries}, nil
}

// ReadDir implements fs.ReadDirFS; entries are sorted by name
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	n, err := f.resolve("readdir", name)
	if err != nil {
		return nil, err
	}
	if !n.isDir() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fmt.Errorf("not a directory")}
	}
	return f.entries("readdir", name, n)
}

// Stat implements fs.StatFS
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	n, err := f.resolve("stat", name)
	if err != nil {
		return nil, err
	}
	return newFileInfo(n), nil
}
