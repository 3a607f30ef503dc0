package foliofs

import (
	"io/fs"
	"time"
)

// nodeFileInfo wraps a node to implement fs.FileInfo
type nodeFileInfo struct {
	node *node
}

func newFileInfo(n *node) fs.FileInfo {
	return &nodeFileInfo{node: n}
}

// Name returns the base name of the file
func (fi *nodeFileInfo) Name() string {
	return fi.node.name
}

// Size returns the length of the rendered document; 0 for directories
func (fi *nodeFileInfo) Size() int64 {
	return int64(len(fi.node.data))
}

// Mode returns the file mode bits
func (fi *nodeFileInfo) Mode() fs.FileMode {
	if fi.node.isDir() {
		return fs.ModeDir | 0555
	}
	return 0444
}

// ModTime is the folder's creation time or the history's timestamp
func (fi *nodeFileInfo) ModTime() time.Time {
	return fi.node.modTime()
}

// IsDir reports whether the file describes a directory
func (fi *nodeFileInfo) IsDir() bool {
	return fi.node.isDir()
}

// Sys returns the folder or history behind the entry, or nil for the root
func (fi *nodeFileInfo) Sys() any {
	switch {
	case fi.node.history != nil:
		return fi.node.history
	case fi.node.folder != nil:
		return fi.node.folder
	}
	return nil
}
