package foliofs

import "io/fs"

// nodeDirEntry wraps a node to implement fs.DirEntry
type nodeDirEntry struct {
	node *node
}

func newDirEntry(n *node) fs.DirEntry {
	return &nodeDirEntry{node: n}
}

func (de *nodeDirEntry) Name() string {
	return de.node.name
}

func (de *nodeDirEntry) IsDir() bool {
	return de.node.isDir()
}

func (de *nodeDirEntry) Type() fs.FileMode {
	if de.node.isDir() {
		return fs.ModeDir
	}
	return 0
}

func (de *nodeDirEntry) Info() (fs.FileInfo, error) {
	return newFileInfo(de.node), nil
}
