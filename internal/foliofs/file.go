package foliofs

import (
	"io"
	"io/fs"
)

// historyFile implements fs.File for a history document
type historyFile struct {
	node   *node
	offset int64
}

// folderDir implements fs.ReadDirFile for the root and for folders
type folderDir struct {
	node    *node
	entries []fs.DirEntry
}

func (f *historyFile) Stat() (fs.FileInfo, error) {
	return newFileInfo(f.node), nil
}

func (f *historyFile) Read(b []byte) (int, error) {
	if f.offset >= int64(len(f.node.data)) {
		return 0, io.EOF
	}
	n := copy(b, f.node.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *historyFile) Close() error {
	return nil
}

func (d *folderDir) Stat() (fs.FileInfo, error) {
	return newFileInfo(d.node), nil
}

func (d *folderDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.node.name, Err: fs.ErrInvalid}
}

// ReadDir returns up to n entries in name order. With n <= 0 it returns
// all remaining entries and a nil error.
func (d *folderDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if n <= 0 {
		result := d.entries
		d.entries = nil
		if result == nil {
			result = []fs.DirEntry{}
		}
		return result, nil
	}

	if len(d.entries) == 0 {
		return nil, io.EOF
	}
	count := min(n, len(d.entries))
	result := d.entries[:count:count]
	d.entries = d.entries[count:]
	return result, nil
}

func (d *folderDir) Close() error {
	return nil
}
