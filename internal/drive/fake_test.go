package drive

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Project-Sylos/Folio/internal/remote"
	"github.com/Project-Sylos/Folio/internal/types"
)

// fakeRemote is an in-memory history service recording every call
type fakeRemote struct {
	mu        sync.Mutex
	folders   map[int64]types.FolderNode
	histories map[int64]types.HistoryItem
	storage   types.StorageInfo
	nextID    int64
	def       *int64

	calls []string
	fail  map[string]error // Method name -> error to return

	// gate blocks a call until closed: ListFolders by folder id, and
	// SearchHistories by "search <query>"
	gate map[string]chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		folders:   map[int64]types.FolderNode{},
		histories: map[int64]types.HistoryItem{},
		nextID:    1000,
		fail:      map[string]error{},
		gate:      map[string]chan struct{}{},
	}
}

func (f *fakeRemote) addFolder(id int64, name string, parent *int64) {
	f.folders[id] = types.FolderNode{ID: id, Name: name, ParentID: parent}
}

func (f *fakeRemote) addHistory(id int64, name string, folder int64) {
	n := name
	f.histories[id] = types.HistoryItem{ID: id, Name: &n, FolderID: types.IDPtr(folder), CalculationType: "integral"}
}

func (f *fakeRemote) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	method, _, _ := strings.Cut(call, " ")
	return f.fail[method]
}

func (f *fakeRemote) setFail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

func (f *fakeRemote) callsTo(method string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c == method || strings.HasPrefix(c, method+" ") {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRemote) setGate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gate[key] = gate
	return gate
}

func (f *fakeRemote) wait(ctx context.Context, key string) error {
	f.mu.Lock()
	gate := f.gate[key]
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRemote) ListFolders(ctx context.Context, parentID *int64) ([]types.FolderNode, error) {
	key := types.FormatID(parentID)
	if err := f.wait(ctx, key); err != nil {
		return nil, err
	}
	if err := f.record("ListFolders " + key); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.FolderNode
	for _, folder := range f.folders {
		if types.SameID(folder.ParentID, parentID) {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRemote) ListHistories(ctx context.Context, folderID int64) ([]types.HistoryItem, error) {
	if err := f.record("ListHistories " + types.FormatID(&folderID)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.HistoryItem
	for _, h := range f.histories {
		if types.SameID(h.FolderID, &folderID) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRemote) CreateFolder(ctx context.Context, name string, parentID *int64) (*types.FolderNode, error) {
	if err := f.record("CreateFolder " + name); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	folder := types.FolderNode{ID: f.nextID, Name: name, ParentID: parentID}
	f.folders[folder.ID] = folder
	return &folder, nil
}

func (f *fakeRemote) DeleteFolder(ctx context.Context, id int64) error {
	if err := f.record("DeleteFolder " + types.FormatID(&id)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.folders, id)
	return nil
}

func (f *fakeRemote) RenameFolder(ctx context.Context, id int64, name string) error {
	if err := f.record("RenameFolder " + types.FormatID(&id)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	folder := f.folders[id]
	folder.Name = name
	f.folders[id] = folder
	return nil
}

func (f *fakeRemote) RenameHistory(ctx context.Context, id int64, name string) error {
	if err := f.record("RenameHistory " + types.FormatID(&id)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.histories[id]
	h.Name = &name
	f.histories[id] = h
	return nil
}

func (f *fakeRemote) DeleteHistory(ctx context.Context, id int64) error {
	if err := f.record("DeleteHistory " + types.FormatID(&id)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.histories, id)
	return nil
}

func (f *fakeRemote) MoveItem(ctx context.Context, id int64, parentID *int64, itemType types.ItemType) error {
	if err := f.record("MoveItem " + types.ItemRef{Type: itemType, ID: id}.String() + " " + types.FormatID(parentID)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch itemType {
	case types.ItemTypeFolder:
		folder := f.folders[id]
		folder.ParentID = parentID
		f.folders[id] = folder
	case types.ItemTypeHistory:
		h := f.histories[id]
		h.FolderID = parentID
		f.histories[id] = h
	}
	return nil
}

func (f *fakeRemote) StorageInfo(ctx context.Context) (*types.StorageInfo, error) {
	if err := f.record("StorageInfo"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	info := f.storage
	return &info, nil
}

func (f *fakeRemote) RecalculateStorage(ctx context.Context) (*types.StorageInfo, error) {
	if err := f.record("RecalculateStorage"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var used int64
	for _, h := range f.histories {
		used += h.Size
	}
	f.storage.Used = used
	info := f.storage
	return &info, nil
}

func (f *fakeRemote) SetDefaultFolder(ctx context.Context, id int64) error {
	if err := f.record("SetDefaultFolder " + types.FormatID(&id)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.def = types.IDPtr(id)
	return nil
}

func (f *fakeRemote) DefaultFolder(ctx context.Context) (*types.DefaultFolder, error) {
	if err := f.record("DefaultFolder"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	df := &types.DefaultFolder{Path: "/", DefaultFolderID: f.def}
	if f.def != nil {
		df.Path = "/" + f.folders[*f.def].Name
	}
	return df, nil
}

func (f *fakeRemote) SearchHistories(ctx context.Context, name string) ([]types.HistoryItem, error) {
	if err := f.wait(ctx, "search "+name); err != nil {
		return nil, err
	}
	if err := f.record("SearchHistories " + name); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.HistoryItem
	for _, h := range f.histories {
		if strings.Contains(strings.ToLower(h.Label()), strings.ToLower(name)) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ remote.Collaborator = (*fakeRemote)(nil)

// serviceError builds the error a real client returns for a {"error": msg} answer
func serviceError(status int, msg string) error {
	return &remote.Error{Method: "GET", Path: "/test", Status: status, Message: msg}
}

// fixtureTree is root -> A(1) -> B(2) -> C(3), plus D(4) at root, with
// histories 41 and 42 in A.
func fixtureTree() *fakeRemote {
	f := newFakeRemote()
	f.addFolder(1, "A", nil)
	f.addFolder(2, "B", types.IDPtr(1))
	f.addFolder(3, "C", types.IDPtr(2))
	f.addFolder(4, "D", nil)
	f.addHistory(41, "first run", 1)
	f.addHistory(42, "second run", 1)
	return f
}

func refs(items []types.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.DraggableID()
	}
	return out
}

func crumbNames(crumbs []types.Breadcrumb) []string {
	out := make([]string, len(crumbs))
	for i, c := range crumbs {
		out[i] = c.Name
	}
	return out
}
