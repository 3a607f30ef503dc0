package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Project-Sylos/Folio/internal/api"
	"github.com/Project-Sylos/Folio/internal/config"
	"github.com/Project-Sylos/Folio/internal/db"
	"github.com/Project-Sylos/Folio/internal/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *db.DB
	cfgPath string
	a, b    types.FolderNode
	history types.HistoryItem
}

// newFixture serves a store holding A/B plus one history in A, and writes
// a config pointing the CLI at it
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "folio.db")
	store, err := db.New(dbPath, types.StoreConfig{StorageLimit: 1 << 20, Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		os.Remove(dbPath)
	})

	srv := httptest.NewServer(api.NewRouter(store, "").SetupRoutes())
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Remote.BaseURL = srv.URL + "/api"
	cfg.Remote.Retries = 1
	cfg.Log.Level = "error"
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, config.SaveToFile(&cfg, cfgPath))

	a, err := store.CreateFolder("A", nil)
	require.NoError(t, err)
	b, err := store.CreateFolder("B", &a.ID)
	require.NoError(t, err)
	h, err := store.InsertHistory(types.HistoryItem{FolderID: &a.ID, CalculationType: "integral", Input: "1", Output: "x"})
	require.NoError(t, err)

	return &fixture{store: store, cfgPath: cfgPath, a: *a, b: *b, history: *h}
}

func (f *fixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", f.cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestLs(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "My Drive\n")
	assert.Contains(t, out, "A")
	assert.NotContains(t, out, "integral", "the root never lists histories")

	out, err = f.run(t, "", "ls", id(f.a.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "My Drive / A\n")
	assert.Contains(t, out, "B")
	assert.Contains(t, out, f.history.Label())

	out, err = f.run(t, "", "ls", id(f.a.ID), id(f.b.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "My Drive / A / B\n")
	assert.Contains(t, out, "(empty)")

	_, err = f.run(t, "", "ls", "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to load folder")
}

func TestMkdirAndRename(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "", "mkdir", "Notes", "--parent", id(f.a.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Created folder Notes")

	folders, err := f.store.ListFolders(&f.a.ID)
	require.NoError(t, err)
	assert.Len(t, folders, 2)

	_, err = f.run(t, "", "mkdir", "   ")
	assert.EqualError(t, err, "folder name must not be empty")

	_, err = f.run(t, "", "mkdir", "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to create folder: folder \"A\" already exists here")

	out, err = f.run(t, "", "rename", "history", id(f.history.ID), "  Area under x  ")
	require.NoError(t, err)
	assert.Contains(t, out, "Renamed history:"+id(f.history.ID)+" to Area under x")
	h, err := f.store.GetHistory(f.history.ID)
	require.NoError(t, err)
	require.NotNil(t, h.Name)
	assert.Equal(t, "Area under x", *h.Name)

	_, err = f.run(t, "", "rename", "file", "1", "x")
	assert.Error(t, err)
}

func TestMv(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		args      []string
		wantOut   string
		wantError string
	}{
		{"history to root", []string{"mv", "history:" + id(f.history.ID), "root"}, "Moved history:" + id(f.history.ID) + " to root", ""},
		{"folder into itself", []string{"mv", "folder:" + id(f.a.ID), id(f.a.ID)}, "", "cannot move folder:" + id(f.a.ID) + " into itself"},
		{"folder into descendant", []string{"mv", "folder:" + id(f.a.ID), id(f.b.ID)}, "", "Failed to move item: cannot move folder"},
		{"missing target", []string{"mv", "folder:" + id(f.b.ID), "999"}, "", "Failed to move item"},
		{"malformed source", []string{"mv", "folder", "root"}, "", "malformed item reference"},
		{"folder to root", []string{"mv", "folder:" + id(f.b.ID), "root"}, "Moved folder:" + id(f.b.ID) + " to root", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.run(t, "", tt.args...)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
		})
	}

	h, err := f.store.GetHistory(f.history.ID)
	require.NoError(t, err)
	assert.Nil(t, h.FolderID)
	b, err := f.store.GetFolder(f.b.ID)
	require.NoError(t, err)
	assert.Nil(t, b.ParentID)
}

func TestRm(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "n\n", "rm", "folder", id(f.a.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "all of its contents")
	assert.Contains(t, out, "Delete operation cancelled.")
	_, err = f.store.GetFolder(f.a.ID)
	require.NoError(t, err)

	out, err = f.run(t, "y\n", "rm", "folder", id(f.a.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted folder:"+id(f.a.ID))
	_, err = f.store.GetFolder(f.b.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = f.store.GetHistory(f.history.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = f.run(t, "", "rm", "history", id(f.history.ID), "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to delete history")
}

func TestSearchAndShow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.RenameHistory(f.history.ID, "Parabola area"))

	out, err := f.run(t, "", "search", "PARABOLA")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 histories")
	assert.Contains(t, out, "Parabola area")

	out, err = f.run(t, "", "search", "nothing-like-this")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 0 histories")

	out, err = f.run(t, "", "show", id(f.history.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Parabola area\n")
	assert.Contains(t, out, "input:  1\n")
	assert.Contains(t, out, "output: x\n")
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(t.TempDir(), "export")

	out, err := f.run(t, "", "export", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported drive to "+dest)

	info, err := os.Stat(filepath.Join(dest, "A", "B"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(filepath.Join(dest, "A", "integral #"+id(f.history.ID)+".json"))
	require.NoError(t, err)
	var h types.HistoryItem
	require.NoError(t, json.Unmarshal(data, &h))
	assert.Equal(t, "1", h.Input)
	assert.Equal(t, "x", h.Output)

	_, err = f.run(t, "", "export", dest)
	assert.Error(t, err, "export refuses to overwrite existing files")
}

func TestPrintResult(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{"plain", "42", []string{"output: 42"}},
		{"text", `{"kind":"text","payload":"x^2/2"}`, []string{"output: x^2/2"}},
		{"table", `{"kind":"table","payload":{"columns":["x","y"],"rows":[["1","2"]]}}`, []string{"output:\n", "x  y", "1  2"}},
		{"chart", `{"kind":"chart","payload":{"title":"sin","series":[{"name":"f","x":[0,1],"y":[0,1]}]}}`, []string{"output: sin: f (2 points)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResult(&buf, tt.output)
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestAccountCommands(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "", "storage")
	require.NoError(t, err)
	assert.Equal(t, "0.00MB / 1.00MB (0.0%)\n", out)

	out, err = f.run(t, "", "storage", "--recalculate")
	require.NoError(t, err)
	assert.Contains(t, out, "0.00MB / 1.00MB")

	out, err = f.run(t, "", "default")
	require.NoError(t, err)
	assert.Equal(t, "Default folder: / (root)\n", out)

	out, err = f.run(t, "", "default", id(f.b.ID))
	require.NoError(t, err)
	assert.Equal(t, "Default folder: /A/B ("+id(f.b.ID)+")\n", out)

	_, err = f.run(t, "", "default", "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to set default folder")

	out, err = f.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "ada <ada@example.com>\n", out)
}

func TestTableModelQuits(t *testing.T) {
	m := newTableModel(itemColumns, nil, 5)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, next.(tableModel).table.Focused())
}
