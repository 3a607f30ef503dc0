package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := NewClient(types.RemoteConfig{
		BaseURL: srv.URL + "/api",
		Timeout: types.Duration(5 * time.Second),
		Retries: 3,
	})
	c.retryDelay = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestListFolders(t *testing.T) {
	var gotParent []string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history/folders", func(w http.ResponseWriter, r *http.Request) {
		gotParent = append(gotParent, r.URL.Query().Get("parent_id"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader), "every request carries a request id")
		writeJSON(w, http.StatusOK, []types.FolderNode{{ID: 1, Name: "A"}})
	})
	c := newTestClient(t, mux)

	folders, err := c.ListFolders(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "A", folders[0].Name)

	_, err = c.ListFolders(context.Background(), types.IDPtr(7))
	require.NoError(t, err)

	assert.Equal(t, []string{"", "7"}, gotParent, "root omits parent_id")
}

func TestListHistoriesDecodesWireTimestamps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history/folders/{id}/histories", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.PathValue("id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 42, "folder_id": 3, "name": null, "calculation_type": "diffusion", "timestamp": "2024-05-01 10:20:30", "size": 12}]`))
	})
	c := newTestClient(t, mux)

	histories, err := c.ListHistories(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	h := histories[0]
	assert.Equal(t, int64(42), h.ID)
	assert.Nil(t, h.Name)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC), h.Timestamp.Time)
	assert.Equal(t, "diffusion 2024-05-01 10:20:30 #42", h.Label())
}

func TestMoveItemSendsNullParentForRoot(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/history/items/{id}/move", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.PathValue("id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, types.MessageResponse{Message: "moved"})
	})
	c := newTestClient(t, mux)

	require.NoError(t, c.MoveItem(context.Background(), 42, nil, types.ItemTypeHistory))
	assert.Contains(t, body, "parent_id")
	assert.Nil(t, body["parent_id"])
	assert.Equal(t, "history", body["type"])
}

func TestErrorPayloadBecomesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/history/folders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, types.ErrorResponse{Error: "Folder name already exists"})
	})
	c := newTestClient(t, mux)

	_, err := c.CreateFolder(context.Background(), "dup", nil)
	require.Error(t, err)
	assert.Equal(t, "Folder name already exists", Message(err))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUnauthorizedHook(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history/storage", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, types.ErrorResponse{Error: "Unauthorized access"})
	})
	c := newTestClient(t, mux)
	var fired atomic.Int32
	c.OnUnauthorized = func() { fired.Add(1) }

	_, err := c.StorageInfo(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(1), fired.Load(), "4xx answers are not retried")
}

func TestReadsRetryOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history/storage", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "busy"})
			return
		}
		writeJSON(w, http.StatusOK, types.StorageInfo{Used: 10, Limit: 100})
	})
	c := newTestClient(t, mux)

	info, err := c.StorageInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Used)
	assert.Equal(t, int32(3), calls.Load())
}

func TestMutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/history/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "boom"})
	})
	c := newTestClient(t, mux)

	err := c.DeleteHistory(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, "boom", Message(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvokeFunctionReturnsTaggedResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/calculation/{name}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ecm", r.PathValue("name"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"kind": "table", "payload": {"columns": ["t", "v"], "rows": [["0", "3.7"]]}}`))
	})
	c := newTestClient(t, mux)

	res, err := c.InvokeFunction(context.Background(), "ecm", map[string]any{"soc": 0.5})
	require.NoError(t, err)
	assert.Equal(t, types.ResultTable, res.Kind)
	require.NotNil(t, res.Table)
	assert.Equal(t, []string{"t", "v"}, res.Table.Columns)
	assert.Nil(t, res.Chart)
}

func TestSearchAndDefaultFolder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history/name", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "run", r.URL.Query().Get("name"))
		writeJSON(w, http.StatusOK, []types.HistoryItem{{ID: 1}, {ID: 2}})
	})
	mux.HandleFunc("GET /api/history/user/default_folder", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.DefaultFolder{Path: "/A", DefaultFolderID: types.IDPtr(1)})
	})
	c := newTestClient(t, mux)

	found, err := c.SearchHistories(context.Background(), "run")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	def, err := c.DefaultFolder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/A", def.Path)
	assert.True(t, types.SameID(types.IDPtr(1), def.DefaultFolderID))
}
