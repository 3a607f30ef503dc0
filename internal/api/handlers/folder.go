package handlers

import (
	"net/http"
	"strings"

	"github.com/Project-Sylos/Folio/internal/api/models"
	"github.com/Project-Sylos/Folio/internal/db"
	"github.com/Project-Sylos/Folio/internal/types"
)

// FolderHandler handles folder-related endpoints
type FolderHandler struct {
	BaseHandler
	store *db.DB
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(store *db.DB) *FolderHandler {
	return &FolderHandler{
		store: store,
	}
}

// ListFolders handles GET /history/folders?parent_id=
func (h *FolderHandler) ListFolders(w http.ResponseWriter, req *http.Request) {
	parentID, ok := h.queryID(w, req, "parent_id")
	if !ok {
		return
	}

	folders, err := h.store.ListFolders(parentID)
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, folders)
}

// CreateFolder handles POST /history/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, req *http.Request) {
	var request models.CreateFolderRequest
	if !h.decode(w, req, &request) {
		return
	}

	if strings.TrimSpace(request.FolderName) == "" {
		h.sendError(w, http.StatusBadRequest, "folder_name is required")
		return
	}

	folder, err := h.store.CreateFolder(request.FolderName, request.ParentID)
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, folder)
}

// RenameFolder handles PUT /history/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, req *http.Request) {
	id, ok := h.pathID(w, req)
	if !ok {
		return
	}
	var request models.RenameRequest
	if !h.decode(w, req, &request) {
		return
	}

	if err := h.store.RenameFolder(id, request.NewName); err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendMessage(w, "Folder renamed successfully")
}

// DeleteFolder handles DELETE /history/folders/{id}; the delete is recursive
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, req *http.Request) {
	id, ok := h.pathID(w, req)
	if !ok {
		return
	}

	if err := h.store.DeleteFolder(id); err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendMessage(w, "Folder deleted successfully")
}

// ListHistories handles GET /history/folders/{id}/histories
func (h *FolderHandler) ListHistories(w http.ResponseWriter, req *http.Request) {
	id, ok := h.pathID(w, req)
	if !ok {
		return
	}

	histories, err := h.store.ListHistories(id)
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, histories)
}

// MoveItem handles PUT /history/items/{id}/move for folders and histories
func (h *FolderHandler) MoveItem(w http.ResponseWriter, req *http.Request) {
	id, ok := h.pathID(w, req)
	if !ok {
		return
	}
	var request models.MoveRequest
	if !h.decode(w, req, &request) {
		return
	}

	var err error
	switch types.ItemType(request.Type) {
	case types.ItemTypeFolder:
		err = h.store.MoveFolder(id, request.ParentID)
	case types.ItemTypeHistory:
		err = h.store.MoveHistory(id, request.ParentID)
	default:
		h.sendError(w, http.StatusBadRequest, "type must be folder or history")
		return
	}
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendMessage(w, "Item moved successfully")
}
