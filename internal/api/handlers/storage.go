package handlers

import (
	"net/http"

	"github.com/Project-Sylos/Folio/internal/api/models"
	"github.com/Project-Sylos/Folio/internal/db"
)

// StorageHandler handles storage accounting and default folder endpoints
type StorageHandler struct {
	BaseHandler
	store *db.DB
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(store *db.DB) *StorageHandler {
	return &StorageHandler{
		store: store,
	}
}

// GetStorage handles GET /history/storage
func (h *StorageHandler) GetStorage(w http.ResponseWriter, req *http.Request) {
	info, err := h.store.StorageInfo()
	if err != nil {
		h.sendStoreError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, info)
}

// Recalculate handles POST /history/storage/recalculate
func (h *StorageHandler) Recalculate(w http.ResponseWriter, req *http.Request) {
	info, err := h.store.RecalculateStorage()
	if err != nil {
		h.sendStoreError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, info)
}

// GetDefaultFolder handles GET /history/user/default_folder
func (h *StorageHandler) GetDefaultFolder(w http.ResponseWriter, req *http.Request) {
	def, err := h.store.DefaultFolder()
	if err != nil {
		h.sendStoreError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, def)
}

// SetDefaultFolder handles PUT /history/user/default_folder
func (h *StorageHandler) SetDefaultFolder(w http.ResponseWriter, req *http.Request) {
	var request models.DefaultFolderRequest
	if !h.decode(w, req, &request) {
		return
	}
	if request.FolderID == nil {
		h.sendError(w, http.StatusBadRequest, "folder_id is required")
		return
	}

	if err := h.store.SetDefaultFolder(*request.FolderID); err != nil {
		h.sendStoreError(w, err)
		return
	}

	def, err := h.store.DefaultFolder()
	if err != nil {
		h.sendStoreError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, def)
}
