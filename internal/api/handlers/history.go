package handlers

import (
	"net/http"
	"strconv"

	"github.com/Project-Sylos/Folio/internal/api/models"
	"github.com/Project-Sylos/Folio/internal/db"
	"github.com/Project-Sylos/Folio/internal/types"
)

// HistoryHandler handles calculation history endpoints
type HistoryHandler struct {
	BaseHandler
	store *db.DB
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(store *db.DB) *HistoryHandler {
	return &HistoryHandler{
		store: store,
	}
}

// GetHistory handles GET /history?history_id=
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, req *http.Request) {
	raw := req.URL.Query().Get("history_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "history_id is required")
		return
	}

	history, err := h.store.GetHistory(id)
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, history)
}

// CreateHistory handles POST /history. Without folder_id the record lands in
// the default folder.
func (h *HistoryHandler) CreateHistory(w http.ResponseWriter, req *http.Request) {
	var request models.CreateHistoryRequest
	if !h.decode(w, req, &request) {
		return
	}

	history, err := h.store.InsertHistory(types.HistoryItem{
		FolderID:        request.FolderID,
		Name:            request.Name,
		CalculationType: request.CalculationType,
		Input:           request.Input,
		Output:          request.Output,
	})
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, history)
}

// SearchByName handles GET /history/name?name=
func (h *HistoryHandler) SearchByName(w http.ResponseWriter, req *http.Request) {
	histories, err := h.store.SearchHistories(req.URL.Query().Get("name"))
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, histories)
}

// RenameHistory handles PUT /history/name/{id}
func (h *HistoryHandler) RenameHistory(w http.ResponseWriter, req *http.Request) {
	id, ok := h.pathID(w, req)
	if !ok {
		return
	}
	var request models.RenameRequest
	if !h.decode(w, req, &request) {
		return
	}

	if err := h.store.RenameHistory(id, request.NewName); err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendMessage(w, "History renamed successfully")
}

// DeleteHistory handles DELETE /history/{id}
func (h *HistoryHandler) DeleteHistory(w http.ResponseWriter, req *http.Request) {
	id, ok := h.pathID(w, req)
	if !ok {
		return
	}

	if err := h.store.DeleteHistory(id); err != nil {
		h.sendStoreError(w, err)
		return
	}

	h.sendMessage(w, "History deleted successfully")
}
