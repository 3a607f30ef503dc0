package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Project-Sylos/Folio/internal/db"
	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// BaseHandler provides common functionality for all API handlers
type BaseHandler struct{}

// sendJSON sends a JSON response with the given status code and data
func (h *BaseHandler) sendJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warnf("[api] failed to encode response: %v", err)
	}
}

// sendError sends an {"error": message} payload with the given status code
func (h *BaseHandler) sendError(w http.ResponseWriter, statusCode int, message string) {
	h.sendJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// sendMessage sends a 200 {"message": message} payload
func (h *BaseHandler) sendMessage(w http.ResponseWriter, message string) {
	h.sendJSON(w, http.StatusOK, types.MessageResponse{Message: message})
}

// sendStoreError maps a store error onto its HTTP status
func (h *BaseHandler) sendStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, db.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, db.ErrInvalidMove), errors.Is(err, db.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Errorf("[api] %v", err)
		h.sendError(w, status, "Internal server error")
		return
	}
	h.sendError(w, status, err.Error())
}

// decode reads a JSON body into dst, answering 400 on failure
func (h *BaseHandler) decode(w http.ResponseWriter, req *http.Request, dst any) bool {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pathID parses the {id} URL parameter, answering 400 on failure
func (h *BaseHandler) pathID(w http.ResponseWriter, req *http.Request) (int64, bool) {
	raw := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid id: "+raw)
		return 0, false
	}
	return id, true
}

// queryID parses an optional numeric query parameter; "", "null" and
// "root" mean the root
func (h *BaseHandler) queryID(w http.ResponseWriter, req *http.Request, key string) (*int64, bool) {
	raw := req.URL.Query().Get(key)
	id, err := types.ParseID(raw)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid "+key+": "+raw)
		return nil, false
	}
	return id, true
}
