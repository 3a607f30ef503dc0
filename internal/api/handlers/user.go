package handlers

import (
	"net/http"

	"github.com/Project-Sylos/Folio/internal/db"
)

// UserHandler serves the signed-in account
type UserHandler struct {
	BaseHandler
	store *db.DB
}

// NewUserHandler creates a new user handler
func NewUserHandler(store *db.DB) *UserHandler {
	return &UserHandler{
		store: store,
	}
}

// CurrentUser handles GET /user/info/current
func (h *UserHandler) CurrentUser(w http.ResponseWriter, req *http.Request) {
	acct, err := h.store.Account()
	if err != nil {
		h.sendStoreError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, acct.UserInfo)
}

// CurrentAdmin handles GET /user/info/current/admin
func (h *UserHandler) CurrentAdmin(w http.ResponseWriter, req *http.Request) {
	acct, err := h.store.Account()
	if err != nil {
		h.sendStoreError(w, err)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]bool{"is_admin": acct.IsAdmin})
}
