package api

import (
	"time"

	"github.com/Project-Sylos/Folio/internal/api/handlers"
	apimiddleware "github.com/Project-Sylos/Folio/internal/api/middleware"
	"github.com/Project-Sylos/Folio/internal/db"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router represents the HTTP API router
type Router struct {
	store *db.DB
	token string
}

// NewRouter creates a new API router. A non-empty token enables bearer
// auth on every /api route.
func NewRouter(store *db.DB, token string) *Router {
	return &Router{store: store, token: token}
}

// SetupRoutes configures all API routes using modular handlers
func (r *Router) SetupRoutes() *chi.Mux {
	router := chi.NewRouter()

	// Standard middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Timeout(60 * time.Second))

	// Custom middleware
	router.Use(apimiddleware.CORS)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	folderHandler := handlers.NewFolderHandler(r.store)
	historyHandler := handlers.NewHistoryHandler(r.store)
	storageHandler := handlers.NewStorageHandler(r.store)
	userHandler := handlers.NewUserHandler(r.store)

	// Health check
	router.Get("/health", healthHandler.HealthCheck)

	// API routes
	router.Route("/api", func(api chi.Router) {
		api.Use(apimiddleware.BearerAuth(r.token))

		api.Route("/history", func(history chi.Router) {
			history.Get("/", historyHandler.GetHistory)
			history.Post("/", historyHandler.CreateHistory)
			history.Delete("/{id}", historyHandler.DeleteHistory)

			// Folders
			history.Route("/folders", func(folders chi.Router) {
				folders.Get("/", folderHandler.ListFolders)
				folders.Post("/", folderHandler.CreateFolder)
				folders.Put("/{id}", folderHandler.RenameFolder)
				folders.Delete("/{id}", folderHandler.DeleteFolder)
				folders.Get("/{id}/histories", folderHandler.ListHistories)
			})
			history.Put("/items/{id}/move", folderHandler.MoveItem)

			// Names
			history.Get("/name", historyHandler.SearchByName)
			history.Put("/name/{id}", historyHandler.RenameHistory)

			// Storage and preferences
			history.Get("/storage", storageHandler.GetStorage)
			history.Post("/storage/recalculate", storageHandler.Recalculate)
			history.Get("/user/default_folder", storageHandler.GetDefaultFolder)
			history.Put("/user/default_folder", storageHandler.SetDefaultFolder)
		})

		api.Route("/user/info/current", func(user chi.Router) {
			user.Get("/", userHandler.CurrentUser)
			user.Get("/admin", userHandler.CurrentAdmin)
		})
	})

	return router
}
