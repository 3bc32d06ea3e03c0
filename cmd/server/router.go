package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kanbanlab/taskboard/internal/api"
	apiMiddleware "github.com/kanbanlab/taskboard/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	tokenLifetime := time.Duration(app.config.Auth.TokenLifetimeMinutes) * time.Minute
	authHandler := api.NewAuthHandler(app.userService, app.jwtService, tokenLifetime)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	boardHandler := api.NewBoardHandler(app.boardService)
	taskHandler := api.NewTaskHandler(app.taskService)
	noteHandler := api.NewNoteHandler(app.noteService)
	streamHandler := api.NewStreamHandler(app.hub)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Board endpoints
			r.Get("/boards", boardHandler.ListBoards)
			r.Post("/boards", boardHandler.CreateBoard)
			r.Get("/boards/{boardID}", boardHandler.GetBoard)
			r.Put("/boards/{boardID}", boardHandler.UpdateBoard)
			r.Delete("/boards/{boardID}", boardHandler.DeleteBoard)
			r.Get("/boards/{boardID}/columns", boardHandler.ListColumns)
			r.Post("/boards/{boardID}/columns", boardHandler.CreateColumn)
			r.Get("/boards/{boardID}/tasks", taskHandler.ListBoardTasks)
			r.Get("/boards/{boardID}/members", boardHandler.ListMembers)
			r.Post("/boards/{boardID}/share", boardHandler.ShareBoard)
			r.Delete("/boards/{boardID}/share/{userID}", boardHandler.UnshareBoard)

			// Column endpoints
			r.Put("/columns/{columnID}", boardHandler.RenameColumn)
			r.Delete("/columns/{columnID}", boardHandler.DeleteColumn)

			// Task endpoints
			r.Get("/tasks", taskHandler.ListUserTasks)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Patch("/tasks/reorder", taskHandler.Reorder)
			r.Get("/tasks/{taskID}", taskHandler.GetTask)
			r.Put("/tasks/{taskID}", taskHandler.UpdateTask)
			r.Patch("/tasks/{taskID}/status", taskHandler.SetStatus)
			r.Patch("/tasks/{taskID}/column", taskHandler.MoveToColumn)
			r.Delete("/tasks/{taskID}", taskHandler.DeleteTask)

			// Note endpoints
			r.Get("/tasks/{taskID}/notes", noteHandler.ListNotes)
			r.Post("/tasks/{taskID}/notes", noteHandler.CreateNote)
			r.Get("/tasks/{taskID}/notes/unread", noteHandler.CountUnread)
			r.Put("/notes/{noteID}", noteHandler.UpdateNote)
			r.Delete("/notes/{noteID}", noteHandler.DeleteNote)
			r.Post("/notes/{noteID}/view", noteHandler.MarkViewed)

			// Live event stream
			r.Get("/events", streamHandler.Stream)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
