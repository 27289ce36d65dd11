package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/bankoffice-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware банковского бэк-офиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Post("/change-password", h.ChangePassword)

			r.Get("/accounts", h.GetAccounts)
			r.Get("/accounts/user/{userID}", h.GetAccountsByUser)
			r.Get("/transactions/{accountNumber}", h.GetTransactionHistory)
			r.Post("/transaction", h.ProcessTransaction)

			r.Get("/search", h.SearchUsers)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/users", h.CreateUser)
				r.Patch("/users/{userID}", h.UpdateUser)
				r.Get("/audit-logs", h.GetAuditLogs)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
