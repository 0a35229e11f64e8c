package router

import (
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/handlers/users"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/models"
)

func Router(svc users.Service) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Handle("POST /users", users.Register(svc))

	// Published books (catalog row + owner's snapshot)
	mux.Handle("POST /users/{userId}/books", users.Publish(svc))
	mux.Handle("PUT /users/{userId}/books/{isbn}", users.Update(svc))
	mux.Handle("DELETE /users/{userId}/books/{isbn}", users.Delete(svc))

	// Snapshot lists
	mux.Handle("POST /users/{userId}/wishlist/{isbn}", users.AddToList(svc, models.ListWishlist))
	mux.Handle("POST /users/{userId}/cart/{isbn}", users.AddToList(svc, models.ListCart))
	mux.Handle("GET /users/{userId}/wishlist", users.List(svc, models.ListWishlist))
	mux.Handle("GET /users/{userId}/cart", users.List(svc, models.ListCart))
	mux.Handle("GET /users/{userId}/published", users.List(svc, models.ListPublished))

	return mux
}
