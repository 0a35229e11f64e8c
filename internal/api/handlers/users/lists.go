package users

import (
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/models"
)

// AddToList: POST /users/{userId}/wishlist/{isbn} and /users/{userId}/cart/{isbn}
func AddToList(svc Service, list models.ListName) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := svc.AddSnapshot(r.Context(), r.PathValue("userId"), r.PathValue("isbn"), list); err != nil {
			apperr.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
}

// List: GET /users/{userId}/{wishlist|cart|published}
func List(svc Service, list models.ListName) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snaps, err := svc.Snapshots(r.Context(), r.PathValue("userId"), list)
		if err != nil {
			apperr.WriteError(w, r, err)
			return
		}
		httpx.OK(w, snaps)
	})
}
