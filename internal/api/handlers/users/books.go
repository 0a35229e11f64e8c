package users

import (
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/coordinator"
	"github.com/5w1tchy/bookshelf-api/internal/models"
)

// Publish: POST /users/{userId}/books
func Publish(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in coordinator.BookInput
		if !decodeBody(w, r, &in) {
			return
		}
		book, err := svc.Publish(r.Context(), r.PathValue("userId"), in)
		if err != nil {
			apperr.WriteError(w, r, err)
			return
		}
		httpx.Created(w, book)
	})
}

// Update: PUT /users/{userId}/books/{isbn}
// Absent fields stay unchanged; the body must set at least one.
func Update(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var f models.BookFields
		if !decodeBody(w, r, &f) {
			return
		}
		if err := svc.Update(r.Context(), r.PathValue("userId"), r.PathValue("isbn"), f); err != nil {
			apperr.WriteError(w, r, err)
			return
		}
		httpx.OKNoData(w)
	})
}

// Delete: DELETE /users/{userId}/books/{isbn}
func Delete(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), r.PathValue("userId"), r.PathValue("isbn")); err != nil {
			apperr.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
