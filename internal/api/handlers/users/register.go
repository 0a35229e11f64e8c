package users

import (
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/coordinator"
)

// Register: POST /users
func Register(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in coordinator.RegisterInput
		if !decodeBody(w, r, &in) {
			return
		}
		id, err := svc.Register(r.Context(), in)
		if err != nil {
			apperr.WriteError(w, r, err)
			return
		}
		w.Header().Set("Location", "/users/"+id)
		httpx.Created(w, map[string]string{"user_id": id})
	})
}
