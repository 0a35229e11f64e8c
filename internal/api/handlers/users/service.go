// Package users serves the per-user book routes: publishing, wishlist, cart.
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/coordinator"
	"github.com/5w1tchy/bookshelf-api/internal/models"
)

// Service is the slice of the coordinator these handlers call.
type Service interface {
	Register(ctx context.Context, in coordinator.RegisterInput) (string, error)
	Publish(ctx context.Context, userID string, in coordinator.BookInput) (models.Book, error)
	Update(ctx context.Context, userID, isbn string, f models.BookFields) error
	Delete(ctx context.Context, userID, isbn string) error
	AddSnapshot(ctx context.Context, userID, isbn string, list models.ListName) error
	Snapshots(ctx context.Context, userID string, list models.ListName) ([]models.BookSnapshot, error)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := httpx.DecodeJSON(r, dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, httpx.ErrBodyTooLarge):
		apperr.Write(w, r, apperr.Problem{Status: http.StatusRequestEntityTooLarge, Code: "body_too_large"})
	default:
		apperr.Write(w, r, apperr.Problem{
			Status: http.StatusBadRequest,
			Code:   string(coordinator.KindInvalidInput),
			Detail: "invalid JSON",
		})
	}
	return false
}
