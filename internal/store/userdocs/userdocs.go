// Package userdocs holds one document per user with three embedded snapshot
// lists (published, wishlist, cart). The stores here mutate single documents
// atomically but do not enforce ISBN uniqueness inside a list; callers scan first.
package userdocs

import (
	"errors"

	"github.com/5w1tchy/bookshelf-api/internal/models"
)

var (
	// ErrUserNotFound is returned when no document exists for the user id.
	ErrUserNotFound = errors.New("user not found")
	// ErrPhoneExists is returned when registering a phone number already in use.
	ErrPhoneExists = errors.New("phone already registered")
	// ErrNoFields is returned for a positional update with nothing to set.
	ErrNoFields = errors.New("no fields to update")
	// ErrUnknownList is returned for a list name outside published/wishlist/cart.
	ErrUnknownList = errors.New("unknown snapshot list")
)

func emptyLists(u *models.UserRecord) {
	if u.Published == nil {
		u.Published = []models.BookSnapshot{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []models.BookSnapshot{}
	}
	if u.Cart == nil {
		u.Cart = []models.BookSnapshot{}
	}
}
