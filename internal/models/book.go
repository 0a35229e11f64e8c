package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultImageLink is served for books published without a cover.
const DefaultImageLink = "https://img.freepik.com/free-psd/books-stack-icon-isolated-3d-render-illustration_47987-15482.jpg?semt=ais_hybrid"

// Book is the canonical catalog row.
type Book struct {
	BookID        int64           `json:"book_id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Genre         string          `json:"genre,omitempty"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ISBN          string          `json:"isbn"`
	Trending      bool            `json:"trending"`
	Bestseller    bool            `json:"bestseller"`
	Publisher     string          `json:"publisher,omitempty"`
	ImageLink     string          `json:"image_link"`
	OwnerID       string          `json:"user_id"`
}

// ImageLinkOrDefault never returns an empty link.
func (b Book) ImageLinkOrDefault() string {
	if b.ImageLink == "" {
		return DefaultImageLink
	}
	return b.ImageLink
}

// BookSnapshot is a value copy of a book embedded in a user document.
// It carries no reference back to the catalog row.
type BookSnapshot struct {
	Title         string          `json:"title" bson:"title"`
	Author        string          `json:"author" bson:"author"`
	Genre         string          `json:"genre,omitempty" bson:"genre,omitempty"`
	Description   string          `json:"description,omitempty" bson:"description,omitempty"`
	Price         decimal.Decimal `json:"price" bson:"price"`
	StockQuantity int             `json:"stock_quantity" bson:"stockQuantity"`
	ISBN          string          `json:"isbn" bson:"isbn"`
	Trending      bool            `json:"trending" bson:"trending"`
	Bestseller    bool            `json:"bestseller" bson:"bestseller"`
	Publisher     string          `json:"publisher,omitempty" bson:"publisher,omitempty"`
	ImageLink     string          `json:"image_link" bson:"imageLink"`
}

// NewSnapshot copies the display fields of b as they are right now.
func NewSnapshot(b Book) BookSnapshot {
	return BookSnapshot{
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		Description:   b.Description,
		Price:         b.Price,
		StockQuantity: b.StockQuantity,
		ISBN:          b.ISBN,
		Trending:      b.Trending,
		Bestseller:    b.Bestseller,
		Publisher:     b.Publisher,
		ImageLink:     b.ImageLinkOrDefault(),
	}
}

// ListName names one of the three snapshot lists of a user document.
type ListName string

const (
	ListPublished ListName = "published"
	ListWishlist  ListName = "wishlist"
	ListCart      ListName = "cart"
)

// ParseListName accepts only the three known list names.
func ParseListName(s string) (ListName, error) {
	switch l := ListName(s); l {
	case ListPublished, ListWishlist, ListCart:
		return l, nil
	}
	return "", fmt.Errorf("unknown list %q", s)
}

// UserRecord is one user document.
type UserRecord struct {
	ID               string         `json:"user_id"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone"`
	PasswordHash     string         `json:"-"`
	ProfileImagePath string         `json:"profile_image_path,omitempty"`
	Published        []BookSnapshot `json:"published"`
	Wishlist         []BookSnapshot `json:"wishlist"`
	Cart             []BookSnapshot `json:"cart"`
	CreatedAt        time.Time      `json:"created_at"`
}

// FullName is "First Last", trimmed when either half is missing.
func (u UserRecord) FullName() string {
	return SanitizeString(u.FirstName + " " + u.LastName)
}

// List returns the snapshots held under name.
func (u UserRecord) List(name ListName) []BookSnapshot {
	switch name {
	case ListPublished:
		return u.Published
	case ListWishlist:
		return u.Wishlist
	case ListCart:
		return u.Cart
	}
	return nil
}

// HasISBN reports whether list name already holds a snapshot for isbn.
func (u UserRecord) HasISBN(name ListName, isbn string) bool {
	for _, s := range u.List(name) {
		if s.ISBN == isbn {
			return true
		}
	}
	return false
}

// BookFields is a partial update of the canonical display fields.
// Nil means "leave unchanged".
type BookFields struct {
	Title         *string          `json:"title,omitempty"`
	Author        *string          `json:"author,omitempty"`
	Genre         *string          `json:"genre,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
	Trending      *bool            `json:"trending,omitempty"`
	Bestseller    *bool            `json:"bestseller,omitempty"`
	Publisher     *string          `json:"publisher,omitempty"`
	ImageLink     *string          `json:"image_link,omitempty"`
}

func (f BookFields) IsEmpty() bool {
	return f.Title == nil && f.Author == nil && f.Genre == nil && f.Description == nil &&
		f.Price == nil && f.StockQuantity == nil && f.Trending == nil && f.Bestseller == nil &&
		f.Publisher == nil && f.ImageLink == nil
}

// ApplyTo writes the set fields onto s.
func (f BookFields) ApplyTo(s *BookSnapshot) {
	if f.Title != nil {
		s.Title = *f.Title
	}
	if f.Author != nil {
		s.Author = *f.Author
	}
	if f.Genre != nil {
		s.Genre = *f.Genre
	}
	if f.Description != nil {
		s.Description = *f.Description
	}
	if f.Price != nil {
		s.Price = *f.Price
	}
	if f.StockQuantity != nil {
		s.StockQuantity = *f.StockQuantity
	}
	if f.Trending != nil {
		s.Trending = *f.Trending
	}
	if f.Bestseller != nil {
		s.Bestseller = *f.Bestseller
	}
	if f.Publisher != nil {
		s.Publisher = *f.Publisher
	}
	if f.ImageLink != nil {
		s.ImageLink = *f.ImageLink
	}
}
