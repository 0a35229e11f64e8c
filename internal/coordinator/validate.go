package coordinator

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"

	"github.com/5w1tchy/bookshelf-api/internal/models"
)

const maxISBNLen = 32

// Prices are stored as NUMERIC(12,2).
var maxPrice = decimal.New(1, 10)

// BookInput is the payload for Publish.
type BookInput struct {
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Genre         string          `json:"genre"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ISBN          string          `json:"isbn"`
	Trending      bool            `json:"trending"`
	Bestseller    bool            `json:"bestseller"`
	Publisher     string          `json:"publisher"`
	ImageLink     string          `json:"image_link"`
}

func (in *BookInput) sanitize() {
	in.Title = models.SanitizeString(in.Title)
	in.Author = models.SanitizeString(in.Author)
	in.Genre = models.SanitizeString(in.Genre)
	in.Description = models.SanitizeString(in.Description)
	in.Publisher = models.SanitizeString(in.Publisher)
	in.ImageLink = models.SanitizeString(in.ImageLink)
	in.ISBN = models.NormalizeISBN(in.ISBN)
}

func (in BookInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("title is required")),
		validation.Field(&in.Author, validation.Required.Error("author is required")),
		validation.Field(&in.ISBN,
			validation.Required.Error("isbn is required"),
			validation.Length(1, maxISBNLen),
		),
		validation.Field(&in.Price, validation.By(validPrice)),
		validation.Field(&in.StockQuantity, validation.Min(0).Error("stock_quantity must not be negative")),
		validation.Field(&in.ImageLink, is.URL),
	)
}

func (in BookInput) book(ownerID string) models.Book {
	return models.Book{
		Title:         in.Title,
		Author:        in.Author,
		Genre:         in.Genre,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		ISBN:          in.ISBN,
		Trending:      in.Trending,
		Bestseller:    in.Bestseller,
		Publisher:     in.Publisher,
		ImageLink:     in.ImageLink,
		OwnerID:       ownerID,
	}
}

func sanitizeFields(f models.BookFields) models.BookFields {
	clean := func(p *string) *string {
		if p == nil {
			return nil
		}
		s := models.SanitizeString(*p)
		return &s
	}
	f.Title = clean(f.Title)
	f.Author = clean(f.Author)
	f.Genre = clean(f.Genre)
	f.Description = clean(f.Description)
	f.Publisher = clean(f.Publisher)
	f.ImageLink = clean(f.ImageLink)
	if f.ImageLink != nil && *f.ImageLink == "" {
		// the catalog reads a cleared link back as the placeholder; store the
		// same value in both places so the published snapshot matches
		def := models.DefaultImageLink
		f.ImageLink = &def
	}
	return f
}

func validateFields(f models.BookFields) error {
	if f.IsEmpty() {
		return errors.New("no fields to update")
	}
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.NilOrNotEmpty.Error("title must not be empty")),
		validation.Field(&f.Author, validation.NilOrNotEmpty.Error("author must not be empty")),
		validation.Field(&f.Price, validation.By(validPrice)),
		validation.Field(&f.StockQuantity, validation.Min(0).Error("stock_quantity must not be negative")),
		validation.Field(&f.ImageLink, is.URL),
	)
}

func validPrice(value any) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	default:
		return errors.New("must be a decimal")
	}
	switch {
	case d.IsNegative():
		return errors.New("price must not be negative")
	case !d.Equal(d.Round(2)):
		return errors.New("price must have at most 2 decimal places")
	case d.GreaterThanOrEqual(maxPrice):
		return errors.New("price must be less than 10000000000")
	}
	return nil
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

func (in *RegisterInput) sanitize() {
	in.FirstName = models.SanitizeString(in.FirstName)
	in.LastName = models.SanitizeString(in.LastName)
	in.Email = models.SanitizeString(in.Email)
	in.Phone = strings.ReplaceAll(models.SanitizeString(in.Phone), " ", "")
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.LastName, validation.Length(0, 100)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Phone, validation.Required, is.E164.Error("phone must be in E.164 format")),
	)
}
