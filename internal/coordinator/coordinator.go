// Package coordinator keeps the catalog and the user documents in step.
//
// Each operation writes the catalog (system of record) first and the user
// document second, as two independent commits. There is no transaction across
// the stores and no compensation: when the second write fails the error is
// returned with Partial set and the first write stays.
package coordinator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/5w1tchy/bookshelf-api/internal/models"
	"github.com/5w1tchy/bookshelf-api/internal/security/password"
	"github.com/5w1tchy/bookshelf-api/internal/store/dbx"
	"github.com/5w1tchy/bookshelf-api/internal/store/userdocs"
)

// CatalogStore is the canonical books table.
type CatalogStore interface {
	Exists(ctx context.Context, isbn string) (bool, error)
	Insert(ctx context.Context, b models.Book) (int64, error)
	FindByIsbn(ctx context.Context, isbn string) (models.Book, error)
	UpdateByIsbn(ctx context.Context, isbn string, f models.BookFields) (int64, error)
	DeleteByIsbn(ctx context.Context, isbn string) (int64, error)
}

// UserDocumentStore holds one document per user with embedded snapshot lists.
type UserDocumentStore interface {
	FindUser(ctx context.Context, userID string) (models.UserRecord, error)
	AppendSnapshot(ctx context.Context, userID string, list models.ListName, snap models.BookSnapshot) error
	UpdatePublishedSnapshotFields(ctx context.Context, userID, isbn string, f models.BookFields) (int64, error)
	RemoveSnapshot(ctx context.Context, userID string, list models.ListName, isbn string) (int64, error)
	CreateUser(ctx context.Context, rec models.UserRecord) (string, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Coordinator struct {
	catalog CatalogStore
	users   UserDocumentStore
	hasher  PasswordHasher
	log     zerolog.Logger
}

func New(catalog CatalogStore, users UserDocumentStore, hasher PasswordHasher, log zerolog.Logger) *Coordinator {
	return &Coordinator{catalog: catalog, users: users, hasher: hasher, log: log}
}

func (c *Coordinator) findUser(ctx context.Context, userID string) (models.UserRecord, error) {
	u, err := c.users.FindUser(ctx, userID)
	if errors.Is(err, userdocs.ErrUserNotFound) {
		return u, fail(KindUserNotFound, "user "+userID+" not found", err)
	}
	if err != nil {
		return u, fail(KindStoreFault, "find user", err)
	}
	return u, nil
}

// Publish creates the catalog row and appends a snapshot to the owner's
// published list.
func (c *Coordinator) Publish(ctx context.Context, userID string, in BookInput) (models.Book, error) {
	in.sanitize()
	if err := in.Validate(); err != nil {
		return models.Book{}, fail(KindInvalidInput, err.Error(), err)
	}

	owner, err := c.findUser(ctx, userID)
	if err != nil {
		return models.Book{}, err
	}

	exists, err := c.catalog.Exists(ctx, in.ISBN)
	if err != nil {
		return models.Book{}, fail(KindStoreFault, "check isbn", err)
	}
	if exists {
		return models.Book{}, fail(KindConflict, "ISBN already published", nil)
	}

	if in.Publisher == "" {
		in.Publisher = owner.FullName()
	}
	book := in.book(userID)

	book.BookID, err = c.catalog.Insert(ctx, book)
	if errors.Is(err, dbx.ErrDuplicateKey) {
		// lost the race between Exists and Insert
		return models.Book{}, fail(KindConflict, "ISBN already published", err)
	}
	if err != nil {
		return models.Book{}, fail(KindStoreFault, "insert book", err)
	}
	book.ImageLink = book.ImageLinkOrDefault()

	if err := c.users.AppendSnapshot(ctx, userID, models.ListPublished, models.NewSnapshot(book)); err != nil {
		c.log.Warn().Err(err).
			Str("op", "publish").
			Str("user_id", userID).
			Str("isbn", book.ISBN).
			Int64("book_id", book.BookID).
			Msg("catalog row has no published snapshot")
		kind := KindStoreFault
		if errors.Is(err, userdocs.ErrUserNotFound) {
			kind = KindUserNotFound
		}
		return book, partial(kind, "append published snapshot", err)
	}
	return book, nil
}

// Update patches the catalog row, then the owner's published snapshot.
// Wishlist and cart copies are left as they were.
func (c *Coordinator) Update(ctx context.Context, userID, isbn string, f models.BookFields) error {
	isbn = models.NormalizeISBN(isbn)
	f = sanitizeFields(f)
	if err := validateFields(f); err != nil {
		return fail(KindInvalidInput, err.Error(), err)
	}
	if isbn == "" {
		return fail(KindInvalidInput, "isbn is required", nil)
	}

	n, err := c.catalog.UpdateByIsbn(ctx, isbn, f)
	if err != nil {
		return fail(KindStoreFault, "update book", err)
	}
	if n == 0 {
		return fail(KindNotFound, "no book with isbn "+isbn, nil)
	}

	matched, err := c.users.UpdatePublishedSnapshotFields(ctx, userID, isbn, f)
	if err != nil {
		c.warnPartial("update", userID, isbn, err)
		return partial(KindStoreFault, "update published snapshot", err)
	}
	if matched == 0 {
		c.warnPartial("update", userID, isbn, nil)
		return partial(KindNotFound, "isbn "+isbn+" is not in the user's published list", nil)
	}
	return nil
}

// Delete removes the catalog row, then the owner's published snapshot.
func (c *Coordinator) Delete(ctx context.Context, userID, isbn string) error {
	isbn = models.NormalizeISBN(isbn)
	if isbn == "" {
		return fail(KindInvalidInput, "isbn is required", nil)
	}

	n, err := c.catalog.DeleteByIsbn(ctx, isbn)
	if err != nil {
		return fail(KindStoreFault, "delete book", err)
	}
	if n == 0 {
		return fail(KindNotFound, "no book with isbn "+isbn, nil)
	}

	matched, err := c.users.RemoveSnapshot(ctx, userID, models.ListPublished, isbn)
	if err != nil {
		c.warnPartial("delete", userID, isbn, err)
		return partial(KindStoreFault, "remove published snapshot", err)
	}
	if matched == 0 {
		c.warnPartial("delete", userID, isbn, nil)
		return partial(KindNotFound, "isbn "+isbn+" is not in the user's published list", nil)
	}
	return nil
}

// AddSnapshot copies the current catalog row into the user's wishlist or cart.
func (c *Coordinator) AddSnapshot(ctx context.Context, userID, isbn string, list models.ListName) error {
	if list != models.ListWishlist && list != models.ListCart {
		return fail(KindInvalidInput, "list must be wishlist or cart", nil)
	}
	isbn = models.NormalizeISBN(isbn)
	if isbn == "" {
		return fail(KindInvalidInput, "isbn is required", nil)
	}

	u, err := c.findUser(ctx, userID)
	if err != nil {
		return err
	}

	book, err := c.catalog.FindByIsbn(ctx, isbn)
	if errors.Is(err, dbx.ErrNotFound) {
		return fail(KindBookNotFound, "no book with isbn "+isbn, err)
	}
	if err != nil {
		return fail(KindStoreFault, "find book", err)
	}

	// Not atomic with the append below; two concurrent adds can both pass.
	if u.HasISBN(list, isbn) {
		return fail(KindConflict, "book already in "+string(list), nil)
	}

	if err := c.users.AppendSnapshot(ctx, userID, list, models.NewSnapshot(book)); err != nil {
		if errors.Is(err, userdocs.ErrUserNotFound) {
			return fail(KindUserNotFound, "user "+userID+" not found", err)
		}
		return fail(KindStoreFault, "append "+string(list)+" snapshot", err)
	}
	return nil
}

// Register creates a user document with empty lists and returns its id.
func (c *Coordinator) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.sanitize()
	if err := in.Validate(); err != nil {
		return "", fail(KindInvalidInput, err.Error(), err)
	}
	pwd, err := password.Validate(in.Password)
	if err != nil {
		return "", fail(KindInvalidInput, "password must be 8-128 characters", err)
	}

	hash, err := c.hasher.Hash(pwd)
	if err != nil {
		return "", fail(KindStoreFault, "hash password", err)
	}

	id, err := c.users.CreateUser(ctx, models.UserRecord{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
	})
	if errors.Is(err, userdocs.ErrPhoneExists) {
		return "", fail(KindConflict, "phone already registered", err)
	}
	if err != nil {
		return "", fail(KindStoreFault, "create user", err)
	}
	return id, nil
}

// Snapshots returns one of the user's lists as stored, never nil.
func (c *Coordinator) Snapshots(ctx context.Context, userID string, list models.ListName) ([]models.BookSnapshot, error) {
	if _, err := models.ParseListName(string(list)); err != nil {
		return nil, fail(KindInvalidInput, err.Error(), err)
	}
	u, err := c.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := u.List(list)
	if out == nil {
		out = []models.BookSnapshot{}
	}
	return out, nil
}

func (c *Coordinator) warnPartial(op, userID, isbn string, err error) {
	ev := c.log.Warn()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Str("op", op).
		Str("user_id", userID).
		Str("isbn", isbn).
		Msg("catalog changed but published snapshot did not")
}
