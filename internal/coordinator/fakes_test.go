package coordinator_test

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/5w1tchy/bookshelf-api/internal/models"
	"github.com/5w1tchy/bookshelf-api/internal/store/dbx"
	"github.com/5w1tchy/bookshelf-api/internal/store/userdocs"
)

type fakeCatalog struct {
	mu     sync.Mutex
	books  map[string]models.Book
	nextID int64
	calls  int

	existsErr error
	// hideExisting makes Exists report false even for stored rows, to drive
	// the Exists/Insert race path.
	hideExisting bool
	updateErr    error
	deleteErr    error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{books: map[string]models.Book{}}
}

func (c *fakeCatalog) Exists(_ context.Context, isbn string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.existsErr != nil {
		return false, c.existsErr
	}
	if c.hideExisting {
		return false, nil
	}
	_, ok := c.books[isbn]
	return ok, nil
}

func (c *fakeCatalog) Insert(_ context.Context, b models.Book) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if _, ok := c.books[b.ISBN]; ok {
		return 0, fmt.Errorf("%w: books_isbn_key", dbx.ErrDuplicateKey)
	}
	c.nextID++
	b.BookID = c.nextID
	c.books[b.ISBN] = b
	return b.BookID, nil
}

func (c *fakeCatalog) FindByIsbn(_ context.Context, isbn string) (models.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	b, ok := c.books[isbn]
	if !ok {
		return models.Book{}, dbx.ErrNotFound
	}
	b.ImageLink = b.ImageLinkOrDefault()
	return b, nil
}

func (c *fakeCatalog) UpdateByIsbn(_ context.Context, isbn string, f models.BookFields) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.updateErr != nil {
		return 0, c.updateErr
	}
	b, ok := c.books[isbn]
	if !ok {
		return 0, nil
	}
	s := models.NewSnapshot(b)
	f.ApplyTo(&s)
	b.Title, b.Author, b.Genre, b.Description = s.Title, s.Author, s.Genre, s.Description
	b.Price, b.StockQuantity, b.Trending, b.Bestseller = s.Price, s.StockQuantity, s.Trending, s.Bestseller
	b.Publisher = s.Publisher
	if f.ImageLink != nil {
		b.ImageLink = *f.ImageLink
	}
	c.books[isbn] = b
	return 1, nil
}

func (c *fakeCatalog) DeleteByIsbn(_ context.Context, isbn string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.deleteErr != nil {
		return 0, c.deleteErr
	}
	if _, ok := c.books[isbn]; !ok {
		return 0, nil
	}
	delete(c.books, isbn)
	return 1, nil
}

func (c *fakeCatalog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.books)
}

type fakeUsers struct {
	mu    sync.Mutex
	docs  map[string]models.UserRecord
	calls int

	appendErr error
	updateErr error
	removeErr error
}

func newFakeUsers(ids ...string) *fakeUsers {
	u := &fakeUsers{docs: map[string]models.UserRecord{}}
	for _, id := range ids {
		u.docs[id] = models.UserRecord{ID: id, FirstName: "Ada", LastName: "Lovelace", Phone: "+1" + id}
	}
	return u
}

func clone(u models.UserRecord) models.UserRecord {
	u.Published = slices.Clone(u.Published)
	u.Wishlist = slices.Clone(u.Wishlist)
	u.Cart = slices.Clone(u.Cart)
	return u
}

func (s *fakeUsers) FindUser(_ context.Context, id string) (models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	u, ok := s.docs[id]
	if !ok {
		return models.UserRecord{}, userdocs.ErrUserNotFound
	}
	return clone(u), nil
}

func (s *fakeUsers) AppendSnapshot(_ context.Context, id string, list models.ListName, snap models.BookSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.appendErr != nil {
		return s.appendErr
	}
	u, ok := s.docs[id]
	if !ok {
		return userdocs.ErrUserNotFound
	}
	switch list {
	case models.ListPublished:
		u.Published = append(u.Published, snap)
	case models.ListWishlist:
		u.Wishlist = append(u.Wishlist, snap)
	case models.ListCart:
		u.Cart = append(u.Cart, snap)
	}
	s.docs[id] = u
	return nil
}

func (s *fakeUsers) UpdatePublishedSnapshotFields(_ context.Context, id, isbn string, f models.BookFields) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	u, ok := s.docs[id]
	if !ok {
		return 0, nil
	}
	u = clone(u)
	for i := range u.Published {
		if u.Published[i].ISBN == isbn {
			f.ApplyTo(&u.Published[i])
			s.docs[id] = u
			return 1, nil
		}
	}
	return 0, nil
}

func (s *fakeUsers) RemoveSnapshot(_ context.Context, id string, list models.ListName, isbn string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.removeErr != nil {
		return 0, s.removeErr
	}
	u, ok := s.docs[id]
	if !ok || !u.HasISBN(list, isbn) {
		return 0, nil
	}
	drop := func(l []models.BookSnapshot) []models.BookSnapshot {
		return slices.DeleteFunc(slices.Clone(l), func(b models.BookSnapshot) bool { return b.ISBN == isbn })
	}
	switch list {
	case models.ListPublished:
		u.Published = drop(u.Published)
	case models.ListWishlist:
		u.Wishlist = drop(u.Wishlist)
	case models.ListCart:
		u.Cart = drop(u.Cart)
	}
	s.docs[id] = u
	return 1, nil
}

func (s *fakeUsers) CreateUser(_ context.Context, rec models.UserRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for _, u := range s.docs {
		if u.Phone == rec.Phone {
			return "", userdocs.ErrPhoneExists
		}
	}
	rec.ID = fmt.Sprintf("u-%d", len(s.docs)+1)
	s.docs[rec.ID] = rec
	return rec.ID, nil
}

func (s *fakeUsers) doc(id string) models.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.docs[id])
}

type prefixHasher struct{}

func (prefixHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
