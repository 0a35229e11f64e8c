// Package catalog owns the canonical books table. Every call is a single
// auto-committing statement; nothing here spans more than one row.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/5w1tchy/bookshelf-api/internal/models"
	"github.com/5w1tchy/bookshelf-api/internal/store/dbx"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db dbx.DB
}

func New(db dbx.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the books table and its unique ISBN constraint.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply catalog schema: %w", err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, isbn string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check isbn: %w", err)
	}
	return exists, nil
}

// Insert stores b and returns the assigned book_id. A second row for the same
// ISBN fails with dbx.ErrDuplicateKey.
func (s *Store) Insert(ctx context.Context, b models.Book) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO books (title, author, genre, description, price, stock_quantity,
		                   isbn, trending, bestseller, publisher, image_link, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING book_id`,
		b.Title,
		b.Author,
		nullIfEmpty(b.Genre),
		nullIfEmpty(b.Description),
		b.Price,
		b.StockQuantity,
		b.ISBN,
		b.Trending,
		b.Bestseller,
		nullIfEmpty(b.Publisher),
		nullIfEmpty(b.ImageLink),
		b.OwnerID,
	).Scan(&id)
	if err != nil {
		err = dbx.MapPGError(err)
		if errors.Is(err, dbx.ErrDuplicateKey) {
			return 0, err
		}
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return id, nil
}

func (s *Store) FindByIsbn(ctx context.Context, isbn string) (models.Book, error) {
	var b models.Book
	err := s.db.QueryRowContext(ctx, `
		SELECT book_id, title, author, COALESCE(genre, ''), COALESCE(description, ''),
		       price, stock_quantity, isbn, trending, bestseller,
		       COALESCE(publisher, ''), COALESCE(image_link, ''), user_id
		FROM books
		WHERE isbn = $1`, isbn).
		Scan(&b.BookID, &b.Title, &b.Author, &b.Genre, &b.Description,
			&b.Price, &b.StockQuantity, &b.ISBN, &b.Trending, &b.Bestseller,
			&b.Publisher, &b.ImageLink, &b.OwnerID)
	if err != nil {
		err = dbx.MapPGError(err)
		if errors.Is(err, dbx.ErrNotFound) {
			return models.Book{}, err
		}
		return models.Book{}, fmt.Errorf("find book: %w", err)
	}
	b.ImageLink = b.ImageLinkOrDefault()
	return b, nil
}

// UpdateByIsbn sets only the non-nil fields. Zero rows affected means no such ISBN.
func (s *Store) UpdateByIsbn(ctx context.Context, isbn string, f models.BookFields) (int64, error) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}

	if f.Title != nil {
		add("title", *f.Title)
	}
	if f.Author != nil {
		add("author", *f.Author)
	}
	if f.Genre != nil {
		add("genre", nullIfEmpty(*f.Genre))
	}
	if f.Description != nil {
		add("description", nullIfEmpty(*f.Description))
	}
	if f.Price != nil {
		add("price", *f.Price)
	}
	if f.StockQuantity != nil {
		add("stock_quantity", *f.StockQuantity)
	}
	if f.Trending != nil {
		add("trending", *f.Trending)
	}
	if f.Bestseller != nil {
		add("bestseller", *f.Bestseller)
	}
	if f.Publisher != nil {
		add("publisher", nullIfEmpty(*f.Publisher))
	}
	if f.ImageLink != nil {
		add("image_link", nullIfEmpty(*f.ImageLink))
	}
	if len(set) == 0 {
		return 0, errors.New("update book: no fields")
	}

	args = append(args, isbn)
	q := "UPDATE books SET " + strings.Join(set, ", ") +
		", updated_at = NOW() WHERE isbn = $" + strconv.Itoa(len(args))
	n, err := dbx.Exec(ctx, s.db, q, args...)
	if err != nil {
		return 0, fmt.Errorf("update book: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteByIsbn(ctx context.Context, isbn string) (int64, error) {
	n, err := dbx.Exec(ctx, s.db, `DELETE FROM books WHERE isbn = $1`, isbn)
	if err != nil {
		return 0, fmt.Errorf("delete book: %w", err)
	}
	return n, nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
