package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/5w1tchy/bookshelf-api/internal/models"
)

// Backend is the set of catalog calls Cached can sit in front of.
type Backend interface {
	Exists(ctx context.Context, isbn string) (bool, error)
	Insert(ctx context.Context, b models.Book) (int64, error)
	FindByIsbn(ctx context.Context, isbn string) (models.Book, error)
	UpdateByIsbn(ctx context.Context, isbn string, f models.BookFields) (int64, error)
	DeleteByIsbn(ctx context.Context, isbn string) (int64, error)
}

type CacheOptions struct {
	Prefix  string
	TTL     time.Duration
	Timeout time.Duration // per cache op
	// Tombstone is how long a write blocks refills of its key. It must outlast
	// any FindByIsbn that read Postgres before the write committed.
	Tombstone time.Duration
}

// tombstone marks a key written since the last fill.
const tombstone = "-"

// Cached is a read-through cache on FindByIsbn. Redis errors never fail a call:
// the cache is bypassed and the first failure is logged.
//
// Writes replace the entry with a short-lived tombstone and fills use SETNX, so a
// read that raced a write cannot put the old row back.
type Cached struct {
	next    Backend
	rdb     *redis.Client
	opts    CacheOptions
	log     zerolog.Logger
	warnMu  sync.Once
	enabled bool
}

func NewCached(next Backend, rdb *redis.Client, opts CacheOptions, log zerolog.Logger) *Cached {
	if opts.Prefix == "" {
		opts.Prefix = "catalog:isbn:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 150 * time.Millisecond
	}
	if opts.Tombstone <= 0 {
		opts.Tombstone = 5 * time.Second
	}
	return &Cached{next: next, rdb: rdb, opts: opts, log: log, enabled: rdb != nil}
}

func (c *Cached) key(isbn string) string { return c.opts.Prefix + isbn }

func (c *Cached) Exists(ctx context.Context, isbn string) (bool, error) {
	return c.next.Exists(ctx, isbn)
}

func (c *Cached) Insert(ctx context.Context, b models.Book) (int64, error) {
	id, err := c.next.Insert(ctx, b)
	if err == nil {
		c.evict(ctx, b.ISBN)
	}
	return id, err
}

func (c *Cached) FindByIsbn(ctx context.Context, isbn string) (models.Book, error) {
	if b, ok := c.get(ctx, isbn); ok {
		return b, nil
	}
	b, err := c.next.FindByIsbn(ctx, isbn)
	if err != nil {
		return b, err
	}
	c.set(ctx, b)
	return b, nil
}

func (c *Cached) UpdateByIsbn(ctx context.Context, isbn string, f models.BookFields) (int64, error) {
	n, err := c.next.UpdateByIsbn(ctx, isbn, f)
	if err == nil {
		c.evict(ctx, isbn)
	}
	return n, err
}

func (c *Cached) DeleteByIsbn(ctx context.Context, isbn string) (int64, error) {
	n, err := c.next.DeleteByIsbn(ctx, isbn)
	if err == nil {
		c.evict(ctx, isbn)
	}
	return n, err
}

func (c *Cached) get(ctx context.Context, isbn string) (models.Book, bool) {
	if !c.enabled {
		return models.Book{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	raw, err := c.rdb.Get(ctx, c.key(isbn)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warnOnce(err, "get")
		}
		return models.Book{}, false
	}
	if string(raw) == tombstone {
		return models.Book{}, false
	}
	var b models.Book
	if err := json.Unmarshal(raw, &b); err != nil {
		return models.Book{}, false
	}
	return b, true
}

func (c *Cached) set(ctx context.Context, b models.Book) {
	if !c.enabled {
		return
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	// loses to a tombstone or to a concurrent fill
	if err := c.rdb.SetNX(ctx, c.key(b.ISBN), raw, c.opts.TTL).Err(); err != nil {
		c.warnOnce(err, "set")
	}
}

func (c *Cached) evict(ctx context.Context, isbn string) {
	if !c.enabled {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	if err := c.rdb.Set(ctx, c.key(isbn), tombstone, c.opts.Tombstone).Err(); err != nil {
		c.warnOnce(err, "evict")
	}
}

func (c *Cached) warnOnce(err error, op string) {
	c.warnMu.Do(func() {
		c.log.Warn().Err(err).Str("op", op).Msg("catalog cache unavailable; bypassing (muted next)")
	})
}
