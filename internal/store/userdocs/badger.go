package userdocs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/5w1tchy/bookshelf-api/internal/models"
)

const (
	userPrefix        = "user:"
	userByPhonePrefix = "idx:users:phone:"
	userIDPrefix      = "usr-"

	maxTxnAttempts = 5
)

// BadgerStore keeps user documents in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// storedUser carries the password hash, which the model hides from JSON.
type storedUser struct {
	models.UserRecord
	PasswordHash string `json:"password_hash"`
}

func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func userKey(id string) []byte { return []byte(userPrefix + id) }

func readUser(txn *badger.Txn, id string) (models.UserRecord, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.UserRecord{}, ErrUserNotFound
	}
	if err != nil {
		return models.UserRecord{}, fmt.Errorf("get user: %w", err)
	}
	var su storedUser
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &su) }); err != nil {
		return models.UserRecord{}, fmt.Errorf("decode user: %w", err)
	}
	rec := su.UserRecord
	rec.PasswordHash = su.PasswordHash
	return rec, nil
}

func writeUser(txn *badger.Txn, rec models.UserRecord) error {
	data, err := json.Marshal(storedUser{UserRecord: rec, PasswordHash: rec.PasswordHash})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return txn.Set(userKey(rec.ID), data)
}

// mutate runs fn against the current document inside one transaction and
// writes it back when fn reports a change. Conflicting commits are retried.
func (s *BadgerStore) mutate(userID string, fn func(*models.UserRecord) bool) error {
	var err error
	for range maxTxnAttempts {
		err = s.db.Update(func(txn *badger.Txn) error {
			rec, err := readUser(txn, userID)
			if err != nil {
				return err
			}
			if !fn(&rec) {
				return nil
			}
			return writeUser(txn, rec)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *BadgerStore) FindUser(_ context.Context, userID string) (models.UserRecord, error) {
	var rec models.UserRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = readUser(txn, userID)
		return err
	})
	if err != nil {
		return models.UserRecord{}, err
	}
	emptyLists(&rec)
	return rec, nil
}

func (s *BadgerStore) AppendSnapshot(_ context.Context, userID string, list models.ListName, snap models.BookSnapshot) error {
	if _, err := listField(list); err != nil {
		return err
	}
	return s.mutate(userID, func(u *models.UserRecord) bool {
		l := listRef(u, list)
		*l = append(*l, snap)
		return true
	})
}

func (s *BadgerStore) UpdatePublishedSnapshotFields(_ context.Context, userID, isbn string, f models.BookFields) (int64, error) {
	if f.IsEmpty() {
		return 0, ErrNoFields
	}
	var matched int64
	err := s.mutate(userID, func(u *models.UserRecord) bool {
		matched = 0
		for i := range u.Published {
			if u.Published[i].ISBN == isbn {
				f.ApplyTo(&u.Published[i])
				matched = 1
				return true
			}
		}
		return false
	})
	if errors.Is(err, ErrUserNotFound) {
		return 0, nil
	}
	return matched, err
}

func (s *BadgerStore) RemoveSnapshot(_ context.Context, userID string, list models.ListName, isbn string) (int64, error) {
	if _, err := listField(list); err != nil {
		return 0, err
	}
	var matched int64
	err := s.mutate(userID, func(u *models.UserRecord) bool {
		matched = 0
		l := listRef(u, list)
		kept := (*l)[:0]
		for _, snap := range *l {
			if snap.ISBN == isbn {
				matched = 1
				continue
			}
			kept = append(kept, snap)
		}
		*l = kept
		return matched == 1
	})
	if errors.Is(err, ErrUserNotFound) {
		return 0, nil
	}
	return matched, err
}

func (s *BadgerStore) CreateUser(_ context.Context, rec models.UserRecord) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate user id: %w", err)
	}
	rec.ID = userIDPrefix + id
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Published = []models.BookSnapshot{}
	rec.Wishlist = []models.BookSnapshot{}
	rec.Cart = []models.BookSnapshot{}

	phoneKey := []byte(userByPhonePrefix + rec.Phone)
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(phoneKey)
		if err == nil {
			return ErrPhoneExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check phone: %w", err)
		}
		if err := writeUser(txn, rec); err != nil {
			return err
		}
		return txn.Set(phoneKey, []byte(rec.ID))
	})
	if errors.Is(err, badger.ErrConflict) {
		// another registration with the same phone committed first
		return "", ErrPhoneExists
	}
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func listRef(u *models.UserRecord, name models.ListName) *[]models.BookSnapshot {
	switch name {
	case models.ListWishlist:
		return &u.Wishlist
	case models.ListCart:
		return &u.Cart
	default:
		return &u.Published
	}
}
