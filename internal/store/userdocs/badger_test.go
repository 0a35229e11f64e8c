package userdocs_test

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/bookshelf-api/internal/models"
	"github.com/5w1tchy/bookshelf-api/internal/store/userdocs"
)

func setupBadger(t *testing.T) *userdocs.BadgerStore {
	t.Helper()
	s, err := userdocs.OpenBadger(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, s *userdocs.BadgerStore, phone string) string {
	t.Helper()
	id, err := s.CreateUser(t.Context(), models.UserRecord{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Phone:        phone,
		PasswordHash: "$argon2id$hash",
	})
	require.NoError(t, err)
	return id
}

func TestBadger_CreateAndFindUser(t *testing.T) {
	s := setupBadger(t)
	id := createUser(t, s, "+100")

	assert.True(t, strings.HasPrefix(id, "usr-"))

	u, err := s.FindUser(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "$argon2id$hash", u.PasswordHash)
	assert.Empty(t, u.Published)
	assert.NotNil(t, u.Wishlist)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestBadger_PhoneMustBeUnique(t *testing.T) {
	s := setupBadger(t)
	createUser(t, s, "+100")

	_, err := s.CreateUser(t.Context(), models.UserRecord{Phone: "+100"})
	assert.ErrorIs(t, err, userdocs.ErrPhoneExists)
}

func TestBadger_FindMissingUser(t *testing.T) {
	s := setupBadger(t)

	_, err := s.FindUser(t.Context(), "usr-missing")
	assert.ErrorIs(t, err, userdocs.ErrUserNotFound)

	err = s.AppendSnapshot(t.Context(), "usr-missing", models.ListCart, models.BookSnapshot{ISBN: "978-1"})
	assert.ErrorIs(t, err, userdocs.ErrUserNotFound)
}

func TestBadger_AppendDoesNotDeduplicate(t *testing.T) {
	s := setupBadger(t)
	id := createUser(t, s, "+100")

	snap := models.BookSnapshot{ISBN: "978-1", Title: "Dune", Price: decimal.RequireFromString("9.99")}
	require.NoError(t, s.AppendSnapshot(t.Context(), id, models.ListWishlist, snap))
	require.NoError(t, s.AppendSnapshot(t.Context(), id, models.ListWishlist, snap))

	u, err := s.FindUser(t.Context(), id)
	require.NoError(t, err)
	assert.Len(t, u.Wishlist, 2)
	assert.Empty(t, u.Cart)
	assert.True(t, u.Wishlist[0].Price.Equal(decimal.RequireFromString("9.99")))
}

func TestBadger_UpdatePublishedSnapshotFields(t *testing.T) {
	s := setupBadger(t)
	id := createUser(t, s, "+100")

	require.NoError(t, s.AppendSnapshot(t.Context(), id, models.ListPublished, models.BookSnapshot{ISBN: "978-1", Title: "Dune", Author: "Herbert"}))
	require.NoError(t, s.AppendSnapshot(t.Context(), id, models.ListWishlist, models.BookSnapshot{ISBN: "978-1", Title: "Dune"}))

	title := "Dune Messiah"
	n, err := s.UpdatePublishedSnapshotFields(t.Context(), id, "978-1", models.BookFields{Title: &title})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	u, err := s.FindUser(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", u.Published[0].Title)
	assert.Equal(t, "Herbert", u.Published[0].Author)
	assert.Equal(t, "Dune", u.Wishlist[0].Title, "wishlist copy must not follow the catalog")

	n, err = s.UpdatePublishedSnapshotFields(t.Context(), id, "978-404", models.BookFields{Title: &title})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.UpdatePublishedSnapshotFields(t.Context(), "usr-missing", "978-1", models.BookFields{Title: &title})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.UpdatePublishedSnapshotFields(t.Context(), id, "978-1", models.BookFields{})
	assert.ErrorIs(t, err, userdocs.ErrNoFields)
}

func TestBadger_RemoveSnapshotPullsAllMatches(t *testing.T) {
	s := setupBadger(t)
	id := createUser(t, s, "+100")

	for _, isbn := range []string{"978-1", "978-2", "978-1"} {
		require.NoError(t, s.AppendSnapshot(t.Context(), id, models.ListCart, models.BookSnapshot{ISBN: isbn}))
	}

	n, err := s.RemoveSnapshot(t.Context(), id, models.ListCart, "978-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	u, err := s.FindUser(t.Context(), id)
	require.NoError(t, err)
	require.Len(t, u.Cart, 1)
	assert.Equal(t, "978-2", u.Cart[0].ISBN)

	n, err = s.RemoveSnapshot(t.Context(), id, models.ListCart, "978-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBadger_ConcurrentAppendsAreAtomic(t *testing.T) {
	s := setupBadger(t)
	id := createUser(t, s, "+100")

	var wg sync.WaitGroup
	for i := range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := models.BookSnapshot{ISBN: "978-" + string(rune('a'+i))}
			assert.NoError(t, s.AppendSnapshot(t.Context(), id, models.ListCart, snap))
		}()
	}
	wg.Wait()

	u, err := s.FindUser(t.Context(), id)
	require.NoError(t, err)
	assert.Len(t, u.Cart, 3)
}
