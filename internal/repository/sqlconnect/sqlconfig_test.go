package sqlconnect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/5w1tchy/bookshelf-api/internal/config"
	"github.com/5w1tchy/bookshelf-api/internal/repository/sqlconnect"
)

func TestConnectDB_RequiresURL(t *testing.T) {
	_, err := sqlconnect.ConnectDB(t.Context(), config.PostgresConfig{})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestConnectDB_UnreachableServer(t *testing.T) {
	_, err := sqlconnect.ConnectDB(t.Context(), config.PostgresConfig{
		URL: "postgres://nobody@127.0.0.1:1/books?sslmode=disable&connect_timeout=1",
	})
	assert.ErrorContains(t, err, "ping postgres")
}
