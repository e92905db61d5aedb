package db

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreGooseAnnotated(t *testing.T) {
	names, err := fs.Glob(Migrations(), "*.sql")
	require.NoError(t, err)
	require.Contains(t, names, "0001_init.sql")

	for _, name := range names {
		body, err := fs.ReadFile(Migrations(), name)
		require.NoError(t, err)
		text := string(body)
		assert.True(t, strings.HasPrefix(text, "-- +goose Up\n"), name)
		assert.Contains(t, text, "-- +goose Down\n", name)
	}
}

func TestInitMigrationDownDropsEveryTable(t *testing.T) {
	body, err := fs.ReadFile(Migrations(), "0001_init.sql")
	require.NoError(t, err)
	up, down, ok := strings.Cut(string(body), "-- +goose Down")
	require.True(t, ok)

	created := regexp.MustCompile(`CREATE TABLE IF NOT EXISTS (\w+)`).FindAllStringSubmatch(up, -1)
	require.NotEmpty(t, created)
	for _, m := range created {
		assert.Contains(t, down, "DROP TABLE IF EXISTS "+m[1]+";")
	}
}
