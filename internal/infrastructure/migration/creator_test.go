package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	pair, err := Create(dir, "add products table")
	require.NoError(t, err)

	assert.Len(t, pair.Version, 14)
	assert.True(t, strings.HasSuffix(pair.UpPath, "_add_products_table.up.sql"))
	assert.True(t, strings.HasSuffix(pair.DownPath, "_add_products_table.down.sql"))

	up, err := os.ReadFile(pair.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add products table")

	_, err = os.Stat(pair.DownPath)
	assert.NoError(t, err)
}

func TestCreateMakesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/migrations"

	_, err := Create(dir, "init")
	require.NoError(t, err)

	names, err := List(dir)
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestList(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		"001_products.up.sql", "001_products.down.sql",
		"002_users.up.sql", "002_users.down.sql",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(dir+"/"+name, []byte("-- x\n"), 0o644))
	}

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_products", "002_users"}, names)
}

func TestListMissingDirectory(t *testing.T) {
	names, err := List(t.TempDir() + "/does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"add products table", "add_products_table"},
		{"Add-Subscriptions", "add_subscriptions"},
		{"v2 schema!!", "v2_schema"},
		{"  spaced  out  ", "spaced_out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), tt.in)
	}
}
