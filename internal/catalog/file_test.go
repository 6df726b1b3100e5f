package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileProvider_LoadsBothFiles(t *testing.T) {
	p, err := NewFileProvider(
		filepath.Join("testdata", "stores.json"),
		filepath.Join("testdata", "menu.json"),
	)
	require.NoError(t, err)

	stores, err := p.ListStores(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "msk-1", stores[0].ID)
	assert.Equal(t, "Moscow", stores[0].City)

	items, err := p.ListMenuItems(context.Background(), "msk-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "pepperoni", items[0].ID)
	assert.Equal(t, int64(64900), items[0].Sizes["M"])
}

func TestFileProvider_UnknownStoreHasEmptyMenu(t *testing.T) {
	p, err := NewFileProvider(
		filepath.Join("testdata", "stores.json"),
		filepath.Join("testdata", "menu.json"),
	)
	require.NoError(t, err)

	items, err := p.ListMenuItems(context.Background(), "kzn-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewFileProvider_MissingFile(t *testing.T) {
	_, err := NewFileProvider(
		filepath.Join("testdata", "absent.json"),
		filepath.Join("testdata", "menu.json"),
	)
	assert.Error(t, err)
}
