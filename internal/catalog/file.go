package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileProvider serves the catalog from two JSON files loaded once at
// construction time. The loaded slices are never mutated afterwards, so the
// provider is safe for concurrent readers.
type FileProvider struct {
	stores []Store
	menu   []MenuItem
}

// NewFileProvider reads and decodes the stores and menu files.
func NewFileProvider(storesPath, menuPath string) (*FileProvider, error) {
	var p FileProvider
	if err := loadJSON(storesPath, &p.stores); err != nil {
		return nil, fmt.Errorf("catalog: load stores: %w", err)
	}
	if err := loadJSON(menuPath, &p.menu); err != nil {
		return nil, fmt.Errorf("catalog: load menu: %w", err)
	}
	return &p, nil
}

func (p *FileProvider) ListStores(ctx context.Context) ([]Store, error) {
	return p.stores, nil
}

func (p *FileProvider) ListMenuItems(ctx context.Context, storeID string) ([]MenuItem, error) {
	var items []MenuItem
	for _, it := range p.menu {
		if it.StoreID == storeID {
			items = append(items, it)
		}
	}
	return items, nil
}

func loadJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
