// Package catalog supplies read-only store and menu data. The rest of the
// system treats it as an injected dependency, never as ambient global state,
// so tests can substitute a stub.
package catalog

import "context"

// Store is one pizzeria location.
type Store struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// MenuItem is one orderable item. Sizes maps a size variant (e.g. "S", "M",
// "L") to its unit price in minor currency units.
type MenuItem struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	StoreID string           `json:"store_id"`
	Sizes   map[string]int64 `json:"sizes"`
}

// Provider is the read-only catalog port. The core never mutates catalog data.
type Provider interface {
	ListStores(ctx context.Context) ([]Store, error)
	ListMenuItems(ctx context.Context, storeID string) ([]MenuItem, error)
}

// FindStore returns the store with the given id, or false.
func FindStore(stores []Store, id string) (Store, bool) {
	for _, s := range stores {
		if s.ID == id {
			return s, true
		}
	}
	return Store{}, false
}

// FilterByCity keeps only stores in the given city. An empty city, or a city
// matching no store, returns all stores so the caller always has something to
// show.
func FilterByCity(stores []Store, city string) []Store {
	if city == "" {
		return stores
	}
	var out []Store
	for _, s := range stores {
		if s.City == city {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return stores
	}
	return out
}
