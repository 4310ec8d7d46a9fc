package store

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/fjod/tradehub/internal/domain"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Seed is the initial catalog content.
type Seed struct {
	Products   []domain.Product
	Categories []domain.Category
	Sellers    []domain.Seller
	Orders     []domain.Order
}

// LoadFixtures decodes the embedded marketplace fixture.
func LoadFixtures() (Seed, error) {
	var seed Seed
	files := []struct {
		name string
		dst  any
	}{
		{"fixtures/products.json", &seed.Products},
		{"fixtures/categories.json", &seed.Categories},
		{"fixtures/sellers.json", &seed.Sellers},
		{"fixtures/orders.json", &seed.Orders},
	}

	for _, f := range files {
		data, err := fixtures.ReadFile(f.name)
		if err != nil {
			return Seed{}, fmt.Errorf("read fixture %s: %w", f.name, err)
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return Seed{}, fmt.Errorf("decode fixture %s: %w", f.name, err)
		}
	}
	return seed, nil
}
