package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fjod/tradehub/internal/domain"
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortTitleAsc  SortKey = "title-asc"
	SortTitleDesc SortKey = "title-desc"
	SortViews     SortKey = "views"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNewest, SortOldest, SortPriceLow, SortPriceHigh, SortTitleAsc, SortTitleDesc, SortViews:
		return true
	}
	return false
}

// Sort orders products in place. It is stable, so ties keep their input order.
// An empty or unknown key leaves the order untouched.
func Sort(products []domain.Product, key SortKey) {
	var less func(a, b domain.Product) int
	switch key {
	case SortNewest:
		less = func(a, b domain.Product) int { return b.DatePosted.Compare(a.DatePosted) }
	case SortOldest:
		less = func(a, b domain.Product) int { return a.DatePosted.Compare(b.DatePosted) }
	case SortPriceLow:
		less = func(a, b domain.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceHigh:
		less = func(a, b domain.Product) int { return b.Price.Cmp(a.Price) }
	case SortTitleAsc:
		less = func(a, b domain.Product) int { return compareTitle(a, b) }
	case SortTitleDesc:
		less = func(a, b domain.Product) int { return compareTitle(b, a) }
	case SortViews:
		less = func(a, b domain.Product) int { return cmp.Compare(b.Views, a.Views) }
	default:
		return
	}
	slices.SortStableFunc(products, less)
}

func compareTitle(a, b domain.Product) int {
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}
