package query

import (
	"testing"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSort(t *testing.T) {
	a := product(1, "banana", 30, "c1", domain.StatusActive)
	b := product(2, "Apple", 10, "c1", domain.StatusActive)
	c := product(3, "cherry", 20, "c1", domain.StatusActive)
	a.Views, b.Views, c.Views = 5, 50, 5

	tests := []struct {
		key  SortKey
		want []int64
	}{
		{SortNewest, []int64{3, 2, 1}},
		{SortOldest, []int64{1, 2, 3}},
		{SortPriceLow, []int64{2, 3, 1}},
		{SortPriceHigh, []int64{1, 3, 2}},
		{SortTitleAsc, []int64{2, 1, 3}},
		{SortTitleDesc, []int64{3, 1, 2}},
		{SortViews, []int64{2, 1, 3}},
		{"", []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			products := []domain.Product{a, b, c}
			Sort(products, tt.key)
			assert.Equal(t, tt.want, ids(products))
		})
	}
}

func TestSort_StableOnTies(t *testing.T) {
	products := []domain.Product{
		product(1, "A", 10, "c1", domain.StatusActive),
		product(2, "B", 5, "c1", domain.StatusActive),
		product(3, "C", 10, "c1", domain.StatusActive),
		product(4, "D", 10, "c1", domain.StatusActive),
	}

	Sort(products, SortPriceHigh)
	assert.Equal(t, []int64{1, 3, 4, 2}, ids(products))
}

func TestFilterListings(t *testing.T) {
	products := []domain.Product{
		product(1, "Bike", 100, "c1", domain.StatusActive),
		product(2, "Bike helmet", 20, "c1", domain.StatusSold),
		product(3, "Lamp", 15, "c1", domain.StatusDraft),
	}

	assert.Equal(t, []int64{1, 2, 3}, ids(FilterListings(products, StatusAll, "")))
	assert.Equal(t, []int64{2}, ids(FilterListings(products, "sold", "")))
	assert.Equal(t, []int64{1, 2}, ids(FilterListings(products, "", "BIKE")))
	assert.Empty(t, FilterListings(products, "draft", "bike"))
}

func TestStats(t *testing.T) {
	products := []domain.Product{
		product(1, "A", 100, "c1", domain.StatusActive),
		product(2, "B", 50, "c1", domain.StatusActive),
		product(3, "C", 40, "c1", domain.StatusSold),
		product(4, "D", 10, "c1", domain.StatusDraft),
	}
	products[0].Views, products[0].Favorites = 10, 2
	products[2].Views, products[2].Favorites = 5, 1

	s := Stats(products)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Active)
	assert.Equal(t, 1, s.Sold)
	assert.Equal(t, 0, s.Pending)
	assert.Equal(t, 1, s.Draft)
	assert.True(t, s.TotalValue.Equal(decimal.NewFromInt(150)))
	assert.True(t, s.AvgPrice.Equal(decimal.NewFromInt(75)))
	assert.True(t, s.TotalEarnings.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 15, s.TotalViews)
	assert.Equal(t, 3, s.TotalFavorites)
	assert.Equal(t, 4.5, s.EngagementRate)
	assert.Equal(t, 25.0, s.ConversionRate)
}

func TestStats_Empty(t *testing.T) {
	s := Stats(nil)

	assert.Zero(t, s.Total)
	assert.True(t, s.AvgPrice.IsZero())
	assert.Zero(t, s.EngagementRate)
	assert.Zero(t, s.ConversionRate)
}
