package query

import (
	"math"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/shopspring/decimal"
)

// StatusAll disables the status filter of FilterListings.
const StatusAll = "all"

// FilterListings narrows a seller's listings by status and free text.
// Unlike Search it does not restrict to active listings.
func FilterListings(products []domain.Product, status string, text string) []domain.Product {
	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if status != "" && status != StatusAll && string(p.Status) != status {
			continue
		}
		if !containsText(p, text) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// ListingStats summarizes a seller's listings.
type ListingStats struct {
	Total          int             `json:"total"`
	Active         int             `json:"active"`
	Sold           int             `json:"sold"`
	Pending        int             `json:"pending"`
	Draft          int             `json:"draft"`
	TotalValue     decimal.Decimal `json:"totalValue"`
	TotalViews     int             `json:"totalViews"`
	TotalFavorites int             `json:"totalFavorites"`
	AvgPrice       decimal.Decimal `json:"avgPrice"`
	EngagementRate float64         `json:"engagementRate"`
	ConversionRate float64         `json:"conversionRate"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
}

// Stats computes listing statistics. Value and average price cover active
// listings, earnings cover sold ones. Rates are rounded to one decimal.
func Stats(products []domain.Product) ListingStats {
	s := ListingStats{
		Total:         len(products),
		TotalValue:    decimal.Zero,
		AvgPrice:      decimal.Zero,
		TotalEarnings: decimal.Zero,
	}

	for _, p := range products {
		switch p.Status {
		case domain.StatusActive:
			s.Active++
			s.TotalValue = s.TotalValue.Add(p.Price)
		case domain.StatusSold:
			s.Sold++
			s.TotalEarnings = s.TotalEarnings.Add(p.Price)
		case domain.StatusPending:
			s.Pending++
		case domain.StatusDraft:
			s.Draft++
		}
		s.TotalViews += p.Views
		s.TotalFavorites += p.Favorites
	}

	if s.Active > 0 {
		s.AvgPrice = s.TotalValue.Div(decimal.NewFromInt(int64(s.Active))).Round(2)
	}
	if s.Total > 0 {
		s.EngagementRate = round1(float64(s.TotalViews+s.TotalFavorites) / float64(s.Total))
		s.ConversionRate = round1(float64(s.Sold) / float64(s.Total) * 100)
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
