package domain

import "time"

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Count int    `json:"count"`
}

type Seller struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	Rating      float64   `json:"rating"`
	TotalSales  int       `json:"totalSales"`
	MemberSince time.Time `json:"memberSince"`
}

// ClampRating keeps the rating inside the 0-5 range.
func (s *Seller) ClampRating() {
	switch {
	case s.Rating < 0:
		s.Rating = 0
	case s.Rating > 5:
		s.Rating = 5
	}
}
