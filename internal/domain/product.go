package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle state of a listing
type ProductStatus string

const (
	StatusDraft   ProductStatus = "draft"
	StatusActive  ProductStatus = "active"
	StatusSold    ProductStatus = "sold"
	StatusPending ProductStatus = "pending"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusSold, StatusPending:
		return true
	}
	return false
}

// Condition is the physical state of a listed item
type Condition string

const (
	ConditionLikeNew     Condition = "Like New"
	ConditionUsed        Condition = "Used"
	ConditionRefurbished Condition = "Refurbished"
)

// Conditions lists every accepted condition in display order.
var Conditions = []Condition{ConditionLikeNew, ConditionUsed, ConditionRefurbished}

func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a single marketplace listing.
type Product struct {
	ID          int64           `json:"Id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Condition   Condition       `json:"condition"`
	Category    string          `json:"category"`
	Location    string          `json:"location"`
	Images      []string        `json:"images"`
	Tags        []string        `json:"tags"`
	SellerID    string          `json:"sellerId"`
	Status      ProductStatus   `json:"status"`
	DatePosted  time.Time       `json:"datePosted"`
	Promoted    bool            `json:"promoted"`
	Views       int             `json:"views"`
	Favorites   int             `json:"favorites"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (p Product) Clone() Product {
	c := p
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	return c
}

// ProductPatch holds the updatable fields of a product; nil means unchanged.
type ProductPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Condition   *Condition       `json:"condition,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Location    *string          `json:"location,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Status      *ProductStatus   `json:"status,omitempty"`
	Promoted    *bool            `json:"promoted,omitempty"`
}

// Apply writes the non-nil patch fields onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Condition != nil {
		p.Condition = *pp.Condition
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Location != nil {
		p.Location = *pp.Location
	}
	if pp.Images != nil {
		p.Images = append([]string(nil), pp.Images...)
	}
	if pp.Tags != nil {
		p.Tags = append([]string(nil), pp.Tags...)
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	if pp.Promoted != nil {
		p.Promoted = *pp.Promoted
	}
}
