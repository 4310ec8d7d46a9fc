package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusInTransit  OrderStatus = "in_transit"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusInTransit, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the order still counts as pending for stats.
func (s OrderStatus) IsOpen() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

type OrderProduct struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

type OrderSeller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Order struct {
	ID                int64           `json:"Id"`
	UserID            int64           `json:"userId"`
	OrderNumber       string          `json:"orderNumber"`
	Status            OrderStatus     `json:"status"`
	Price             decimal.Decimal `json:"price"`
	OrderDate         time.Time       `json:"orderDate"`
	Product           OrderProduct    `json:"product"`
	Seller            OrderSeller     `json:"seller"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	Carrier           string          `json:"carrier,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
}
