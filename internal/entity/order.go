package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
)

// OrderStatuses lists every recognised status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusShipped, OrderStatusCompleted}

// ParseOrderStatus validates s against the recognised statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown order status %q (want pending, shipped or completed)", s)
	}
	return status, nil
}

// Valid reports whether s is a recognised status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string { return string(s) }

// Order represents a purchase order stored in the relational database.
// Only Status changes after creation.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID           int64           `bun:",pk,autoincrement"`
	CustomerName string          `bun:"customer_name,notnull"`
	Product      string          `bun:"product,notnull"`
	Amount       decimal.Decimal `bun:"amount,type:real,notnull"`
	Status       OrderStatus     `bun:"status,notnull,default:'pending'"`
	CreatedAt    time.Time       `bun:"created_at,notnull"`
}
