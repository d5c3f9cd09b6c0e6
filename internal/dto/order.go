package dto

import (
	"strconv"
	"time"

	"github.com/Additional-Code/shopkit/internal/entity"
)

// OrderColumns is the header of the order listing.
var OrderColumns = []string{"ID", "Customer", "Product", "Amount", "Status", "Date"}

// OrderRow represents an order as rendered by the command surface.
type OrderRow struct {
	ID        string
	Customer  string
	Product   string
	Amount    string
	Status    string
	CreatedAt string
}

// FromOrder formats order for display.
func FromOrder(order entity.Order) OrderRow {
	return OrderRow{
		ID:        strconv.FormatInt(order.ID, 10),
		Customer:  order.CustomerName,
		Product:   order.Product,
		Amount:    order.Amount.StringFixed(2),
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Cells returns the row in OrderColumns order.
func (r OrderRow) Cells() []string {
	return []string{r.ID, r.Customer, r.Product, r.Amount, r.Status, r.CreatedAt}
}
