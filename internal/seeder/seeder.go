package seeder

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	ordersvc "github.com/Additional-Code/shopkit/internal/service/order"
)

// Module provides the demo data seeder to Fx.
var Module = fx.Provide(New)

// Seeder fills a fresh order store with demo orders for local trials.
type Seeder struct {
	orders *ordersvc.Service
	logger *zap.Logger
}

// New constructs a Seeder on top of the order service.
func New(orders *ordersvc.Service, logger *zap.Logger) *Seeder {
	return &Seeder{orders: orders, logger: logger}
}

// Orders inserts the sample orders, moving some of them along the status
// lifecycle, and returns how many orders were created.
func (s *Seeder) Orders(ctx context.Context) (int, error) {
	samples := []struct {
		customer string
		product  string
		amount   string
		status   string
	}{
		{"Ada Lovelace", "Ceramic mug", "14.90", "completed"},
		{"Grace Hopper", "Canvas tote bag", "22.00", "shipped"},
		{"Alan Turing", "Enamel pin set", "9.50", ""},
	}

	created := 0
	for _, sample := range samples {
		order, err := s.orders.Create(ctx, ordersvc.CreateInput{
			CustomerName: sample.customer,
			Product:      sample.product,
			Amount:       decimal.RequireFromString(sample.amount),
		})
		if err != nil {
			return created, err
		}
		created++

		if sample.status == "" {
			continue
		}
		if _, err := s.orders.UpdateStatus(ctx, order.ID, sample.status); err != nil {
			return created, err
		}
	}

	s.logger.Info("seeded orders", zap.Int("count", created))
	return created, nil
}
