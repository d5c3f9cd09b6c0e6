package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/shopkit/internal/app"
	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/dto"
	"github.com/Additional-Code/shopkit/internal/migration"
	"github.com/Additional-Code/shopkit/internal/presentation/terminal/response"
	"github.com/Additional-Code/shopkit/internal/seeder"
	ordersvc "github.com/Additional-Code/shopkit/internal/service/order"
	"github.com/Additional-Code/shopkit/pkg/errorbank"
)

const ordersFileFlag = "db-file"

func addOrdersFileFlag(cmd *cobra.Command) {
	cmd.Flags().String(ordersFileFlag, config.DefaultOrdersDSN, "Order database file")
}

// ordersOptions builds the fx graph for order commands, pointing the store at
// --db-file when the flag was given.
func ordersOptions(cmd *cobra.Command, populate ...any) fx.Option {
	opts := []fx.Option{app.Core, app.Orders, fx.Populate(populate...)}
	if cmd.Flags().Changed(ordersFileFlag) {
		dsn, _ := cmd.Flags().GetString(ordersFileFlag)
		opts = append(opts, override(func(cfg *config.Config) {
			cfg.Orders.DSN = dsn
		}))
	}
	return fx.Options(opts...)
}

// withOrders initialises the order table and hands the service to fn.
func withOrders(cmd *cobra.Command, fn func(context.Context, *ordersvc.Service) error) error {
	var (
		mig *migration.Migrator
		svc *ordersvc.Service
	)
	return runWithApp(cmd.Context(), ordersOptions(cmd, &mig, &svc), func(ctx context.Context) error {
		if err := mig.Up(ctx); err != nil {
			return errorbank.IO("initialise order store", errorbank.WithCause(err))
		}
		return fn(ctx, svc)
	})
}

func newCreateOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-order",
		Short: "Record a new order",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("customer-name")
			product, _ := cmd.Flags().GetString("product")
			rawAmount, _ := cmd.Flags().GetString("amount")

			amount, err := decimal.NewFromString(rawAmount)
			if err != nil {
				return errorbank.Validation(fmt.Sprintf("invalid amount %q", rawAmount),
					errorbank.WithDetail("field", "amount"))
			}

			return withOrders(cmd, func(ctx context.Context, svc *ordersvc.Service) error {
				order, err := svc.Create(ctx, ordersvc.CreateInput{
					CustomerName: name,
					Product:      product,
					Amount:       amount,
				})
				if err != nil {
					return err
				}
				return response.New(cmd.OutOrStdout()).
					WithMessage("Created order #%d", order.ID).
					Build()
			})
		},
	}
	cmd.Flags().String("customer-name", "", "Customer name")
	cmd.Flags().String("product", "", "Product name")
	cmd.Flags().String("amount", "", "Order amount")
	_ = cmd.MarkFlagRequired("customer-name")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("amount")
	addOrdersFileFlag(cmd)
	return cmd
}

func newShowOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-orders",
		Short: "List orders, optionally filtered by status",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			return withOrders(cmd, func(ctx context.Context, svc *ordersvc.Service) error {
				orders, err := svc.List(ctx, status)
				if err != nil {
					return err
				}
				out := response.New(cmd.OutOrStdout()).
					WithTitle("Orders").
					WithColumns(dto.OrderColumns...).
					WithEmpty("No orders found")
				for _, order := range orders {
					out.WithRow(dto.FromOrder(order).Cells()...)
				}
				return out.Build()
			})
		},
	}
	cmd.Flags().String("status", "", "Only show orders with this status (pending, shipped, completed)")
	addOrdersFileFlag(cmd)
	return cmd
}

func newUpdateOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-order <id> <status>",
		Short: "Change the status of an order",
		Args:  exactArgs("id", "status"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errorbank.Validation(fmt.Sprintf("invalid order id %q", args[0]),
					errorbank.WithDetail("field", "id"))
			}
			return withOrders(cmd, func(ctx context.Context, svc *ordersvc.Service) error {
				order, err := svc.UpdateStatus(ctx, id, args[1])
				if err != nil {
					return err
				}
				return response.New(cmd.OutOrStdout()).
					WithMessage("Updated order #%d to %s", order.ID, order.Status).
					Build()
			})
		},
	}
	addOrdersFileFlag(cmd)
	return cmd
}

func newInitOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-orders",
		Short: "Create the order table if it does not exist",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrders(cmd, func(ctx context.Context, svc *ordersvc.Service) error {
				return response.New(cmd.OutOrStdout()).
					WithMessage("Order store ready at %s", svc.Location()).
					Build()
			})
		},
	}
	addOrdersFileFlag(cmd)
	return cmd
}

func newSeedOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-orders",
		Short: "Insert sample orders for local trials",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *seeder.Seeder
			var mig *migration.Migrator
			return runWithApp(cmd.Context(), ordersOptions(cmd, &mig, &seed), func(ctx context.Context) error {
				if err := mig.Up(ctx); err != nil {
					return errorbank.IO("initialise order store", errorbank.WithCause(err))
				}
				n, err := seed.Orders(ctx)
				if err != nil {
					return err
				}
				return response.New(cmd.OutOrStdout()).
					WithMessage("Seeded %d orders", n).
					Build()
			})
		},
	}
	addOrdersFileFlag(cmd)
	return cmd
}
