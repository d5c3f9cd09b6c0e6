package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/shopkit/internal/app"
	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/presentation/terminal/response"
	customersvc "github.com/Additional-Code/shopkit/internal/service/customer"
)

const ledgerFileFlag = "db-file"

func addLedgerFileFlag(cmd *cobra.Command) {
	cmd.Flags().String(ledgerFileFlag, config.DefaultCustomersFile, "Customer ledger CSV file")
}

func withCustomers(cmd *cobra.Command, fn func(context.Context, *customersvc.Service) error) error {
	var svc *customersvc.Service
	opts := []fx.Option{app.Core, app.Customers, fx.Populate(&svc)}
	if cmd.Flags().Changed(ledgerFileFlag) {
		file, _ := cmd.Flags().GetString(ledgerFileFlag)
		opts = append(opts, override(func(cfg *config.Config) {
			cfg.Customers.LedgerFile = file
		}))
	}
	return runWithApp(cmd.Context(), fx.Options(opts...), func(ctx context.Context) error {
		return fn(ctx, svc)
	})
}

func newImportCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-customer-data <csv>",
		Short: "Merge customers from a CSV file into the ledger",
		Args:  exactArgs("csv"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCustomers(cmd, func(ctx context.Context, svc *customersvc.Service) error {
				n, err := svc.Import(ctx, args[0])
				if err != nil {
					return err
				}
				return response.New(cmd.OutOrStdout()).
					WithMessage("Imported %d customers", n).
					Build()
			})
		},
	}
	addLedgerFileFlag(cmd)
	return cmd
}

func newExportCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-customer-data <csv>",
		Short: "Copy the customer ledger to a CSV file",
		Args:  exactArgs("csv"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCustomers(cmd, func(ctx context.Context, svc *customersvc.Service) error {
				n, err := svc.Export(ctx, args[0])
				if err != nil {
					return err
				}
				return response.New(cmd.OutOrStdout()).
					WithMessage("Exported %d customers", n).
					Build()
			})
		},
	}
	addLedgerFileFlag(cmd)
	return cmd
}

func newSearchCustomerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search-customer <query>",
		Short: "Find customers with any field containing query",
		Args:  exactArgs("query"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCustomers(cmd, func(ctx context.Context, svc *customersvc.Service) error {
				table, err := svc.Search(ctx, args[0])
				if err != nil {
					return err
				}
				out := response.New(cmd.OutOrStdout()).
					WithTitle("Search Results").
					WithColumns(table.Header...).
					WithEmpty("No customers found")
				for _, row := range table.Rows {
					out.WithRow(row...)
				}
				return out.Build()
			})
		},
	}
	addLedgerFileFlag(cmd)
	return cmd
}
