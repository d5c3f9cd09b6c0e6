package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/pkg/errorbank"
)

// NewRootCommand builds the root shopkit CLI command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shopkit",
		Short:         "Local CLI tool for e-commerce merchants",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newProcessImagesCmd())
	root.AddCommand(newImportCustomersCmd())
	root.AddCommand(newExportCustomersCmd())
	root.AddCommand(newSearchCustomerCmd())
	root.AddCommand(newCreateOrderCmd())
	root.AddCommand(newShowOrdersCmd())
	root.AddCommand(newUpdateOrderCmd())
	root.AddCommand(newInitOrdersCmd())
	root.AddCommand(newSeedOrdersCmd())

	return root
}

// Execute runs the shopkit CLI. The returned error, if any, has already been
// reported on stderr; errorbank.From(err).ExitCode() gives the exit status.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, NewRootCommand()); err != nil {
		report(os.Stderr, err)
		return err
	}
	return nil
}

// run executes root and classifies the outcome. Errors returned by command
// bodies are already AppErrors; anything else comes from cobra rejecting the
// command line.
func run(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var appErr *errorbank.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return errorbank.Validation(err.Error())
}

// report writes err to w followed by its details, one per line in key order.
func report(w io.Writer, err error) {
	appErr := errorbank.From(err)
	fmt.Fprintf(w, "error: %v\n", appErr)
	details := appErr.Details()
	for _, key := range slices.Sorted(maps.Keys(details)) {
		fmt.Fprintf(w, "  %s: %v\n", key, details[key])
	}
}

func runWithApp(ctx context.Context, opts fx.Option, fn func(context.Context) error) error {
	application := fx.New(opts, fx.NopLogger)
	if err := application.Start(ctx); err != nil {
		var appErr *errorbank.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return errorbank.IO("start shopkit", errorbank.WithCause(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = application.Stop(stopCtx)
	}()

	if err := fn(ctx); err != nil {
		return errorbank.From(err)
	}
	return nil
}

// override applies per-invocation flag values on top of the loaded config.
func override(mutate func(*config.Config)) fx.Option {
	return fx.Decorate(func(cfg config.Config) config.Config {
		mutate(&cfg)
		return cfg
	})
}

// exactArgs is cobra.ExactArgs with argument names in the message.
func exactArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != len(names) {
			return errorbank.Validation(fmt.Sprintf("%s expects %d argument(s) %v, got %d",
				cmd.Name(), len(names), names, len(args)))
		}
		return nil
	}
}
