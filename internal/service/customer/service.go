package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/entity"
	repo "github.com/Additional-Code/shopkit/internal/repository/customer"
	"github.com/Additional-Code/shopkit/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/shopkit/service/customer")
	serviceMeter  = otel.Meter("github.com/Additional-Code/shopkit/service/customer")
)

// Service manages the customer ledger: a CSV file holding at most one row per
// email address.
type Service struct {
	repo     *repo.Repository
	logger   *zap.Logger
	ledger   string
	imported metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) (*Service, error) {
	imported, err := serviceMeter.Int64Counter("shopkit.customers.imported",
		metric.WithDescription("Customer rows read from import files"))
	if err != nil {
		return nil, err
	}
	return &Service{
		repo:     p.Repository,
		logger:   p.Logger,
		ledger:   p.Config.Customers.LedgerFile,
		imported: imported,
	}, nil
}

// Import merges the rows of source into the ledger and returns the number of
// rows read from source. Rows are keyed by email: iterating existing rows and
// then imported rows, a later row replaces an earlier one with the same email
// while keeping the earlier row's position.
func (s *Service) Import(ctx context.Context, source string) (int, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Import", trace.WithAttributes(
		attribute.String("customer.source", source),
		attribute.String("customer.ledger", s.ledger),
	))
	defer span.End()

	incoming, err := s.repo.Load(ctx, source)
	if err != nil {
		span.SetStatus(codes.Error, "load source failed")
		return 0, s.loadError("import customers from", source, err)
	}
	if incoming.ColumnIndex(entity.EmailColumn) < 0 {
		span.SetStatus(codes.Error, "missing email column")
		return 0, errorbank.Validation(fmt.Sprintf("import customers from %s: no %q column in header", source, entity.EmailColumn),
			errorbank.WithDetail("header", incoming.Header))
	}

	existing, err := s.repo.Load(ctx, s.ledger)
	switch {
	case errors.Is(err, repo.ErrFileMissing):
		existing = &entity.CustomerTable{Header: incoming.Header}
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "load ledger failed")
		return 0, s.loadError("read ledger", s.ledger, err)
	case existing.ColumnIndex(entity.EmailColumn) < 0:
		span.SetStatus(codes.Error, "ledger missing email column")
		return 0, errorbank.Validation(fmt.Sprintf("read ledger %s: no %q column in header", s.ledger, entity.EmailColumn))
	}

	if dropped := s.project(existing, incoming); len(dropped) > 0 {
		s.logger.Warn("imported columns not in ledger were dropped",
			zap.String("source", source),
			zap.Strings("columns", dropped),
		)
	}

	merged := Merge(existing, incoming)
	if err := s.repo.Save(ctx, s.ledger, merged); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save ledger failed")
		return 0, errorbank.IO(fmt.Sprintf("write ledger %s", s.ledger), errorbank.WithCause(err))
	}

	count := incoming.Len()
	s.imported.Add(ctx, int64(count))
	span.SetAttributes(attribute.Int("customer.read", count), attribute.Int("customer.ledger_rows", merged.Len()))
	s.logger.Info("customers imported",
		zap.String("source", source),
		zap.Int("read", count),
		zap.Int("ledger_rows", merged.Len()),
	)
	return count, nil
}

// Export copies the ledger verbatim to dest and returns its row count. A
// missing ledger exports nothing and is not an error.
func (s *Service) Export(ctx context.Context, dest string) (int, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Export", trace.WithAttributes(
		attribute.String("customer.ledger", s.ledger),
		attribute.String("customer.dest", dest),
	))
	defer span.End()

	n, err := s.repo.Copy(ctx, s.ledger, dest)
	if errors.Is(err, repo.ErrFileMissing) {
		s.logger.Info("ledger does not exist; nothing exported", zap.String("ledger", s.ledger))
		return 0, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "export failed")
		return 0, errorbank.IO(fmt.Sprintf("export ledger %s to %s", s.ledger, dest), errorbank.WithCause(err))
	}
	return n, nil
}

// Search returns the ledger rows where any cell contains query, ignoring
// case, in ledger order. A missing ledger yields an empty table.
func (s *Service) Search(ctx context.Context, query string) (*entity.CustomerTable, error) {
	ctx, span := serviceTracer.Start(ctx, "CustomerService.Search", trace.WithAttributes(
		attribute.String("customer.ledger", s.ledger),
	))
	defer span.End()

	table, err := s.repo.Load(ctx, s.ledger)
	if errors.Is(err, repo.ErrFileMissing) {
		return &entity.CustomerTable{Rows: []entity.Customer{}}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load ledger failed")
		return nil, s.loadError("search ledger", s.ledger, err)
	}

	needle := strings.ToLower(query)
	result := &entity.CustomerTable{Header: table.Header, Rows: make([]entity.Customer, 0)}
	for _, row := range table.Rows {
		if row.Contains(needle) {
			result.Rows = append(result.Rows, row)
		}
	}
	span.SetAttributes(attribute.Int("customer.matches", result.Len()))
	return result, nil
}

// project rewrites incoming onto the ledger's header in place and returns the
// incoming columns the ledger does not have.
func (s *Service) project(ledger, incoming *entity.CustomerTable) []string {
	index := make([]int, len(ledger.Header))
	for i, col := range ledger.Header {
		index[i] = incoming.ColumnIndex(col)
	}

	var dropped []string
	for _, col := range incoming.Header {
		if ledger.ColumnIndex(col) < 0 {
			dropped = append(dropped, col)
		}
	}

	rows := make([]entity.Customer, len(incoming.Rows))
	for r, src := range incoming.Rows {
		row := make(entity.Customer, len(ledger.Header))
		for i, from := range index {
			if from >= 0 && from < len(src) {
				row[i] = src[from]
			}
		}
		rows[r] = row
	}
	incoming.Header = ledger.Header
	incoming.Rows = rows
	return dropped
}

func (s *Service) loadError(op, path string, err error) error {
	switch {
	case errors.Is(err, repo.ErrFileMissing):
		return errorbank.NotFound(fmt.Sprintf("%s %s: file does not exist", op, path))
	case errors.Is(err, repo.ErrNoHeader):
		return errorbank.Validation(fmt.Sprintf("%s %s: missing header row", op, path))
	case errors.Is(err, repo.ErrRowTooLong):
		return errorbank.Validation(fmt.Sprintf("%s %s", op, path), errorbank.WithCause(err))
	default:
		return errorbank.IO(fmt.Sprintf("%s %s", op, path), errorbank.WithCause(err))
	}
}

// Merge concatenates existing and incoming, which must share a header, and
// keeps one row per email. The last occurrence of an email supplies the row;
// the first occurrence fixes its position.
func Merge(existing, incoming *entity.CustomerTable) *entity.CustomerTable {
	emailIdx := existing.ColumnIndex(entity.EmailColumn)

	merged := &entity.CustomerTable{
		Header: existing.Header,
		Rows:   make([]entity.Customer, 0, existing.Len()+incoming.Len()),
	}
	positions := make(map[string]int, existing.Len()+incoming.Len())

	for _, table := range []*entity.CustomerTable{existing, incoming} {
		for _, row := range table.Rows {
			key := ""
			if emailIdx < len(row) {
				key = row[emailIdx]
			}
			if pos, ok := positions[key]; ok {
				merged.Rows[pos] = row
				continue
			}
			positions[key] = len(merged.Rows)
			merged.Rows = append(merged.Rows, row)
		}
	}
	return merged
}
