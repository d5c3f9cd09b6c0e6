package order

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/entity"
	repo "github.com/Additional-Code/shopkit/internal/repository/order"
	"github.com/Additional-Code/shopkit/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/shopkit/service/order")
	serviceMeter  = otel.Meter("github.com/Additional-Code/shopkit/service/order")
)

// Service encapsulates business logic around orders.
type Service struct {
	repo     *repo.Repository
	logger   *zap.Logger
	validate *validator.Validate
	location string
	now      func() time.Time
	created  metric.Int64Counter
	updated  metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Config     config.Config
	Logger     *zap.Logger
}

// CreateInput carries the caller-supplied fields of a new order.
type CreateInput struct {
	CustomerName string          `label:"customer name" validate:"required"`
	Product      string          `label:"product" validate:"required"`
	Amount       decimal.Decimal `label:"amount"`
}

// NewService wires a new Service instance.
func NewService(p Params) (*Service, error) {
	created, err := serviceMeter.Int64Counter("shopkit.orders.created",
		metric.WithDescription("Orders inserted into the order store"))
	if err != nil {
		return nil, err
	}
	updated, err := serviceMeter.Int64Counter("shopkit.orders.status_updated",
		metric.WithDescription("Order status changes"))
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})

	return &Service{
		repo:     p.Repository,
		logger:   p.Logger,
		validate: validate,
		location: p.Config.Orders.DSN,
		now:      time.Now,
		created:  created,
		updated:  updated,
	}, nil
}

// Location returns the data source name of the order store.
func (s *Service) Location() string {
	return s.location
}

// Create validates in and stores it as a pending order.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create")
	defer span.End()

	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Product = strings.TrimSpace(in.Product)
	if err := s.validateInput(in); err != nil {
		span.SetStatus(codes.Error, "invalid input")
		return nil, err
	}

	order := &entity.Order{
		CustomerName: in.CustomerName,
		Product:      in.Product,
		Amount:       in.Amount,
		Status:       entity.OrderStatusPending,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.IO(fmt.Sprintf("create order in %s", s.location), errorbank.WithCause(err))
	}

	s.created.Add(ctx, 1)
	span.SetAttributes(attribute.Int64("order.id", order.ID))
	s.logger.Info("order created",
		zap.Int64("id", order.ID),
		zap.String("product", order.Product),
		zap.String("amount", order.Amount.String()),
	)
	return order, nil
}

// Get retrieves an order by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound(fmt.Sprintf("order #%d not found in %s", id, s.location))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.IO(fmt.Sprintf("load order #%d from %s", id, s.location), errorbank.WithCause(err))
	}
	return order, nil
}

// List returns every order, or only those in status when it is non-empty, in
// ascending id order.
func (s *Service) List(ctx context.Context, status string) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List", trace.WithAttributes(attribute.String("order.status", status)))
	defer span.End()

	var filter entity.OrderStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := entity.ParseOrderStatus(status)
		if err != nil {
			return nil, errorbank.Validation(err.Error(), errorbank.WithDetail("status", status))
		}
		filter = parsed
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.IO(fmt.Sprintf("list orders from %s", s.location), errorbank.WithCause(err))
	}
	return orders, nil
}

// UpdateStatus moves order id to status. Any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", status),
	))
	defer span.End()

	next, err := entity.ParseOrderStatus(status)
	if err != nil {
		return nil, errorbank.Validation(err.Error(), errorbank.WithDetail("status", status))
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound(fmt.Sprintf("order #%d not found in %s", id, s.location))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.IO(fmt.Sprintf("update order #%d in %s", id, s.location), errorbank.WithCause(err))
	}

	s.updated.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(next))))
	s.logger.Info("order status updated", zap.Int64("id", id), zap.String("status", string(next)))

	return s.Get(ctx, id)
}

func (s *Service) validateInput(in CreateInput) error {
	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errorbank.Validation(fmt.Sprintf("%s is required", fe.Field()),
				errorbank.WithDetail("field", fe.Field()))
		}
		return errorbank.Validation("invalid order", errorbank.WithCause(err))
	}
	if in.Amount.IsNegative() {
		return errorbank.Validation(fmt.Sprintf("amount must not be negative (got %s)", in.Amount),
			errorbank.WithDetail("field", "amount"))
	}
	return nil
}
