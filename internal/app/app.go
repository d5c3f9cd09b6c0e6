package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/database"
	"github.com/Additional-Code/shopkit/internal/logger"
	"github.com/Additional-Code/shopkit/internal/migration"
	"github.com/Additional-Code/shopkit/internal/observability"
	repositorycustomer "github.com/Additional-Code/shopkit/internal/repository/customer"
	repositoryorder "github.com/Additional-Code/shopkit/internal/repository/order"
	"github.com/Additional-Code/shopkit/internal/seeder"
	servicecustomer "github.com/Additional-Code/shopkit/internal/service/customer"
	serviceimage "github.com/Additional-Code/shopkit/internal/service/image"
	serviceorder "github.com/Additional-Code/shopkit/internal/service/order"
)

// Core provides the ambient modules every command needs.
var Core = fx.Options(
	config.Module,
	logger.Module,
	observability.Module,
)

// Orders wires the order store. The database is only opened when a command
// asks for something that depends on it.
var Orders = fx.Options(
	database.Module,
	migration.Module,
	repositoryorder.Module,
	serviceorder.Module,
	seeder.Module,
)

// Customers wires the CSV customer ledger.
var Customers = fx.Options(
	repositorycustomer.Module,
	servicecustomer.Module,
)

// Images wires the product image pipeline.
var Images = fx.Options(
	serviceimage.Module,
)

// Module is the full application graph.
var Module = fx.Options(
	Core,
	Orders,
	Customers,
	Images,
)
