package customer

import "go.uber.org/fx"

// Module provides the customer ledger service to Fx.
var Module = fx.Provide(NewService)
