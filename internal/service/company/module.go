package company

import "go.uber.org/fx"

// Module provides the company service to Fx.
var Module = fx.Provide(NewService)
