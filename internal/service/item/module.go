package item

import "go.uber.org/fx"

// Module provides the item service to Fx.
var Module = fx.Provide(NewService)
