package http

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/buyerdesk/internal/presentation/http/middleware"
	auctiontransport "github.com/Additional-Code/buyerdesk/internal/transport/http/auction"
	companytransport "github.com/Additional-Code/buyerdesk/internal/transport/http/company"
	itemtransport "github.com/Additional-Code/buyerdesk/internal/transport/http/item"
	projecttransport "github.com/Additional-Code/buyerdesk/internal/transport/http/project"
	uploadtransport "github.com/Additional-Code/buyerdesk/internal/transport/http/upload"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	fx.Provide(middleware.NewAuth),
	projecttransport.Module,
	auctiontransport.Module,
	itemtransport.Module,
	companytransport.Module,
	uploadtransport.Module,
)
