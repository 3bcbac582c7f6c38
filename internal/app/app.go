package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/buyerdesk/internal/cache"
	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/database"
	"github.com/Additional-Code/buyerdesk/internal/logger"
	"github.com/Additional-Code/buyerdesk/internal/messaging"
	"github.com/Additional-Code/buyerdesk/internal/notification"
	"github.com/Additional-Code/buyerdesk/internal/observability"
	"github.com/Additional-Code/buyerdesk/internal/repository"
	grpcserver "github.com/Additional-Code/buyerdesk/internal/server/grpc"
	httpserver "github.com/Additional-Code/buyerdesk/internal/server/http"
	serviceauction "github.com/Additional-Code/buyerdesk/internal/service/auction"
	servicecompany "github.com/Additional-Code/buyerdesk/internal/service/company"
	serviceitem "github.com/Additional-Code/buyerdesk/internal/service/item"
	serviceproject "github.com/Additional-Code/buyerdesk/internal/service/project"
	"github.com/Additional-Code/buyerdesk/internal/storage"
	transporthttp "github.com/Additional-Code/buyerdesk/internal/transport/http"
	"github.com/Additional-Code/buyerdesk/internal/worker"
	workernotification "github.com/Additional-Code/buyerdesk/internal/worker/notification"
)

// Infra provides configuration, logging and connections without any
// domain services. Used by the maintenance commands.
var Infra = fx.Options(
	config.Module,
	logger.Module,
	observability.Module,
	database.Module,
	repository.Module,
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	Infra,
	cache.Module,
	messaging.Module,
	storage.Module,
	notification.Module,
	serviceproject.Module,
	serviceauction.Module,
	serviceitem.Module,
	servicecompany.Module,
)

// HTTP wires the HTTP and gRPC transports on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workernotification.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
