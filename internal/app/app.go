package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/pastry/internal/auth"
	"github.com/Additional-Code/pastry/internal/cache"
	"github.com/Additional-Code/pastry/internal/config"
	"github.com/Additional-Code/pastry/internal/database"
	"github.com/Additional-Code/pastry/internal/logger"
	"github.com/Additional-Code/pastry/internal/lookup"
	"github.com/Additional-Code/pastry/internal/messaging"
	"github.com/Additional-Code/pastry/internal/observability"
	repositoryorder "github.com/Additional-Code/pastry/internal/repository/order"
	httpserver "github.com/Additional-Code/pastry/internal/server/http"
	serviceorder "github.com/Additional-Code/pastry/internal/service/order"
	transporthttp "github.com/Additional-Code/pastry/internal/transport/http"
	"github.com/Additional-Code/pastry/internal/worker"
	workerorder "github.com/Additional-Code/pastry/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	auth.Module,
	cache.Module,
	database.Module,
	logger.Module,
	lookup.Module,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
