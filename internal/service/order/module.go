package order

import (
	"go.uber.org/fx"

	repo "github.com/Additional-Code/pastry/internal/repository/order"
)

// Module provides the order service to Fx, binding the concrete repository
// to the Store interface the service consumes.
var Module = fx.Options(
	fx.Provide(func(r *repo.Repository) Store { return r }),
	fx.Provide(NewService),
)
