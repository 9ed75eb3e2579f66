package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/pastry/internal/database"
	"github.com/Additional-Code/pastry/internal/entity"
)

// Module provides the Seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// MenuItems seeds the local menu copy used by the order read paths.
func (s *Seeder) MenuItems(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.MenuItem{
		{ID: 1, RestaurantID: 1, Name: "Chocolate Croissant", Price: 35000, Description: "Delicious chocolate filled croissant", CreatedAt: now},
		{ID: 2, RestaurantID: 1, Name: "Strawberry Tart", Price: 45000, Description: "Fresh strawberry tart with cream", CreatedAt: now},
		{ID: 3, RestaurantID: 1, Name: "Vanilla Donut", Price: 25000, Description: "Soft vanilla donut with glaze", CreatedAt: now},
		{ID: 4, RestaurantID: 1, Name: "Matcha Cake", Price: 55000, Description: "Premium matcha cake", CreatedAt: now},
	}

	for _, sample := range samples {
		item := sample
		_, err := s.db.NewInsert().Model(&item).
			On("DUPLICATE KEY UPDATE").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded menu items", zap.Int("count", len(samples)))
	}
	return nil
}

// Orders seeds a couple of demo orders if the table is empty.
func (s *Seeder) Orders(ctx context.Context) error {
	count, err := s.db.NewSelect().Model((*entity.Order)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	samples := []*entity.Order{
		{
			CustomerID:       1,
			CustomerUsername: "customer",
			CustomerName:     "John Doe",
			CustomerEmail:    "john@example.com",
			CustomerPhone:    "081234567890",
			DeliveryAddress:  "Jl. Sudirman No. 1, Jakarta",
			PaymentMethod:    "cash",
			TotalPrice:       70000,
			Tax:              7000,
			Status:           entity.StatusOnProcess,
			CreatedAt:        now,
			UpdatedAt:        now,
			Items: []*entity.OrderItem{
				{MenuID: 1, Quantity: 2, Price: 35000},
			},
		},
		{
			CustomerID:       2,
			CustomerUsername: "customer",
			CustomerName:     "Jane Smith",
			CustomerEmail:    "jane@example.com",
			CustomerPhone:    "082345678901",
			DeliveryAddress:  "Jl. Thamrin No. 7, Jakarta",
			PaymentMethod:    "transfer",
			TotalPrice:       100000,
			Tax:              10000,
			Status:           entity.StatusDelivered,
			CreatedAt:        now,
			UpdatedAt:        now,
			Items: []*entity.OrderItem{
				{MenuID: 2, Quantity: 1, Price: 45000},
				{MenuID: 4, Quantity: 1, Price: 55000},
			},
		},
	}

	for _, order := range samples {
		if _, err := s.db.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		for _, item := range order.Items {
			item.OrderID = order.ID
		}
		if _, err := s.db.NewInsert().Model(&order.Items).Exec(ctx); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.Int("count", len(samples)))
	}
	return nil
}
