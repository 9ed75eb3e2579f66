package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/pastry/internal/database"
	"github.com/Additional-Code/pastry/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/pastry/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// Repository encapsulates read/write access for orders and their items.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists the order header and all of its items in one transaction.
// Either every row becomes visible or none do.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	if len(order.Items) == 0 {
		return errors.New("order has no items")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(
		attribute.Int64("order.customer_id", order.CustomerID),
		attribute.Int("order.items", len(order.Items)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		for _, item := range order.Items {
			item.OrderID = order.ID
		}
		_, err := tx.NewInsert().Model(&order.Items).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order with its enriched items.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}

	items, err := r.itemsFor(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	order.Items = items
	return order, nil
}

// List returns every order, most recent id first, with enriched items.
func (r *Repository) List(ctx context.Context) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	var orders []*entity.Order
	err := r.reader.NewSelect().Model(&orders).Order("id DESC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return orders, nil
}

// ListByUsername returns the caller's own orders, most recent id first.
func (r *Repository) ListByUsername(ctx context.Context, username string) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByUsername", trace.WithAttributes(attribute.String("order.customer_username", username)))
	defer span.End()

	var orders []*entity.Order
	err := r.reader.NewSelect().Model(&orders).
		Where("customer_username = ?", username).
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return orders, nil
}

// Update replaces the mutable order fields. Status and the snapshot identity
// columns customer_id/customer_username are not touched here.
func (r *Repository) Update(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(order).
		Column("customer_name", "customer_email", "customer_phone",
			"delivery_address", "payment_method", "total_price", "tax", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// UpdateStatus overwrites the order status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status entity.Status) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", status.String()),
	))
	defer span.End()

	// updated_at is set explicitly so that re-applying the current status
	// still counts as an affected row on MySQL.
	res, err := r.writer.NewUpdate().Model((*entity.Order)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// Delete removes the order and all of its items in one transaction. Deleting
// an id that does not exist is not reported as an error, matching the
// idempotent-in-effect contract of the delete endpoint.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*entity.OrderItem)(nil)).Where("order_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*entity.Order)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}

// itemsFor loads an order's items with the denormalized menu name joined in
// from the local menu_items copy. The name can be stale or empty when the
// source menu row was renamed or removed; reads never call the menu service.
func (r *Repository) itemsFor(ctx context.Context, orderID int64) ([]*entity.OrderItem, error) {
	var items []*entity.OrderItem
	err := r.reader.NewSelect().
		Model(&items).
		ModelTableExpr("order_items AS oi").
		ColumnExpr("oi.*").
		ColumnExpr("mi.name AS menu_name").
		Join("LEFT JOIN menu_items AS mi ON mi.id = oi.menu_id").
		Where("oi.order_id = ?", orderID).
		Order("oi.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) attachItems(ctx context.Context, orders []*entity.Order) error {
	for _, order := range orders {
		items, err := r.itemsFor(ctx, order.ID)
		if err != nil {
			return err
		}
		order.Items = items
	}
	return nil
}
