package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/pastry/internal/config"
	"github.com/Additional-Code/pastry/internal/messaging"
	ordersvc "github.com/Additional-Code/pastry/internal/service/order"
	"github.com/Additional-Code/pastry/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/pastry/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventsHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventsHandler consumes order lifecycle events from the orders
// topic. The handler is an audit sink today; it logs each event so delivery
// dashboards downstream of the log pipeline can pick them up.
func NewOrderEventsHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		span.SetAttributes(attribute.String("order.event", event.Type))

		switch event.Type {
		case ordersvc.EventOrderCreated:
			logger.Info("order created event processed",
				zap.Int64("order_id", event.OrderID),
				zap.Int64("customer_id", event.CustomerID),
				zap.Int("items", event.Items),
				zap.Int64("total_price", event.TotalPrice),
			)
		case ordersvc.EventOrderStatusChanged:
			logger.Info("order status changed event processed",
				zap.Int64("order_id", event.OrderID),
				zap.String("status", event.Status.String()),
			)
		case ordersvc.EventOrderDeleted:
			logger.Info("order deleted event processed",
				zap.Int64("order_id", event.OrderID),
			)
		default:
			logger.Warn("unknown order event type", zap.String("type", event.Type))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
