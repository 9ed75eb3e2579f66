package order

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/pastry/internal/auth"
	"github.com/Additional-Code/pastry/internal/dto"
	"github.com/Additional-Code/pastry/internal/entity"
	"github.com/Additional-Code/pastry/internal/presentation/http/response"
	service "github.com/Additional-Code/pastry/internal/service/order"
	"github.com/Additional-Code/pastry/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/pastry/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler, identity echo.MiddlewareFunc) {
	g := e.Group("/orders", identity)
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PATCH("/:id/status", h.updateStatus)
	g.DELETE("/:id", h.remove)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	username, role := auth.CallerIdentity(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list", trace.WithAttributes(attribute.String("order.role", role)))
	defer span.End()

	orders, err := h.svc.List(ctx, role, username)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toDTO(order))
	}
	return b.WithData(out).WithMeta("count", len(out)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	username, _ := auth.CallerIdentity(c)
	if payload.Username != "" {
		username = payload.Username
	}

	in := service.CreateOrderInput{
		CustomerID:       payload.CustomerID,
		CustomerUsername: username,
		CustomerName:     payload.CustomerName,
		CustomerEmail:    payload.CustomerEmail,
		CustomerPhone:    payload.CustomerPhone,
		DeliveryAddress:  payload.DeliveryAddress,
		PaymentMethod:    payload.PaymentMethod,
		TotalPrice:       payload.TotalPrice,
		Tax:              payload.Tax,
	}
	for _, item := range payload.Items {
		in.Items = append(in.Items, service.CreateItemInput{
			MenuID:   item.MenuID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create", trace.WithAttributes(
		attribute.Int("order.items", len(in.Items)),
	))
	defer span.End()

	order, err := h.svc.Create(ctx, in)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.CreateOrderResponse{
		ID:     order.ID,
		Status: order.Status.String(),
	}).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.UpdateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	err = h.svc.Update(ctx, id, service.UpdateOrderInput{
		CustomerName:    payload.CustomerName,
		CustomerEmail:   payload.CustomerEmail,
		CustomerPhone:   payload.CustomerPhone,
		DeliveryAddress: payload.DeliveryAddress,
		PaymentMethod:   payload.PaymentMethod,
		TotalPrice:      payload.TotalPrice,
		Tax:             payload.Tax,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]string{"message": "order updated"}).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.UpdateStatusRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", payload.Status),
	))
	defer span.End()

	status, err := h.svc.UpdateStatus(ctx, id, payload.Status)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]string{"status": status.String()}).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]string{"message": "order deleted"}).Build()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}

func toDTO(order *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			MenuID:   item.MenuID,
			Quantity: item.Quantity,
			Price:    item.Price,
			MenuName: item.MenuName,
		})
	}
	return dto.OrderResponse{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		CustomerUsername: order.CustomerUsername,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		CustomerPhone:    order.CustomerPhone,
		DeliveryAddress:  order.DeliveryAddress,
		PaymentMethod:    order.PaymentMethod,
		TotalPrice:       order.TotalPrice,
		Tax:              order.Tax,
		Status:           order.Status.String(),
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}
