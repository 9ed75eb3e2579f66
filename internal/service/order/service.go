package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/pastry/internal/cache"
	"github.com/Additional-Code/pastry/internal/config"
	"github.com/Additional-Code/pastry/internal/entity"
	"github.com/Additional-Code/pastry/internal/lookup"
	"github.com/Additional-Code/pastry/internal/messaging"
	repo "github.com/Additional-Code/pastry/internal/repository/order"
	"github.com/Additional-Code/pastry/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/pastry/service/order")

// RoleAdmin sees every order on the list path; any other role is scoped to
// its own customer_username.
const RoleAdmin = "admin"

// Store is the persistence surface the orchestrator needs.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	List(ctx context.Context) ([]*entity.Order, error)
	ListByUsername(ctx context.Context, username string) ([]*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	UpdateStatus(ctx context.Context, id int64, status entity.Status) error
	Delete(ctx context.Context, id int64) error
}

// CreateItemInput is one requested order line.
type CreateItemInput struct {
	MenuID   int64
	Quantity int64
	Price    int64
}

// CreateOrderInput carries everything the orchestrator needs to create an
// order. CustomerID zero means "provision a customer from the name/email/
// phone triple first".
type CreateOrderInput struct {
	CustomerID       int64
	CustomerUsername string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	DeliveryAddress  string
	PaymentMethod    string
	TotalPrice       int64
	Tax              int64
	Items            []CreateItemInput
}

// UpdateOrderInput is a full replace of the mutable order attributes.
// No dependency re-validation happens on update.
type UpdateOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	DeliveryAddress string
	PaymentMethod   string
	TotalPrice      int64
	Tax             int64
}

// Service orchestrates order creation across the peer record stores and owns
// the order lifecycle.
type Service struct {
	store         Store
	lookup        lookup.Client
	cache         cache.Store
	cacheTTL      time.Duration
	submitTimeout time.Duration
	logger        *zap.Logger
	publisher     messaging.Client
	messaging     messagingConfig
}

type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Lookup    lookup.Client
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:         p.Store,
		lookup:        p.Lookup,
		cache:         p.Cache,
		cacheTTL:      p.Config.Cache.DefaultTTL,
		submitTimeout: p.Config.Upstream.SubmitTimeout,
		logger:        p.Logger,
		publisher:     p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Create runs the validate-then-commit protocol: resolve the customer,
// validate every menu reference in caller order, then write the header and
// all items atomically. All local writes are deferred until every validation
// passes, so a failed request never leaves partial rows.
func (s *Service) Create(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.Int("order.items", len(in.Items)),
	))
	defer span.End()

	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	// The whole submission, lookups and the local write included, runs under
	// one deadline.
	if s.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.submitTimeout)
		defer cancel()
	}

	customerID := in.CustomerID
	if customerID == 0 {
		id, err := s.lookup.CreateCustomer(ctx, in.CustomerName, in.CustomerEmail, in.CustomerPhone)
		if err != nil {
			// The auto-created customer, had it succeeded, would not be
			// retracted on a later validation failure either. Point-in-time
			// provisioning only.
			span.RecordError(err)
			span.SetStatus(codes.Error, "customer provisioning failed")
			return nil, errorbank.Unavailable("customer service is not available", errorbank.WithCause(err))
		}
		customerID = id
		s.logger.Info("auto-created customer", zap.Int64("customer_id", customerID))
	}

	// The not-found response deliberately conflates an absent customer with
	// an unreachable customer store; the Outcome tag keeps the distinction
	// observable in logs and traces.
	if outcome := s.lookup.CustomerExists(ctx, customerID); outcome != lookup.Found {
		span.SetAttributes(attribute.String("lookup.customer_outcome", outcome.String()))
		span.SetStatus(codes.Error, "customer validation failed")
		return nil, errorbank.NotFound(
			fmt.Sprintf("customer %d not found or customer service is not available", customerID),
			errorbank.WithDetail("customer_id", customerID),
		)
	}

	for _, item := range in.Items {
		if outcome := s.lookup.MenuItemExists(ctx, item.MenuID); outcome != lookup.Found {
			span.SetAttributes(attribute.String("lookup.menu_outcome", outcome.String()))
			span.SetStatus(codes.Error, "menu validation failed")
			return nil, errorbank.NotFound(
				fmt.Sprintf("menu item %d not found or menu service is not available", item.MenuID),
				errorbank.WithDetail("menu_id", item.MenuID),
			)
		}
	}

	now := time.Now().UTC()
	order := &entity.Order{
		CustomerID:       customerID,
		CustomerUsername: in.CustomerUsername,
		CustomerName:     in.CustomerName,
		CustomerEmail:    in.CustomerEmail,
		CustomerPhone:    in.CustomerPhone,
		DeliveryAddress:  in.DeliveryAddress,
		PaymentMethod:    in.PaymentMethod,
		TotalPrice:       in.TotalPrice,
		Tax:              in.Tax,
		Status:           entity.StatusOnProcess,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, item := range in.Items {
		order.Items = append(order.Items, &entity.OrderItem{
			MenuID:   item.MenuID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	if err := s.store.Create(ctx, order); err != nil {
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			span.SetStatus(codes.Error, "submit deadline exceeded")
			return nil, errorbank.Unavailable("order submission timed out", errorbank.WithCause(err))
		}
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	// The cache is filled on the read path only; item rows carry menu_name
	// solely through the repository's read-side join.
	s.publishEvent(ctx, newOrderCreatedEvent(order))

	s.logger.Info("order created",
		zap.Int64("id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found", errorbank.WithDetail("id", id))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
	}
	return order, nil
}

// List returns orders scoped by role: admins see everything, everyone else
// only rows whose customer_username matches their identity. Both most recent
// id first.
func (s *Service) List(ctx context.Context, role, username string) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List", trace.WithAttributes(attribute.String("order.role", role)))
	defer span.End()

	var (
		orders []*entity.Order
		err    error
	)
	if role == RoleAdmin {
		orders, err = s.store.List(ctx)
	} else {
		orders, err = s.store.ListByUsername(ctx, username)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Update performs a full replace of the mutable order attributes without
// re-validating customer or menu references.
func (s *Service) Update(ctx context.Context, id int64, in UpdateOrderInput) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := &entity.Order{
		ID:              id,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		DeliveryAddress: in.DeliveryAddress,
		PaymentMethod:   in.PaymentMethod,
		TotalPrice:      in.TotalPrice,
		Tax:             in.Tax,
		UpdatedAt:       time.Now().UTC(),
	}

	if err := s.store.Update(ctx, order); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("order not found", errorbank.WithDetail("id", id))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	s.dropFromCache(ctx, id)
	return nil
}

// UpdateStatus overwrites the order status. Any member of the status
// vocabulary is accepted regardless of the current state; anything else is
// rejected before a write is attempted.
func (s *Service) UpdateStatus(ctx context.Context, id int64, raw string) (entity.Status, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", raw),
	))
	defer span.End()

	status, err := entity.ParseStatus(raw)
	if err != nil {
		return "", errorbank.BadRequest(err.Error())
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", errorbank.NotFound("order not found", errorbank.WithDetail("id", id))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return "", errorbank.Internal("failed to update order status", errorbank.WithCause(err))
	}

	s.dropFromCache(ctx, id)
	s.publishEvent(ctx, newOrderStatusChangedEvent(id, status))
	return status, nil
}

// Delete removes the order together with its items. Deleting an absent id is
// indistinguishable from success.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := s.store.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return errorbank.Internal("failed to delete order", errorbank.WithCause(err))
	}

	s.dropFromCache(ctx, id)
	s.publishEvent(ctx, newOrderDeletedEvent(id))
	return nil
}

// validateCreateInput rejects malformed requests before any dependency call
// or local write is attempted.
func validateCreateInput(in CreateOrderInput) error {
	if in.CustomerID == 0 && (in.CustomerName == "" || in.CustomerEmail == "" || in.CustomerPhone == "") {
		return errorbank.BadRequest("customer_id is required, or provide customer_name, customer_email, and customer_phone to auto-create a customer")
	}
	if len(in.Items) == 0 {
		return errorbank.BadRequest("order must contain at least one item")
	}
	for i, item := range in.Items {
		if item.MenuID == 0 {
			return errorbank.BadRequest("each item must have a menu_id", errorbank.WithDetail("index", i))
		}
		if item.Quantity <= 0 {
			return errorbank.BadRequest("item quantity must be positive", errorbank.WithDetail("menu_id", item.MenuID))
		}
		if item.Price < 0 {
			return errorbank.BadRequest("item price must not be negative", errorbank.WithDetail("menu_id", item.MenuID))
		}
	}
	if in.DeliveryAddress == "" {
		return errorbank.BadRequest("delivery_address is required")
	}
	if in.PaymentMethod == "" {
		return errorbank.BadRequest("payment_method is required")
	}
	if in.TotalPrice < 0 || in.Tax < 0 {
		return errorbank.BadRequest("total_price and tax must not be negative")
	}
	return nil
}

func (s *Service) cacheKey(id int64) string {
	return "orders:" + strconv.FormatInt(id, 10)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) dropFromCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Warn("orders cache delete failed", zap.Int64("id", id), zap.Error(err))
	}
}
