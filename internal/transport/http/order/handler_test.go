package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/pastry/internal/auth"
	"github.com/Additional-Code/pastry/internal/config"
	"github.com/Additional-Code/pastry/internal/entity"
	"github.com/Additional-Code/pastry/internal/lookup"
	repo "github.com/Additional-Code/pastry/internal/repository/order"
	service "github.com/Additional-Code/pastry/internal/service/order"
	"github.com/Additional-Code/pastry/pkg/errorbank"
)

type memStore struct {
	orders map[int64]*entity.Order
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{orders: map[int64]*entity.Order{}, nextID: 1}
}

func (m *memStore) Create(ctx context.Context, order *entity.Order) error {
	order.ID = m.nextID
	m.nextID++
	for _, item := range order.Items {
		item.OrderID = order.ID
	}
	m.orders[order.ID] = order
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return order, nil
}

func (m *memStore) List(ctx context.Context) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0, len(m.orders))
	for id := m.nextID; id > 0; id-- {
		if o, ok := m.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) ListByUsername(ctx context.Context, username string) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0)
	for id := m.nextID; id > 0; id-- {
		if o, ok := m.orders[id]; ok && o.CustomerUsername == username {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) Update(ctx context.Context, order *entity.Order) error {
	if _, ok := m.orders[order.ID]; !ok {
		return repo.ErrNotFound
	}
	m.orders[order.ID].TotalPrice = order.TotalPrice
	return nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id int64, status entity.Status) error {
	order, ok := m.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	order.Status = status
	return nil
}

func (m *memStore) Delete(ctx context.Context, id int64) error {
	delete(m.orders, id)
	return nil
}

type stubLookup struct {
	customers map[int64]lookup.Outcome
	menus     map[int64]lookup.Outcome
	createID  int64
	createErr error
}

func (s *stubLookup) CustomerExists(ctx context.Context, id int64) lookup.Outcome {
	if o, ok := s.customers[id]; ok {
		return o
	}
	return lookup.NotFound
}

func (s *stubLookup) MenuItemExists(ctx context.Context, id int64) lookup.Outcome {
	if o, ok := s.menus[id]; ok {
		return o
	}
	return lookup.NotFound
}

func (s *stubLookup) CreateCustomer(ctx context.Context, name, email, phone string) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	return s.createID, nil
}

func newTestRig(store *memStore, lk *stubLookup) *echo.Echo {
	cfg := config.Config{}
	svc := service.NewService(service.Params{
		Store:  store,
		Lookup: lk,
		Config: cfg,
		Logger: zap.NewNop(),
	})

	e := echo.New()
	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	Register(e, NewHandler(svc), passthrough)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderEndpoint(t *testing.T) {
	store := newMemStore()
	lk := &stubLookup{
		customers: map[int64]lookup.Outcome{1: lookup.Found},
		menus:     map[int64]lookup.Outcome{1: lookup.Found},
	}
	e := newTestRig(store, lk)

	body := `{"customer_id":1,"username":"jane","customer_name":"Jane","customer_email":"jane@example.com","customer_phone":"555","delivery_address":"X","payment_method":"cash","total_price":70000,"tax":7000,"items":[{"menu_id":1,"quantity":2,"price":35000}]}`
	rec := do(e, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Data.ID)
	assert.Equal(t, "on_process", resp.Data.Status)

	created := store.orders[1]
	require.NotNil(t, created)
	require.Len(t, created.Items, 1)
	assert.Equal(t, int64(2), created.Items[0].Quantity)
	assert.Equal(t, int64(35000), created.Items[0].Price)
}

func TestCreateOrderValidationError(t *testing.T) {
	e := newTestRig(newMemStore(), &stubLookup{})

	body := `{"customer_id":1,"delivery_address":"X","payment_method":"cash","items":[]}`
	rec := do(e, http.MethodPost, "/orders", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderMenuNotFound(t *testing.T) {
	store := newMemStore()
	lk := &stubLookup{
		customers: map[int64]lookup.Outcome{1: lookup.Found},
		menus:     map[int64]lookup.Outcome{},
	}
	e := newTestRig(store, lk)

	body := `{"customer_id":1,"delivery_address":"X","payment_method":"cash","total_price":100,"tax":10,"items":[{"menu_id":9,"quantity":1,"price":100}]}`
	rec := do(e, http.MethodPost, "/orders", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, store.orders)
}

func TestCreateOrderCustomerServiceDown(t *testing.T) {
	store := newMemStore()
	lk := &stubLookup{createErr: errorbank.Internal("connection refused")}
	e := newTestRig(store, lk)

	body := `{"customer_name":"Jane","customer_email":"jane@example.com","customer_phone":"555","delivery_address":"X","payment_method":"cash","total_price":100,"tax":10,"items":[{"menu_id":1,"quantity":1,"price":100}]}`
	rec := do(e, http.MethodPost, "/orders", body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	e := newTestRig(newMemStore(), &stubLookup{})
	rec := do(e, http.MethodGet, "/orders/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersScopedByRole(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &entity.Order{ID: 1, CustomerUsername: "jane", Status: entity.StatusOnProcess}
	store.orders[2] = &entity.Order{ID: 2, CustomerUsername: "bob", Status: entity.StatusOnProcess}
	store.nextID = 3
	e := newTestRig(store, &stubLookup{})

	rec := do(e, http.MethodGet, "/orders?role=customer&username=jane", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			ID               int64  `json:"id"`
			CustomerUsername string `json:"customer_username"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "jane", resp.Data[0].CustomerUsername)

	rec = do(e, http.MethodGet, "/orders?role=admin&username=jane", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	// most recent first
	assert.Equal(t, int64(2), resp.Data[0].ID)
	assert.Equal(t, int64(1), resp.Data[1].ID)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &entity.Order{ID: 1, Status: entity.StatusOnProcess}
	store.nextID = 2
	e := newTestRig(store, &stubLookup{})

	rec := do(e, http.MethodPatch, "/orders/1/status", `{"status":"on_delivery"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.StatusOnDelivery, store.orders[1].Status)

	rec = do(e, http.MethodPatch, "/orders/1/status", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, entity.StatusOnDelivery, store.orders[1].Status)
}

func TestDeleteOrderEndpoint(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &entity.Order{ID: 1}
	store.nextID = 2
	e := newTestRig(store, &stubLookup{})

	rec := do(e, http.MethodDelete, "/orders/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.orders)

	// deleting again is indistinguishable from success
	rec = do(e, http.MethodDelete, "/orders/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInvalidIDRejected(t *testing.T) {
	e := newTestRig(newMemStore(), &stubLookup{})
	rec := do(e, http.MethodGet, "/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdentityMiddlewareOverridesQueryParams(t *testing.T) {
	store := newMemStore()
	store.orders[1] = &entity.Order{ID: 1, CustomerUsername: "jane"}
	store.orders[2] = &entity.Order{ID: 2, CustomerUsername: "bob"}
	store.nextID = 3

	cfg := config.Config{}
	svc := service.NewService(service.Params{
		Store:  store,
		Lookup: &stubLookup{},
		Config: cfg,
		Logger: zap.NewNop(),
	})

	e := echo.New()
	asJane := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(auth.ContextKeyUsername, "jane")
			c.Set(auth.ContextKeyRole, "customer")
			return next(c)
		}
	}
	Register(e, NewHandler(svc), asJane)

	// query params claim admin, but the verified identity wins
	rec := do(e, http.MethodGet, "/orders?role=admin&username=bob", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			CustomerUsername string `json:"customer_username"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "jane", resp.Data[0].CustomerUsername)
}
