package lookup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/pastry/internal/config"
)

func newTestClient(t *testing.T, customerURL, menuURL string) Client {
	t.Helper()
	cfg := config.Config{}
	cfg.Upstream.CustomerBaseURL = customerURL
	cfg.Upstream.MenuBaseURL = menuURL
	cfg.Upstream.LookupTimeout = 2 * time.Second
	return NewHTTPClient(cfg, zap.NewNop())
}

func TestCustomerExistsFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/7", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	assert.Equal(t, Found, c.CustomerExists(context.Background(), 7))
}

func TestCustomerExistsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	assert.Equal(t, NotFound, c.CustomerExists(context.Background(), 7))
}

func TestCustomerExistsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(t, srv.URL, srv.URL)
	assert.Equal(t, Unreachable, c.CustomerExists(context.Background(), 7))
}

func TestMenuItemExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/menus/1" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	assert.Equal(t, Found, c.MenuItemExists(context.Background(), 1))
	assert.Equal(t, NotFound, c.MenuItemExists(context.Background(), 2))
}

func TestCreateCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/customers", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Jane", body["name"])
		assert.Equal(t, "jane@example.com", body["email"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "message": "Customer created successfully"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	id, err := c.CreateCustomer(context.Background(), "Jane", "jane@example.com", "555-0101")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestCreateCustomerFailures(t *testing.T) {
	t.Run("non-201 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL, srv.URL)
		_, err := c.CreateCustomer(context.Background(), "Jane", "jane@example.com", "555-0101")
		assert.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL, srv.URL)
		_, err := c.CreateCustomer(context.Background(), "Jane", "jane@example.com", "555-0101")
		assert.Error(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL, srv.URL)
		_, err := c.CreateCustomer(context.Background(), "Jane", "jane@example.com", "555-0101")
		assert.Error(t, err)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := newTestClient(t, srv.URL, srv.URL)
		_, err := c.CreateCustomer(context.Background(), "Jane", "jane@example.com", "555-0101")
		assert.Error(t, err)
	})
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "unreachable", Unreachable.String())
}

func TestOutcomeZeroValueIsNotAHit(t *testing.T) {
	var outcome Outcome
	assert.Equal(t, Unreachable, outcome)
	assert.NotEqual(t, Found, outcome)
}
