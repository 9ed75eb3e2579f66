package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/pastry/internal/config"
)

var lookupTracer = otel.Tracer("github.com/Additional-Code/pastry/lookup")

// Outcome is the result of an existence probe against a peer record store.
// The external order contract collapses NotFound and Unreachable into a single
// not-found response; the tag keeps the distinction visible internally.
// The zero value is Unreachable, never a hit.
type Outcome int

const (
	// Unreachable means the store could not be reached before the deadline.
	Unreachable Outcome = iota
	// NotFound means the store answered and the record is absent.
	NotFound
	// Found means the store answered with an explicit hit.
	Found
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Unreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Client issues existence and creation calls against the customer and menu
// record stores. Every call is a fresh round trip with a bounded timeout;
// there are no retries and no result caching.
type Client interface {
	CustomerExists(ctx context.Context, id int64) Outcome
	MenuItemExists(ctx context.Context, id int64) Outcome
	CreateCustomer(ctx context.Context, name, email, phone string) (int64, error)
}

// Module provides the HTTP lookup client to Fx.
var Module = fx.Provide(NewHTTPClient)

// HTTPClient talks plain JSON over HTTP to the peer stores.
type HTTPClient struct {
	customerBaseURL string
	menuBaseURL     string
	http            *http.Client
	logger          *zap.Logger
}

// NewHTTPClient builds a lookup client from the upstream configuration.
func NewHTTPClient(cfg config.Config, logger *zap.Logger) Client {
	return &HTTPClient{
		customerBaseURL: cfg.Upstream.CustomerBaseURL,
		menuBaseURL:     cfg.Upstream.MenuBaseURL,
		http:            &http.Client{Timeout: cfg.Upstream.LookupTimeout},
		logger:          logger,
	}
}

// CustomerExists probes the customer store for the given identifier.
func (c *HTTPClient) CustomerExists(ctx context.Context, id int64) Outcome {
	return c.exists(ctx, "customer", fmt.Sprintf("%s/customers/%d", c.customerBaseURL, id))
}

// MenuItemExists probes the menu store for the given identifier.
func (c *HTTPClient) MenuItemExists(ctx context.Context, id int64) Outcome {
	return c.exists(ctx, "menu", fmt.Sprintf("%s/menus/%d", c.menuBaseURL, id))
}

func (c *HTTPClient) exists(ctx context.Context, store, url string) Outcome {
	ctx, span := lookupTracer.Start(ctx, "Lookup.exists", trace.WithAttributes(
		attribute.String("lookup.store", store),
		attribute.String("lookup.url", url),
	))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return Unreachable
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "probe failed")
		if c.logger != nil {
			c.logger.Warn("existence probe failed", zap.String("store", store), zap.Error(err))
		}
		return Unreachable
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode == http.StatusOK {
		return Found
	}
	return NotFound
}

// CreateCustomer provisions a customer record and returns its identifier.
// Any failure mode (timeout, connection error, non-201 status, malformed
// body) is reported as an error; the caller decides how loud to fail.
func (c *HTTPClient) CreateCustomer(ctx context.Context, name, email, phone string) (int64, error) {
	ctx, span := lookupTracer.Start(ctx, "Lookup.CreateCustomer")
	defer span.End()

	payload, err := json.Marshal(map[string]string{
		"name":  name,
		"email": email,
		"phone": phone,
	})
	if err != nil {
		return 0, err
	}

	url := c.customerBaseURL + "/customers"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		if c.logger != nil {
			c.logger.Error("customer creation call failed", zap.Error(err))
		}
		return 0, fmt.Errorf("create customer: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("create customer: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("create customer: decode response: %w", err)
	}
	if body.ID <= 0 {
		return 0, fmt.Errorf("create customer: response missing id")
	}
	return body.ID, nil
}
