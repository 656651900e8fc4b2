// Package gateway is the typed client for the tuck-shop REST API. It attaches
// the bearer token to every call, classifies failures into the error taxonomy
// the stores react to, and normalizes list responses into domain types.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Sting421/hkotisk-client/internal/domain/order"
	"github.com/Sting421/hkotisk-client/internal/domain/product"
	"github.com/Sting421/hkotisk-client/pkg/httpclient"
)

// ErrUnauthorized marks a server-signalled authorization rejection (HTTP 403).
// Stores route it to the session holder; it is never shown as a plain failure.
var ErrUnauthorized = errors.New("unauthorized")

// Action names preserved on failures so the caller can tell the user what was
// being attempted.
const (
	ActionLogin          = "sign in"
	ActionLoadProducts   = "load products"
	ActionAddProduct     = "add product"
	ActionUpdateProduct  = "update product"
	ActionDeleteProduct  = "delete product"
	ActionLoadOrders     = "load orders"
	ActionSetOrderStatus = "update order status"
)

// RequestError is a transport or server failure for a named action. There is
// no automatic retry: a fresh user-triggered attempt is the only recovery.
type RequestError struct {
	Action string
	Status int // zero when the request never reached the server
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned status %d", e.Action, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ShapeError indicates a list response in none of the recognized shapes.
// Unrecognized payloads fail loudly instead of silently decoding to empty.
type ShapeError struct {
	Field string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("response is neither a JSON array nor an object with a %q list", e.Field)
}

// TokenSource supplies the current bearer token at call time. The token is
// re-read for every request; it may be cleared between calls.
type TokenSource interface {
	Token() (string, bool)
}

const defaultTimeout = 10 * time.Second

// Client talks to the hkotisk HTTP API.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens TokenSource
	lg     *zap.Logger
}

// New builds a Client for the given base URL. Options configure the
// instrumented transport.
func New(baseURL string, tokens TokenSource, lg *zap.Logger, opts ...otelhttp.Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	return &Client{
		base:   base,
		http:   httpclient.New(defaultTimeout, opts...),
		tokens: tokens,
		lg:     lg,
	}, nil
}

// loginResponse is the versioned wire shape of a successful sign-in.
type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login exchanges staff credentials for a bearer token and role tag. It is
// the only unauthenticated call.
func (c *Client) Login(ctx context.Context, email, password string) (token, role string, err error) {
	body := map[string]string{"email": email, "password": password}
	raw, err := c.do(ctx, http.MethodPost, "/auth/signin", nil, body, ActionLogin)
	if err != nil {
		return "", "", err
	}
	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", "", &RequestError{Action: ActionLogin, Err: errors.Wrap(err, "decode response")}
	}
	if resp.Token == "" {
		return "", "", &RequestError{Action: ActionLogin, Err: errors.New("empty token in response")}
	}
	return resp.Token, resp.Role, nil
}

// ListProducts fetches the full catalog. Records are returned as decoded;
// integrity screening is the store's concern.
func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	raw, err := c.do(ctx, http.MethodGet, "/user/product", nil, nil, ActionLoadProducts)
	if err != nil {
		return nil, err
	}
	list, err := decodeList[product.Product](raw, "products")
	if err != nil {
		return nil, &RequestError{Action: ActionLoadProducts, Err: err}
	}
	return list, nil
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, p product.Product) error {
	_, err := c.do(ctx, http.MethodPost, "/staff/product", nil, p, ActionAddProduct)
	return err
}

// UpdateProduct replaces an existing product.
func (c *Client) UpdateProduct(ctx context.Context, p product.Product) error {
	_, err := c.do(ctx, http.MethodPut, "/staff/product", nil, p, ActionUpdateProduct)
	return err
}

// DeleteProduct removes a product by ID.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	query := url.Values{"productId": {id}}
	_, err := c.do(ctx, http.MethodDelete, "/staff/product", query, nil, ActionDeleteProduct)
	return err
}

// ListOrders fetches the full order book in server-reported sequence.
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	raw, err := c.do(ctx, http.MethodGet, "/staff/orders", nil, nil, ActionLoadOrders)
	if err != nil {
		return nil, err
	}
	list, err := decodeList[order.Order](raw, "orders")
	if err != nil {
		return nil, &RequestError{Action: ActionLoadOrders, Err: err}
	}
	return list, nil
}

// SetOrderStatus asks the server to move an order to the given status. The
// confirmed state arrives only with the next ListOrders.
func (c *Client) SetOrderStatus(ctx context.Context, orderID int64, status order.Status) error {
	path := "/staff/orders/" + strconv.FormatInt(orderID, 10)
	body := map[string]string{"status": string(status)}
	_, err := c.do(ctx, http.MethodPatch, path, nil, body, ActionSetOrderStatus)
	return err
}

// do performs one API call: encodes the body, attaches the current bearer
// token, executes the request, and classifies the outcome. The response body
// is returned raw for the caller to decode.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, action string) ([]byte, error) {
	rel := &url.URL{Path: path, RawQuery: query.Encode()}
	reqURL := c.base.ResolveReference(rel)

	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestError{Action: action, Err: errors.Wrap(err, "encode request")}
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), payload)
	if err != nil {
		return nil, &RequestError{Action: action, Err: errors.Wrap(err, "create request")}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// The token is read at call time, never cached across requests: it may
	// have been cleared since the previous call.
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Action: action, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrap(ErrUnauthorized, action)
	case resp.StatusCode >= 400:
		c.lg.Debug("Request failed",
			zap.String("action", action),
			zap.String("url", reqURL.String()),
			zap.Int("status", resp.StatusCode))
		return nil, &RequestError{Action: action, Status: resp.StatusCode}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &RequestError{Action: action, Err: errors.Wrap(err, "read response")}
	}
	return buf.Bytes(), nil
}

// decodeList normalizes the two recognized list shapes: a wrapper object
// carrying the named list field, or a bare JSON array. The wrapper field
// takes precedence. Anything else is a *ShapeError.
func decodeList[T any](raw []byte, field string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &ShapeError{Field: field}
	}

	switch trimmed[0] {
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, errors.Wrap(err, "decode wrapper object")
		}
		inner, ok := wrapper[field]
		if !ok {
			return nil, &ShapeError{Field: field}
		}
		var list []T
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, errors.Wrapf(err, "decode %q list", field)
		}
		return list, nil
	case '[':
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, errors.Wrap(err, "decode list")
		}
		return list, nil
	default:
		return nil, &ShapeError{Field: field}
	}
}
