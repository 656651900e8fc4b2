package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Sting421/hkotisk-client/internal/domain/order"
	"github.com/Sting421/hkotisk-client/internal/domain/product"
)

type staticTokens struct {
	token string
}

func (s staticTokens) Token() (string, bool) { return s.token, s.token != "" }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, staticTokens{token: token}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestListProducts_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/user/product", r.URL.Path)
		_, _ = w.Write([]byte(`{"products": []}`))
	}, "tok-123")

	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestListProducts_WrapperAndBareShapes(t *testing.T) {
	payload := `[{"productId":"1","productName":"Notebook","prices":["5.99"],"sizes":["Standard"],"quantity":[3]}]`

	for name, body := range map[string]string{
		"wrapper": `{"products": ` + payload + `}`,
		"bare":    payload,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}, "tok")

			list, err := c.ListProducts(context.Background())
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "Notebook", list[0].Name)
			assert.True(t, decimal.RequireFromString("5.99").Equal(list[0].Prices[0]))
		})
	}
}

func TestListProducts_UnrecognizedShapeFailsLoudly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": []}`)) // wrong wrapper field
	}, "tok")

	_, err := c.ListProducts(context.Background())
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "products", se.Field)
}

func TestForbiddenClassifiedUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, "stale-tok")

	_, err := c.ListOrders(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestServerErrorPreservesActionName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "tok")

	err := c.CreateProduct(context.Background(), product.Product{Name: "Pen"})
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ActionAddProduct, re.Action)
	assert.Equal(t, http.StatusInternalServerError, re.Status)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestSetOrderStatus_PathAndBody(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   map[string]string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}, "tok")

	err := c.SetOrderStatus(context.Background(), 42, order.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/staff/orders/42", gotPath)
	assert.Equal(t, map[string]string{"status": "PROCESSING"}, gotBody)
}

func TestDeleteProduct_QueryParameter(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("productId")
		w.WriteHeader(http.StatusOK)
	}, "tok")

	require.NoError(t, c.DeleteProduct(context.Background(), "p7"))
	assert.Equal(t, "p7", gotQuery)
}

func TestLogin_ReturnsTokenAndRole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signin", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"token":"fresh-tok","role":"STAFF"}`))
	}, "")

	token, role, err := c.Login(context.Background(), "staff@school.edu", "secret")
	require.NoError(t, err)
	assert.Equal(t, "fresh-tok", token)
	assert.Equal(t, "STAFF", role)
}

func TestLogin_EmptyTokenRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, "")

	_, _, err := c.Login(context.Background(), "staff@school.edu", "secret")
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ActionLogin, re.Action)
}

func TestDecodeList_Orders(t *testing.T) {
	raw := []byte(`{"orders":[{"orderId":7,"orderBy":"alice","orderStatus":"PENDING","products":[{"cartId":1,"productName":"Notebook","quantity":2,"price":"5.00"}]}]}`)

	list, err := decodeList[order.Order](raw, "orders")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].ID)
	assert.Equal(t, order.StatusPending, list[0].Status)
	assert.True(t, decimal.RequireFromString("10.00").Equal(list[0].Total()))
}

func TestDecodeList_ScalarShapeRejected(t *testing.T) {
	_, err := decodeList[order.Order]([]byte(`"oops"`), "orders")
	var se *ShapeError
	require.True(t, errors.As(err, &se))
}
