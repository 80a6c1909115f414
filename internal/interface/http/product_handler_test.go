package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emarket/emarket/internal/application"
	"github.com/emarket/emarket/internal/domain/entity"
)

type stubListings struct {
	listFn         func(ctx context.Context) ([]entity.Listing, error)
	listBySellerFn func(ctx context.Context, sellerID string) ([]entity.Listing, error)
}

func (s *stubListings) Create(ctx context.Context, l *entity.Listing) error { return nil }

func (s *stubListings) List(ctx context.Context) ([]entity.Listing, error) {
	return s.listFn(ctx)
}

func (s *stubListings) ListBySeller(ctx context.Context, sellerID string) ([]entity.Listing, error) {
	return s.listBySellerFn(ctx, sellerID)
}

func newTestRouter(repo *stubListings) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProductHandler(application.NewCatalogService(repo, nil, "listings", nil))
	r := gin.New()
	r.GET("/api/products", h.List)
	r.GET("/api/products/seller/:userId", h.BySeller)
	r.GET("/api/products/search", h.Search)
	return r
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListProductsSortedWithNumericPrice(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubListings{listFn: func(ctx context.Context) ([]entity.Listing, error) {
		return []entity.Listing{
			{ID: "old", Name: "Chair", Price: 30, SellerID: "s1", CreatedAt: t1},
			{ID: "new", Name: "Lamp", Price: 19.99, SellerID: "s1", CreatedAt: t1.Add(time.Hour)},
		}, nil
	}}
	w := get(t, newTestRouter(repo), "/api/products")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":19.99`)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "new", body[0]["id"])
	assert.Equal(t, "old", body[1]["id"])
	assert.Equal(t, 19.99, body[0]["price"])
}

func TestListProductsEmptyIsBareArray(t *testing.T) {
	repo := &stubListings{listFn: func(ctx context.Context) ([]entity.Listing, error) {
		return nil, nil
	}}
	w := get(t, newTestRouter(repo), "/api/products")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestListProductsPlaceholderImage(t *testing.T) {
	repo := &stubListings{listFn: func(ctx context.Context) ([]entity.Listing, error) {
		return []entity.Listing{{ID: "a", Name: "Desk Lamp"}}, nil
	}}
	w := get(t, newTestRouter(repo), "/api/products")

	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "https://placehold.co/400x180/E0E0E0/666666?text=Desk+Lamp", body[0]["imageUrl"])
}

func TestListProductsFailure(t *testing.T) {
	repo := &stubListings{listFn: func(ctx context.Context) ([]entity.Listing, error) {
		return nil, errors.New("connection refused")
	}}
	w := get(t, newTestRouter(repo), "/api/products")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to fetch products", body["error"])
	assert.Equal(t, "connection refused", body["details"])
}

func TestSellerProductsFiltered(t *testing.T) {
	repo := &stubListings{listBySellerFn: func(ctx context.Context, sellerID string) ([]entity.Listing, error) {
		assert.Equal(t, "seller-7", sellerID)
		return []entity.Listing{{ID: "a", Name: "Pot", Price: 19.99, SellerID: sellerID}}, nil
	}}
	w := get(t, newTestRouter(repo), "/api/products/seller/seller-7")

	require.Equal(t, http.StatusOK, w.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "seller-7", body[0]["sellerId"])
}

func TestSellerWithoutProductsIsEmptyArray(t *testing.T) {
	repo := &stubListings{listBySellerFn: func(ctx context.Context, sellerID string) ([]entity.Listing, error) {
		return []entity.Listing{}, nil
	}}
	w := get(t, newTestRouter(repo), "/api/products/seller/nobody")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestSearchWithoutBackendIsEmptyArray(t *testing.T) {
	w := get(t, newTestRouter(&stubListings{}), "/api/products/search?q=lamp")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}
