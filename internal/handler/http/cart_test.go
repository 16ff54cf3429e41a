package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kssweets/sweetshop/internal/domain"
)

// =============================================================================
// Mock CartRepository
// =============================================================================

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) Upsert(ctx context.Context, item *domain.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockCartRepo) GetByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *mockCartRepo) UpdateCount(ctx context.Context, id int64, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

func (m *mockCartRepo) Remove(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCartRepo) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func cartRouter(repo *mockCartRepo) *chi.Mux {
	handler := NewCartHandler(repo, handlerTestLogger())
	r := chi.NewRouter()
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Delete("/", handler.ClearCart)
		r.Post("/items", handler.AddItem)
		r.Put("/items/{id}", handler.UpdateCount)
		r.Delete("/items/{id}", handler.RemoveItem)
	})
	return r
}

const testUserID = "4e7c27c2-9b27-4a6b-9b5a-0f2a5f6f4d11"

// =============================================================================
// GET /api/v1/cart - GetCart
// =============================================================================

func TestGetCart_ComputesTotal(t *testing.T) {
	repo := new(mockCartRepo)
	router := cartRouter(repo)

	repo.On("GetByUser", mock.Anything, testUserID).Return([]domain.CartItem{
		{ID: 1, UserID: testUserID, ProductID: 10, Count: 2, Price: 599},
		{ID: 2, UserID: testUserID, ProductID: 11, Count: 1, Price: 1250},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", testUserID)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Items []domain.CartItem `json:"items"`
			Total int64             `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data.Items, 2)
	assert.Equal(t, int64(2*599+1250), resp.Data.Total)
}

func TestGetCart_EmptyCartIsEmptyList(t *testing.T) {
	repo := new(mockCartRepo)
	router := cartRouter(repo)

	repo.On("GetByUser", mock.Anything, testUserID).Return([]domain.CartItem(nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", testUserID)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestGetCart_MissingUserHeader(t *testing.T) {
	repo := new(mockCartRepo)
	router := cartRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	repo.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
}

// =============================================================================
// POST /api/v1/cart/items - AddItem
// =============================================================================

func TestAddItem_Success(t *testing.T) {
	repo := new(mockCartRepo)
	router := cartRouter(repo)

	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(item *domain.CartItem) bool {
		return item.UserID == testUserID && item.ProductID == 10 && item.Count == 3
	})).Return(nil)

	b, _ := json.Marshal(AddCartItemRequest{ProductID: 10, Count: 3})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(b))
	req.Header.Set("X-User-ID", testUserID)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func TestAddItem_CountAboveLimit(t *testing.T) {
	repo := new(mockCartRepo)
	router := cartRouter(repo)

	b, _ := json.Marshal(AddCartItemRequest{ProductID: 10, Count: 1001})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(b))
	req.Header.Set("X-User-ID", testUserID)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

// =============================================================================
// PUT /api/v1/cart/items/{id} - UpdateCount
// =============================================================================

func TestUpdateCount_Success(t *testing.T) {
	repo := new(mockCartRepo)
	router := cartRouter(repo)

	repo.On("UpdateCount", mock.Anything, int64(4), 5).Return(nil)

	b, _ := json.Marshal(UpdateCartCountRequest{Count: 5})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/4", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

// =============================================================================
// DELETE /api/v1/cart - ClearCart
// =============================================================================

func TestClearCart_Success(t *testing.T) {
	repo := new(mockCartRepo)
	router := cartRouter(repo)

	repo.On("Clear", mock.Anything, testUserID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", testUserID)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}
