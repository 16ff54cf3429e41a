package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kssweets/sweetshop/pkg/errors"
	"github.com/kssweets/sweetshop/pkg/logger"
	"github.com/kssweets/sweetshop/pkg/validator"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// decode unmarshals the recorded body into a Response envelope.
func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// rawBody unmarshals the recorded body into raw JSON keys, for
// omitempty assertions.
func rawBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	return raw
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: map[string]string{"slug": "chocolate-cake"}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "chocolate-cake")
}

func TestResponse_OmitsEmptyHalves(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, Response{Data: "ok"})
	assert.NotContains(t, rawBody(t, rec), "error")

	rec = httptest.NewRecorder()
	WriteJSON(rec, http.StatusBadRequest, Response{Error: &ErrorResponse{Code: "ERR", Message: "msg"}})
	assert.NotContains(t, rawBody(t, rec), "data")
}

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", apperrors.NotFound("category", "cookies"), http.StatusNotFound, "NOT_FOUND"},
		{"sentinel not found", apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"sentinel conflict", apperrors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{"sentinel invalid input", apperrors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"wrapped sentinel", fmt.Errorf("lookup: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"unknown error", fmt.Errorf("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/categories", nil)
			WriteError(rec, req, tt.err, quietLogger())

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestWriteError_DoesNotLeakInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	WriteError(rec, req, fmt.Errorf("pq: duplicate key value violates unique constraint"), quietLogger())

	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), "duplicate key")
}

func TestWriteError_RequestIDFromCorrelationID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-123")
	req := httptest.NewRequest(http.MethodGet, "/categories", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	WriteError(rec, req, apperrors.ErrNotFound, quietLogger())
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "corr-123", resp.Error.RequestID)

	rec = httptest.NewRecorder()
	WriteError(rec, req, apperrors.NotFound("product", "17"), quietLogger())
	resp = decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "corr-123", resp.Error.RequestID)
}

func TestWriteError_RequestIDOmittedWithoutCorrelationID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	WriteError(rec, req, apperrors.ErrNotFound, quietLogger())

	raw := rawBody(t, rec)
	var errObj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["error"], &errObj))
	assert.NotContains(t, errObj, "request_id")
}

func TestWriteValidationError_FieldMap(t *testing.T) {
	type payload struct {
		Name  string `json:"name" validate:"required"`
		Count int    `json:"count" validate:"gte=1,lte=1000"`
	}

	rec := httptest.NewRecorder()
	WriteValidationError(rec, validator.Validate(payload{Count: 5000}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "name")
	assert.Contains(t, resp.Error.Fields, "count")
}

func TestWriteValidationError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, fmt.Errorf("body must not be empty"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Equal(t, "body must not be empty", resp.Error.Message)
}

func TestNewPaginatedResponse(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		page        int
		perPage     int
		wantPages   int
		wantHasNext bool
	}{
		{"partial last page", 25, 1, 10, 3, true},
		{"on last page", 21, 3, 10, 3, false},
		{"exact division", 30, 2, 10, 3, true},
		{"empty", 0, 1, 20, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewPaginatedResponse([]string{"x"}, tt.total, tt.page, tt.perPage)
			assert.Equal(t, tt.wantPages, resp.TotalPages)
			assert.Equal(t, tt.wantHasNext, resp.HasNext)
			assert.Equal(t, tt.total, resp.TotalCount)
		})
	}
}

func TestNewPaginatedResponse_NilDataSerializesAsEmptyArray(t *testing.T) {
	resp := NewPaginatedResponse[string](nil, 0, 1, 20)
	require.NotNil(t, resp.Data)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"data":[]`)
}

func TestParseID(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := ParseID(rec, "42")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, param := range []string{"forty-two", "0", "-7", ""} {
		rec := httptest.NewRecorder()
		_, ok := ParseID(rec, param)
		assert.False(t, ok, "id %q should be rejected", param)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
	}
}
