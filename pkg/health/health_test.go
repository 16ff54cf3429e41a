package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyCheck(context.Context) error { return nil }

func failingCheck(msg string) Checker {
	return func(context.Context) error { return errors.New(msg) }
}

func readiness(t *testing.T, h *Handler) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestLivenessHandler_AlwaysUp(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", failingCheck("connection refused"))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Empty(t, resp.Checks)
}

func TestReadinessHandler_AllHealthy(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", healthyCheck)
	h.RegisterNonCritical("kafka", healthyCheck)

	rec, resp := readiness(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Equal(t, StatusUp, resp.Checks["postgres"].Status)
	assert.True(t, resp.Checks["postgres"].Critical)
	assert.Equal(t, StatusUp, resp.Checks["kafka"].Status)
	assert.False(t, resp.Checks["kafka"].Critical)
}

func TestReadinessHandler_CriticalFailureIs503(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", failingCheck("connection refused"))
	h.RegisterNonCritical("kafka", healthyCheck)

	rec, resp := readiness(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusDown, resp.Checks["postgres"].Status)
	assert.Equal(t, "connection refused", resp.Checks["postgres"].Error)
}

func TestReadinessHandler_NonCriticalFailureDegrades(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", healthyCheck)
	h.RegisterNonCritical("kafka", failingCheck("broker unreachable"))

	rec, resp := readiness(t, h)

	// Still ready, but flagged.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, StatusDown, resp.Checks["kafka"].Status)
	assert.Equal(t, "broker unreachable", resp.Checks["kafka"].Error)
}

func TestReadinessHandler_CriticalFailureOutweighsDegraded(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("postgres", failingCheck("db down"))
	h.RegisterNonCritical("kafka", failingCheck("broker down"))

	rec, resp := readiness(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusDown, resp.Status)
}

func TestReadinessHandler_NoCheckers(t *testing.T) {
	rec, resp := readiness(t, NewHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
}

func TestRegister_DefaultsToCritical(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", failingCheck("down"))

	rec, resp := readiness(t, h)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, resp.Checks["postgres"].Critical)
}

func TestRegister_ReplacesPreviousChecker(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", failingCheck("down"))
	h.Register("postgres", healthyCheck)

	rec, resp := readiness(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Checks["postgres"].Status)
}

func TestRegister_CanDemoteToNonCritical(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("kafka", failingCheck("down"))
	h.RegisterNonCritical("kafka", failingCheck("down"))

	rec, resp := readiness(t, h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.False(t, resp.Checks["kafka"].Critical)
}
