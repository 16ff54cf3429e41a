package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// readinessTimeout bounds the total time spent probing dependencies.
const readinessTimeout = 5 * time.Second

// Checker probes a single dependency, returning nil when it is healthy.
type Checker func(ctx context.Context) error

// Status is the reported health of the service or one of its dependencies.
type Status string

const (
	StatusUp Status = "up"

	// StatusDegraded means every critical dependency is healthy but at
	// least one non-critical one is not. The service keeps taking traffic.
	StatusDegraded Status = "degraded"

	StatusDown Status = "down"
)

// Response is the body served by the liveness and readiness endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one dependency's outcome within a readiness response.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type registration struct {
	check    Checker
	critical bool
}

// Handler serves liveness and readiness endpoints over a set of named
// dependency checkers. Register may be called concurrently with serving.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]registration
}

func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]registration)}
}

// Register adds a critical dependency probe. Re-registering a name
// replaces the previous checker.
func (h *Handler) Register(name string, checker Checker) {
	h.RegisterCritical(name, checker)
}

// RegisterCritical adds a probe whose failure makes the service not ready.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.register(name, checker, true)
}

// RegisterNonCritical adds a probe whose failure only degrades the
// service; readiness still reports 200.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(name, checker, false)
}

func (h *Handler) register(name string, checker Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = registration{check: checker, critical: critical}
}

func (h *Handler) snapshot() map[string]registration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	checkers := make(map[string]registration, len(h.checkers))
	for name, reg := range h.checkers {
		checkers[name] = reg
	}
	return checkers
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// LivenessHandler reports whether the process is running at all. It never
// consults the registered checkers.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered checker. A failing critical
// dependency produces a 503; failing non-critical ones leave the service
// ready but mark it degraded.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checkers := h.snapshot()
		checks := make(map[string]CheckResult, len(checkers))
		overall := StatusUp

		for name, reg := range checkers {
			result := CheckResult{Status: StatusUp, Critical: reg.critical}
			if err := reg.check(ctx); err != nil {
				result.Status = StatusDown
				result.Error = err.Error()
				if reg.critical {
					overall = StatusDown
				} else if overall == StatusUp {
					overall = StatusDegraded
				}
			}
			checks[name] = result
		}

		status := http.StatusOK
		if overall == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeResponse(w, status, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}
