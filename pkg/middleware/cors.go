package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls the Cross-Origin Resource Sharing middleware.
type CORSConfig struct {
	// AllowedOrigins lists origins permitted to call the API, e.g.
	// "https://shop.example.com". A "*" entry allows every origin.
	AllowedOrigins []string

	// AllowedMethods and AllowedHeaders fall back to sensible API
	// defaults when left empty.
	AllowedMethods []string
	AllowedHeaders []string

	// ExposedHeaders lists response headers scripts may read.
	ExposedHeaders []string

	// MaxAge caches preflight results for this many seconds (default 3600).
	MaxAge int

	// AllowCredentials permits cookies and Authorization headers.
	AllowCredentials bool

	// Environment widens origin matching: in "development" every origin
	// is allowed even without a "*" entry.
	Environment string
}

// DefaultCORSConfig returns the permissive configuration used in
// development.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID", "X-User-ID"},
		ExposedHeaders: []string{"X-Correlation-ID", "X-User-ID"},
		MaxAge:         3600,
		Environment:    "development",
	}
}

// corsPolicy holds the header values precomputed from a CORSConfig.
type corsPolicy struct {
	wildcard    bool
	origins     map[string]struct{}
	methods     string
	headers     string
	exposed     string
	maxAge      string
	credentials bool
}

func newCORSPolicy(cfg CORSConfig) *corsPolicy {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID", "X-User-ID"}
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 3600
	}

	p := &corsPolicy{
		wildcard:    cfg.Environment == "development",
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		exposed:     strings.Join(cfg.ExposedHeaders, ", "),
		maxAge:      strconv.Itoa(cfg.MaxAge),
		credentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			p.wildcard = true
			continue
		}
		p.origins[o] = struct{}{}
	}
	return p
}

// apply writes the CORS headers for the given request origin.
func (p *corsPolicy) apply(h http.Header, origin string) {
	switch {
	case p.wildcard:
		h.Set("Access-Control-Allow-Origin", "*")
	case origin != "":
		if _, ok := p.origins[origin]; ok {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
		}
	}

	h.Set("Access-Control-Allow-Methods", p.methods)
	h.Set("Access-Control-Allow-Headers", p.headers)
	if p.exposed != "" {
		h.Set("Access-Control-Expose-Headers", p.exposed)
	}
	h.Set("Access-Control-Max-Age", p.maxAge)
	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}

// CORS returns middleware applying the given sharing policy. Preflight
// OPTIONS requests are answered with 204 and never reach the next
// handler.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	policy := newCORSPolicy(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy.apply(w.Header(), r.Header.Get("Origin"))

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
