package api

import (
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"

	"poputka/internal/config"
)

// HTTPAuth проверяет API-ключ и ограничивает частоту запросов по клиенту.
type HTTPAuth struct {
	cfg     config.APIConfig
	clients []config.APIClientKey
	limiter *rateLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{
		cfg:     cfg,
		clients: cfg.Auth.APIKeys,
		limiter: newRateLimiter(cfg.RateLimit),
	}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled || !a.cfg.HTTP.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.Auth.Enabled {
			client, err := a.checkAuth(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			if err := a.checkPermissions(client, r); err != nil {
				writeError(w, http.StatusForbidden, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

var errPermissionDenied = fmt.Errorf("permission denied")

func (a *HTTPAuth) checkAuth(r *http.Request) (config.APIClientKey, error) {
	apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader()))
	if apiKey == "" {
		return config.APIClientKey{}, fmt.Errorf("missing api key header")
	}

	// Сравнение со всеми ключами, чтобы не раскрывать их наличие по времени.
	var found *config.APIClientKey
	for i := range a.clients {
		if subtle.ConstantTimeCompare([]byte(a.clients[i].Key), []byte(apiKey)) == 1 {
			found = &a.clients[i]
		}
	}
	if found == nil {
		return config.APIClientKey{}, fmt.Errorf("invalid api key")
	}
	return *found, nil
}

func (a *HTTPAuth) checkPermissions(client config.APIClientKey, r *http.Request) error {
	required := requiredPermissionHTTP(r)
	if required == "" {
		return nil
	}
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermissionHTTP(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/trips") && r.Method == http.MethodGet:
		return "read:trips"
	case strings.HasPrefix(path, "/api/v1/trips"):
		return "write:trips"
	case strings.HasPrefix(path, "/api/v1/bookings") && r.Method == http.MethodGet:
		return "read:bookings"
	case strings.HasPrefix(path, "/api/v1/bookings"):
		return "write:bookings"
	case strings.HasPrefix(path, "/api/v1/requests") && r.Method == http.MethodGet:
		return "read:requests"
	case strings.HasPrefix(path, "/api/v1/requests"):
		return "write:requests"
	case strings.HasPrefix(path, "/api/v1/messages"):
		return "read:bookings"
	case path == "/api/v1/stats":
		return "read:stats"
	}
	return ""
}

func (a *HTTPAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	key := a.clientKey(r)
	lim := a.limiter.getLimiter(key)
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyHeader())); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) apiKeyHeader() string {
	header := strings.TrimSpace(a.cfg.Auth.HeaderAPIKey)
	if header == "" {
		header = "x-api-key"
	}
	return header
}
