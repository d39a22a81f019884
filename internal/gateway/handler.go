package gateway

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// unavailableBody is the uniform client-facing error for any transport
// failure reaching the upstream. Diagnostic detail stays in the logs.
const unavailableBody = `{"error":"Service unavailable"}`

// ProxyHandler relays client requests to the user-service
type ProxyHandler struct {
	upstream *url.URL
	proxy    *httputil.ReverseProxy
}

// NewProxyHandler creates a proxy for the given upstream base URL
func NewProxyHandler(upstream *url.URL) *ProxyHandler {
	proxy := httputil.NewSingleHostReverseProxy(upstream)

	// Upstream unreachable, connection reset, timeout: all collapse into the
	// same fixed 500 response. No retries, a failed upstream call is a failed
	// client response.
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Error("Upstream request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"upstream", upstream.Host,
			"error", err,
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(unavailableBody))
	}

	return &ProxyHandler{
		upstream: upstream,
		proxy:    proxy,
	}
}

// Relay proxies the request to the upstream with the given prefix stripped,
// relaying the upstream status and body verbatim.
// Example: /api/users/login -> <upstream>/users/login with stripPrefix "/api".
func (h *ProxyHandler) Relay(stripPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := c.Request

		if stripPrefix != "" {
			req.URL.Path = strings.TrimPrefix(req.URL.Path, stripPrefix)
			if req.URL.Path == "" {
				req.URL.Path = "/"
			}
		}

		slog.Debug("Proxying request",
			"method", req.Method,
			"path", req.URL.Path,
			"upstream", h.upstream.Host,
		)

		h.proxy.ServeHTTP(c.Writer, req)
	}
}

// Health is the gateway's own health check handler
func (h *ProxyHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "api-gateway",
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
