package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/melitton/internal/auth"
	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/dmitrijs2005/melitton/internal/logging"
	"github.com/dmitrijs2005/melitton/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const infoKey ctxKey = "request"

// requestInfo is filled in by inner middleware and read back by the
// request logger once the handler returns.
type requestInfo struct {
	client string
}

// withRequestInfo returns the request's info slot, attaching a new one when
// no outer middleware did.
func withRequestInfo(r *http.Request) (*http.Request, *requestInfo) {
	if ri, ok := r.Context().Value(infoKey).(*requestInfo); ok {
		return r, ri
	}
	ri := &requestInfo{}
	return r.WithContext(context.WithValue(r.Context(), infoKey, ri)), ri
}

// ClientFromContext returns the token subject set by the auth middleware.
func ClientFromContext(ctx context.Context) string {
	if ri, ok := ctx.Value(infoKey).(*requestInfo); ok {
		return ri.client
	}
	return ""
}

// requestLogger logs one line per request and records it in metrics under
// the matched route pattern, not the raw path, to keep label cardinality low.
func requestLogger(logger logging.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			r, ri := withRequestInfo(r)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			m.ObserveRequest(route, r.Method, status, elapsed)
			logger.Info(r.Context(), "request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"client", ri.client,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
			)
		})
	}
}

// limitBody caps request bodies at n bytes.
func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if n > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireBearer rejects requests without a valid HS256 bearer token.
func requireBearer(secret []byte, logger logging.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := auth.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
			if !ok {
				m.IncrementAuthFailures()
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}

			client, err := auth.ParseToken(tok, secret)
			if err != nil {
				m.IncrementAuthFailures()
				logger.Warn(r.Context(), "rejected token", "error", err, "request_id", middleware.GetReqID(r.Context()))
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			r, ri := withRequestInfo(r)
			ri.client = client
			next.ServeHTTP(w, r)
		})
	}
}
