package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const RequestIdKey key = 1

const requestIdHeader = "X-Request-Id"

// RequestId tags every request with a uuid for log correlation.
// An inbound X-Request-Id from a trusted proxy is reused as-is.
func RequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIdHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIdHeader, rid)
		ctx := context.WithValue(r.Context(), RequestIdKey, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestId returns the request's correlation id, or "".
func GetRequestId(r *http.Request) string {
	rid, _ := r.Context().Value(RequestIdKey).(string)
	return rid
}
