// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/joinflow/webinar-join-service/internal/logging"
)

// RequestIDHeader is the header the request ID is read from and echoed on.
const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware creates a middleware that tags every request with an
// ID. An ID supplied by the caller is kept; otherwise a new one is
// generated. The ID is attached to the logging context and echoed in the
// response headers.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := logging.AppendCtx(r.Context(), slog.String("request_id", requestID))
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
