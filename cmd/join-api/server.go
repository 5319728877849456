// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joinflow/webinar-join-service/internal/handlers"
	"github.com/joinflow/webinar-join-service/internal/logging"
	"github.com/joinflow/webinar-join-service/internal/middleware"
)

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, env environment, joinHandler *handlers.JoinHandler, gracefulCloseWG *sync.WaitGroup) *http.Server {
	mux := http.NewServeMux()
	joinHandler.RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = otelhttp.NewHandler(handler, "join-api")

	corsOptions := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}
	if len(env.AllowedOrigins) > 0 {
		corsOptions.AllowedOrigins = env.AllowedOrigins
	} else {
		// Join links are opened from arbitrary landing pages.
		corsOptions.AllowedOrigins = []string{"*"}
	}
	handler = cors.New(corsOptions).Handler(handler)

	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is
	// executed in reverse order.
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)

	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}

// gracefulShutdown drains in-flight requests before the process exits.
func gracefulShutdown(httpServer *http.Server, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.With(logging.ErrKey, err).Error("http server shutdown error")
	}
	gracefulCloseWG.Done()

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
