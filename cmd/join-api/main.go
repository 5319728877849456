// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

// Package main is the join service API that resolves webinar join links for
// callers identified by phone number.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joinflow/webinar-join-service/internal/handlers"
	"github.com/joinflow/webinar-join-service/internal/infrastructure/crm"
	"github.com/joinflow/webinar-join-service/internal/infrastructure/zoom"
	"github.com/joinflow/webinar-join-service/internal/infrastructure/zoom/api"
	"github.com/joinflow/webinar-join-service/internal/logging"
	"github.com/joinflow/webinar-join-service/internal/service"
	"github.com/joinflow/webinar-join-service/pkg/phone"
)

func main() {
	// Local development convenience; in deployment the environment is
	// injected directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.With(logging.ErrKey, err).Warn("error loading .env file")
	}

	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Infrastructure clients
	zoomClient := api.NewClient(api.Config{
		AccountID:    env.Zoom.AccountID,
		ClientID:     env.Zoom.ClientID,
		ClientSecret: env.Zoom.ClientSecret,
	})
	provider := zoom.NewProvider(zoomClient)

	// A configured base URL is tried before the stock hosts.
	crmClient := crm.NewClient(crm.Config{
		APIKey:              env.CRM.APIKey,
		BaseURLs:            append(env.CRM.BaseURLs, crm.DefaultBaseURL, crm.FallbackBaseURL),
		DisplayNameFieldKey: env.CRM.DisplayNameFieldKey,
	})

	// Resolution pipeline
	normalizer := phone.NewNormalizer(env.DefaultCountryCode, env.LocalNumberLength)
	joinService := service.NewJoinService(
		service.NewContactService(crmClient, normalizer),
		service.NewOccurrenceService(provider),
		service.NewRegistrationService(provider),
		service.NewEmailStrategy(env.AliasEmailDomain),
		normalizer,
		env.AlwaysAliasEmail,
	)
	joinHandler := handlers.NewJoinHandler(joinService)

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	httpServer := setupHTTPServer(flags, env, joinHandler, &gracefulCloseWG)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, &gracefulCloseWG, cancel)
}
