// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joinflow/webinar-join-service/internal/logging"
)

// flags are the command line flags for the join service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the join service.
type environment struct {
	Port               string
	Zoom               zoomConfig
	CRM                crmConfig
	AliasEmailDomain   string
	AlwaysAliasEmail   bool
	DefaultCountryCode string
	LocalNumberLength  int
	AllowedOrigins     []string
}

// zoomConfig holds the provider's server-to-server OAuth credentials.
type zoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
}

// crmConfig holds the CRM API configuration.
type crmConfig struct {
	APIKey              string
	BaseURLs            []string
	DisplayNameFieldKey string
}

// parseFlags parses command line flags for the join service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used
	// by [logging.InitStructureLogConfig].
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the join service. Missing
// required credentials are fatal.
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	env := environment{
		Port: port,
		Zoom: zoomConfig{
			AccountID:    requireEnv("ZOOM_ACCOUNT_ID"),
			ClientID:     requireEnv("ZOOM_CLIENT_ID"),
			ClientSecret: requireEnv("ZOOM_CLIENT_SECRET"),
		},
		CRM: crmConfig{
			APIKey:              requireEnv("CRM_API_KEY"),
			BaseURLs:            splitList(os.Getenv("CRM_BASE_URL")),
			DisplayNameFieldKey: os.Getenv("CRM_DISPLAY_NAME_FIELD_KEY"),
		},
		AliasEmailDomain:   os.Getenv("ALIAS_EMAIL_DOMAIN"),
		AlwaysAliasEmail:   os.Getenv("ALWAYS_ALIAS_EMAIL") == "true",
		DefaultCountryCode: os.Getenv("DEFAULT_COUNTRY_CODE"),
		LocalNumberLength:  8,
		AllowedOrigins:     splitList(os.Getenv("ALLOWED_ORIGINS")),
	}

	if env.DefaultCountryCode == "" {
		env.DefaultCountryCode = "852"
	}

	if raw := os.Getenv("LOCAL_NUMBER_LENGTH"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			slog.With(logging.ErrKey, err, "value", raw).Error("invalid LOCAL_NUMBER_LENGTH, using default")
		} else {
			env.LocalNumberLength = n
		}
	}

	return env
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.With("env_var", key).Error("required environment variable is not set")
		os.Exit(1)
	}
	return value
}

// splitList splits a comma-separated env value into trimmed entries.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
