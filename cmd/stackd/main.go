// stackd is the stack service daemon: it owns the single shared integer
// stack and serves it over HTTP until interrupted.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/dshibkova/intstack/pkg/server"
)

func main() {
	host := flag.String("host", "localhost", "Server host address")
	port := flag.Int("port", 8080, "Server port")
	maxCapacity := flag.Int("max-capacity", 0, "Hard limit on stack capacity (0 = engine default)")
	corsOrigin := flag.String("cors-origin", "*", "CORS allowed origin")
	enableTLS := flag.Bool("tls", false, "Enable TLS/SSL")
	tlsCert := flag.String("tls-cert", "", "Path to TLS certificate file")
	tlsKey := flag.String("tls-key", "", "Path to TLS private key file")
	genCert := flag.Bool("gen-cert", false, "Generate a self-signed certificate at the given cert/key paths")
	enableGraphQL := flag.Bool("graphql", false, "Enable GraphQL API endpoint (/graphql) and GraphiQL playground (/graphiql)")
	apiKeys := flag.String("api-keys", "", "Comma-separated name=secret API keys; empty disables auth")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *genCert {
		if *tlsCert == "" || *tlsKey == "" {
			logger.Fatal("gen-cert requires -tls-cert and -tls-key paths")
		}
		if err := server.GenerateSelfSignedCert(*tlsCert, *tlsKey, *host); err != nil {
			logger.Fatal("failed to generate certificate", zap.Error(err))
		}
		logger.Info("self-signed certificate written",
			zap.String("cert", *tlsCert), zap.String("key", *tlsKey))
	}

	keys, err := parseAPIKeys(*apiKeys)
	if err != nil {
		logger.Fatal("invalid api-keys flag", zap.Error(err))
	}

	config := server.DefaultConfig()
	config.Host = *host
	config.Port = *port
	config.MaxCapacity = *maxCapacity
	config.AllowedOrigins = []string{*corsOrigin}
	config.EnableTLS = *enableTLS
	config.TLSCertFile = *tlsCert
	config.TLSKeyFile = *tlsKey
	config.EnableGraphQL = *enableGraphQL
	config.APIKeys = keys

	srv, err := server.New(config, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	if err := srv.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// newLogger builds a production zap logger at the requested level.
func newLogger(level string) (*zap.Logger, error) {
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	return cfg.Build()
}

// parseAPIKeys parses "name=secret,name2=secret2" into a key map.
func parseAPIKeys(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	keys := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		name, secret, ok := strings.Cut(pair, "=")
		if !ok || name == "" || secret == "" {
			return nil, fmt.Errorf("malformed key pair %q, want name=secret", pair)
		}
		keys[name] = secret
	}
	return keys, nil
}
