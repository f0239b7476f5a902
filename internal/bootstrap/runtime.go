// Package bootstrap wires process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceName identifies this process in traces and metrics.
const ServiceName = "vidtube-api"

// InitRuntime connects to the database and Redis. Redis is optional: when it
// is unreachable the returned client is nil.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("runtime requires config")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

// InitTracing starts the tracer provider described by cfg and returns its
// shutdown function.
func InitTracing(cfg *config.Config, version string) (func(context.Context) error, error) {
	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
}
