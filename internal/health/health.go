package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	"github.com/iyhunko/product-catalog/internal/config"
)

const (
	// ComponentName is reported in every health response.
	ComponentName = "product-catalog"
	// ComponentVersion is reported in every health response.
	ComponentVersion = "1.0.0"
)

// Option adds checks to the health handler.
type Option func(*[]health.Config)

// WithDatabase checks that PostgreSQL accepts connections with the configured credentials.
func WithDatabase(conf config.DB) Option {
	return func(checks *[]health.Config) {
		*checks = append(*checks, health.Config{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: conf.DSN(),
			}),
		})
	}
}

// WithPool checks the connection pool the service actually uses.
func WithPool(db *sql.DB) Option {
	return func(checks *[]health.Config) {
		*checks = append(*checks, health.Config{
			Name:      "pool",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				if err := db.PingContext(ctx); err != nil {
					return fmt.Errorf("failed to ping database: %w", err)
				}
				return nil
			},
		})
	}
}

// WithCheck registers an arbitrary check. A failing non-critical check only degrades the status.
func WithCheck(name string, critical bool, check health.CheckFunc) Option {
	return func(checks *[]health.Config) {
		*checks = append(*checks, health.Config{
			Name:      name,
			Timeout:   2 * time.Second,
			SkipOnErr: !critical,
			Check:     check,
		})
	}
}

// NewHealthHandler creates the health instance serving GET /health.
func NewHealthHandler(opts ...Option) (*health.Health, error) {
	var checks []health.Config
	for _, opt := range opts {
		opt(&checks)
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    ComponentName,
			Version: ComponentVersion,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
