//go:build integration

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/health"
	httpAPI "github.com/iyhunko/product-catalog/internal/http"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	reposql "github.com/iyhunko/product-catalog/internal/repository/sql"
	"github.com/iyhunko/product-catalog/internal/schema"
	"github.com/iyhunko/product-catalog/internal/service"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// migrationsPath is relative to the integration folder
const migrationsPath = "../migrations"

// TestDB holds the test database connection and cleanup function
type TestDB struct {
	DB       *sql.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestDB sets up a PostgreSQL container using dockertest and runs migrations
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Create dockertest pool
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	// Set max wait time for Docker operations
	pool.MaxWait = 120 * time.Second

	// Pull and run PostgreSQL container
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	hostAndPort := resource.GetHostPort("5432/tcp")
	databaseURL := fmt.Sprintf("postgres://testuser:secret@%s/testdb?sslmode=disable", hostAndPort)

	log.Println("Connecting to database on url: ", databaseURL)

	// Wait for database to be ready
	var db *sql.DB
	if err = pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		t.Fatalf("Migrations directory not found: %s", migrationsPath)
	}

	if err := reposql.RunMigrations(db, migrationsPath); err != nil {
		t.Fatalf("Could not run migrations: %s", err)
	}

	return &TestDB{
		DB:       db,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connection and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateTables empties every table and resets the id sequences
func (tdb *TestDB) TruncateTables(t *testing.T) {
	t.Helper()

	_, err := tdb.DB.ExecContext(context.Background(),
		"TRUNCATE TABLE events, products_categories, products, categories, brands RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Could not truncate tables: %s", err)
	}
}

// SeedBrand inserts a brand and returns its id
func (tdb *TestDB) SeedBrand(t *testing.T, name, countryCode string) int64 {
	t.Helper()

	var id int64
	err := tdb.DB.QueryRowContext(context.Background(),
		"INSERT INTO brands (name, country_code) VALUES ($1, $2) RETURNING id", name, countryCode).Scan(&id)
	if err != nil {
		t.Fatalf("Could not seed brand: %s", err)
	}
	return id
}

// SeedCategory inserts a category and returns its id
func (tdb *TestDB) SeedCategory(t *testing.T, name string) int64 {
	t.Helper()

	var id int64
	err := tdb.DB.QueryRowContext(context.Background(),
		"INSERT INTO categories (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		t.Fatalf("Could not seed category: %s", err)
	}
	return id
}

// CountPendingEvents returns the number of outbox events of the given type waiting to be published
func (tdb *TestDB) CountPendingEvents(t *testing.T, eventType string) int {
	t.Helper()

	var count int
	err := tdb.DB.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM events WHERE event_type = $1 AND status = 'pending'", eventType).Scan(&count)
	if err != nil {
		t.Fatalf("Could not count events: %s", err)
	}
	return count
}

// NewTestRouter wires the full product stack on top of db
func NewTestRouter(t *testing.T, db *sql.DB) *gin.Engine {
	t.Helper()

	resolver := service.NewResolver(reposql.NewBrandRepository(db), reposql.NewCategoryRepository(db))
	productService := service.NewProductService(
		reposql.NewProductRepository(db),
		reposql.NewTransactionalRepository(db),
		resolver,
		schema.New(),
	)

	h, err := health.NewHealthHandler(health.WithPool(db))
	if err != nil {
		t.Fatalf("Could not create health handler: %s", err)
	}

	gin.SetMode(gin.TestMode)
	return httpAPI.InitRouter(gin.New(), controller.New(h.Handler()), controller.NewProductController(productService))
}
