//go:build integration

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mini_shop/internal/pkg/config"
	"mini_shop/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func setupPostgres(t *testing.T) config.DatabaseConfig {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("mini_shop"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migrate.New("file://../../migrations", connStr)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.DatabaseConfig{
		Driver:   config.DriverPostgres,
		Host:     host,
		Port:     port.Port(),
		User:     "shop",
		Password: "shop",
		DBName:   "mini_shop",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}
}

func TestPostgresConcurrentCheckout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	cfg.Database = setupPostgres(t)

	db, err := database.InitDatabase(cfg.Database, false, zap.NewNop())
	require.NoError(t, err)

	srv, err := New(cfg, zap.NewNop(), db, Options{})
	require.NoError(t, err)
	env := &testEnv{t: t, handler: srv.Handler(), now: time.Now()}

	adminToken := env.login("admin", adminPassword)
	product := env.createProduct(adminToken, "Limited Sneaker", 120, 5)

	const buyers = 12
	tokens := make([]string, buyers)
	for i := range tokens {
		tokens[i] = env.register(fmt.Sprintf("buyer_%03d", i), alicePassword)
	}

	var wg sync.WaitGroup
	var created, rejected int64
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			body, _ := json.Marshal(gin.H{"items": []gin.H{{"id": product.ID, "quantity": 1}}})
			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)

			switch w.Code {
			case http.StatusCreated:
				atomic.AddInt64(&created, 1)
			case http.StatusBadRequest:
				atomic.AddInt64(&rejected, 1)
			}
		}(token)
	}
	wg.Wait()

	assert.Equal(t, int64(5), created)
	assert.Equal(t, int64(buyers-5), rejected)
	assert.Equal(t, 0, env.stock(adminToken, product.ID))
}
