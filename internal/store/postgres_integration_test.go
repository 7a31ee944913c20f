//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"taskhub/internal/db"
	"taskhub/internal/db/migrate"
	"taskhub/internal/store"
)

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("taskhub"),
		tcpostgres.WithUsername("taskhub"),
		tcpostgres.WithPassword("taskhub"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrate.Run(dsn, "up"))

	conn, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	newStore := func() store.Database {
		_, err := conn.ExecContext(ctx, `TRUNCATE audit_logs, tasks, projects, memberships, workspaces, identities, users`)
		require.NoError(t, err)
		s := store.NewPostgresStore(conn)
		s.TxTimeout = 10 * time.Second
		return s
	}
	suite.Run(t, &StoreSuite{newStore: newStore})
}
