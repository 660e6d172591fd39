package repository_test

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/eventbooking-api/internal/db"
)

// openPostgres starts a throwaway postgres container. The test is skipped
// when docker is not reachable.
func openPostgres(t *testing.T) sqlFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest.NewPool: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=booking",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=booking",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})
	_ = resource.Expire(120)

	url := fmt.Sprintf("postgres://booking:secret@%s/booking?sslmode=disable", resource.GetHostPort("5432/tcp"))
	pool.MaxWait = 60 * time.Second
	err = pool.Retry(func() error {
		conn, err := sql.Open("pgx", url)
		if err != nil {
			return err
		}
		defer conn.Close()
		return conn.Ping()
	})
	require.NoError(t, err)

	gdb, err := db.OpenPostgresWithURL(url)
	require.NoError(t, err)

	return newSQLFixture(t, gdb)
}

func TestLedgerRepository_PostgresConcurrentBookings(t *testing.T) {
	assertConcurrentBookings(t, openPostgres(t))
}
