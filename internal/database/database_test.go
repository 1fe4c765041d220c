package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"docsync/internal/config"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: "5432", User: "sync", Name: "docs"}

	tests := []struct {
		name    string
		mutate  func(c *config.DatabaseConfig)
		want    string
		wantErr bool
	}{
		{
			name:   "password and sslmode",
			mutate: func(c *config.DatabaseConfig) { c.Password = "s3cr3t"; c.SSLMode = "disable" },
			want:   "postgres://sync:s3cr3t@db:5432/docs?application_name=docsync&sslmode=disable",
		},
		{
			name: "no password no sslmode",
			want: "postgres://sync@db:5432/docs?application_name=docsync",
		},
		{
			name:   "password is escaped",
			mutate: func(c *config.DatabaseConfig) { c.Password = "p@ss/word" },
			want:   "postgres://sync:p%40ss%2Fword@db:5432/docs?application_name=docsync",
		},
		{name: "missing host", mutate: func(c *config.DatabaseConfig) { c.Host = "" }, wantErr: true},
		{name: "missing port", mutate: func(c *config.DatabaseConfig) { c.Port = "" }, wantErr: true},
		{name: "missing user", mutate: func(c *config.DatabaseConfig) { c.User = "" }, wantErr: true},
		{name: "missing name", mutate: func(c *config.DatabaseConfig) { c.Name = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			if tt.mutate != nil {
				tt.mutate(&c)
			}
			got, err := BuildPostgresDSN(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { sqlOpen = orig })
}

func noDelay(t *testing.T) {
	t.Helper()
	orig := retryDelay
	retryDelay = func(int) time.Duration { return time.Millisecond }
	t.Cleanup(func() { retryDelay = orig })
}

func TestOpen(t *testing.T) {
	conf := config.DatabaseConfig{
		Host:               "localhost",
		Port:               "5432",
		User:               "sync",
		Name:               "docs",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
		ConnectAttempts:    3,
	}

	t.Run("connects on first ping", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)

		mock.ExpectPing()

		core, logs := observer.New(zap.InfoLevel)
		xdb, err := Open(context.Background(), conf, zap.New(core))
		require.NoError(t, err)
		assert.Equal(t, DriverName, xdb.DriverName())
		assert.Same(t, db, xdb.DB)
		assert.Equal(t, 10, db.Stats().MaxOpenConnections)
		assert.Equal(t, 1, logs.FilterMessage("db_connected").Len())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retries until the database answers", func(t *testing.T) {
		noDelay(t)
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing()

		core, logs := observer.New(zap.InfoLevel)
		_, err = Open(context.Background(), conf, zap.New(core))
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("db_ping_retry").Len())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		noDelay(t)
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		for i := 0; i < conf.ConnectAttempts; i++ {
			mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		}
		mock.ExpectClose()

		xdb, err := Open(context.Background(), conf, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db ping after 3 attempt(s): connection refused")
		assert.Nil(t, xdb)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops retrying when the context ends", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)

		ctx, cancel := context.WithCancel(context.Background())
		orig := retryDelay
		retryDelay = func(int) time.Duration { cancel(); return time.Hour }
		t.Cleanup(func() { retryDelay = orig })

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		_, err = Open(ctx, conf, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("sql open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))

		xdb, err := Open(context.Background(), conf, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sql open: open error")
		assert.Nil(t, xdb)
	})

	t.Run("invalid config", func(t *testing.T) {
		xdb, err := Open(context.Background(), config.DatabaseConfig{}, zap.NewNop())
		assert.Error(t, err)
		assert.Nil(t, xdb)
	})
}
