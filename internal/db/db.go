// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// ConnectMongo opens the process-wide client. The driver pools connections
// internally, so one client serves every request.
func ConnectMongo(ctx context.Context, uri string, logger *slog.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("✅ Connected to mongo")
	return client, nil
}

// OpenPostgres opens the pool, pings it and applies pending migrations.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	if err := Migrate(DialectPostgres, dsn); err != nil {
		return nil, err
	}
	return open(ctx, "postgres", dsn, logger)
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	if err := Migrate(DialectSQLite, dsn); err != nil {
		return nil, err
	}
	db, err := open(ctx, "sqlite3", dsn, logger)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway
	db.SetMaxOpenConns(1)
	return db, nil
}

func open(ctx context.Context, driverName, dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driverName, err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driverName, err)
	}

	logger.Info("✅ Connected to database", "driver", driverName)
	return db, nil
}
