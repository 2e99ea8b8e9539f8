package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/unclebandit/customer-service/internal/config"
	"github.com/unclebandit/customer-service/internal/db"
	"github.com/unclebandit/customer-service/internal/repository"
)

// Store is the opened customer store plus whatever releases its connection.
type Store struct {
	Customers repository.CustomerRepositoryInterface
	close     func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects the backend named by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := db.ConnectMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, err
		}
		repo := repository.NewMongoCustomerRepository(client, cfg.MongoDatabase)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &Store{
			Customers: repo,
			close:     func() error { return client.Disconnect(context.Background()) },
		}, nil

	case config.DriverPostgres:
		conn, err := db.OpenPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Customers: &repository.CustomerRepository{DB: conn, Dialect: db.DialectPostgres},
			close:     conn.Close,
		}, nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Customers: &repository.CustomerRepository{DB: conn, Dialect: db.DialectSQLite},
			close:     conn.Close,
		}, nil

	case config.DriverMemory:
		logger.Warn("⚠️ using in-memory store, data is lost on restart")
		return &Store{Customers: repository.NewMemoryCustomerRepository()}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
