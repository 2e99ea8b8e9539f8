package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port string

	StoreDriver string

	MongoURI      string
	MongoDatabase string
	DatabaseURL   string // postgres
	SQLitePath    string

	AMQPURL     string // empty means in-process notifications only
	EventsQueue string

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string
}

// New builds a Config from the environment. Call godotenv.Load first if a
// .env file should be honoured.
func New() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	driver := strings.ToLower(os.Getenv("STORE_DRIVER"))
	if driver == "" {
		driver = DriverMongo
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	mongoDatabase := os.Getenv("MONGO_DATABASE")
	if mongoDatabase == "" {
		mongoDatabase = "customers"
	}

	dbURL := os.Getenv("DATABASE_URL")

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "customers.db"
	}

	switch driver {
	case DriverMongo, DriverSQLite, DriverMemory:
	case DriverPostgres:
		if dbURL == "" {
			return nil, errors.New("DATABASE_URL environment variable is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q (want mongo, postgres, sqlite or memory)", driver)
	}

	eventsQueue := os.Getenv("EVENTS_QUEUE")
	if eventsQueue == "" {
		eventsQueue = "customer_events"
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		Port:               port,
		StoreDriver:        driver,
		MongoURI:           mongoURI,
		MongoDatabase:      mongoDatabase,
		DatabaseURL:        dbURL,
		SQLitePath:         sqlitePath,
		AMQPURL:            os.Getenv("AMQP_URL"),
		EventsQueue:        eventsQueue,
		CORSAllowedOrigins: origins,
		LogLevel:           os.Getenv("LOG_LEVEL"),
		LogFormat:          os.Getenv("LOG_FORMAT"),
	}, nil
}
