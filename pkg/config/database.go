package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/pkg/logger"
	"github.com/glebarez/sqlite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the SQL and Mongo connections. Either may be nil.
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
}

// InitDB opens the connections the configuration asks for: a SQL database for
// the postgres/sqlite backends or for local credentials, and Mongo when MONGO_URI is set.
func InitDB(cfg *Config) (*DB, error) {
	db := &DB{}

	needSQL := cfg.StoreBackend != StoreFirestore || cfg.IdentityProvider == IdentityLocal
	if needSQL {
		sqlDB, err := openSQL(cfg)
		if err != nil {
			return nil, err
		}
		db.SQL = sqlDB
	}

	if cfg.MongoURI != "" {
		mongoClient, err := initMongo(cfg.MongoURI)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.Mongo = mongoClient
	}
	return db, nil
}

func openSQL(cfg *Config) (*gorm.DB, error) {
	switch cfg.StoreBackend {
	case StorePostgres:
		if cfg.PostgresUrl == "" {
			return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
		db, err := initGorm(postgres.Open(cfg.PostgresUrl))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		logger.Log.Info("Successfully connected to PostgreSQL!")
		return db, nil
	default:
		// firestore with local identity keeps credentials in SQLite
		db, err := initGorm(sqlite.Open(cfg.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite at %s: %w", cfg.SQLitePath, err)
		}
		logger.Log.WithField("path", cfg.SQLitePath).Info("Successfully opened SQLite database!")
		return db, nil
	}
}

// initGorm opens a GORM connection and pings it
func initGorm(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	logger.Log.Info("Successfully connected to MongoDB!")
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			logger.Log.WithError(err).Error("Error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			logger.Log.WithError(err).Error("Error closing SQL connection")
		} else {
			logger.Log.Info("SQL connection closed.")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			logger.Log.WithError(err).Error("Error closing MongoDB connection")
		} else {
			logger.Log.Info("MongoDB connection closed.")
		}
	}
}
