// Package database opens the configured store and builds its repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Stores bundles the repositories of one backend and how to release it.
type Stores struct {
	Products repositories.ProductRepository
	Users    repositories.UserRepository
	close    func(context.Context) error
}

// Close releases the underlying connection, if any.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend named by cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		return &Stores{
			Products: repositories.NewMemoryProductRepository(),
			Users:    repositories.NewMemoryUserRepository(),
		}, nil
	case config.DriverSQLite:
		return openGORM(SQLiteDialector(cfg.DatabaseDSN))
	case config.DriverPostgres:
		return openGORM(postgres.Open(cfg.DatabaseDSN))
	case config.DriverMongo:
		return openMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

const sqliteDriverName = "sqlite3_unicode"

var registerSQLiteDriver sync.Once

// SQLiteDialector opens dsn through a go-sqlite3 driver whose lower() folds
// Unicode like strings.ToLower. The builtin only folds ASCII.
func SQLiteDialector(dsn string) gorm.Dialector {
	registerSQLiteDriver.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", strings.ToLower, true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: dsn})
}

// openGORM opens a relational backend through dialector and migrates the schema.
func openGORM(dialector gorm.Dialector) (*Stores, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	return &Stores{
		Products: repositories.NewGORMProductRepository(db),
		Users:    repositories.NewGORMUserRepository(db),
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

// Migrate creates or updates the relational schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}, &models.User{}, &models.Favorite{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

func openMongo(ctx context.Context, uri, dbName string) (*Stores, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	products := repositories.NewMongoProductRepository(db)
	users := repositories.NewMongoUserRepository(db)
	if err := products.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return &Stores{
		Products: products,
		Users:    users,
		close:    client.Disconnect,
	}, nil
}
