package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connections. Postgres is nil when no connection string is configured.
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
	log      *zap.Logger
}

// InitDB connects to MongoDB and, when configured, to PostgreSQL for the moderation log.
func InitDB(ctx context.Context, cfg *Config, log *zap.Logger) (*DB, error) {
	mongoClient, err := initMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

	db := &DB{Mongo: mongoClient, log: log}
	if cfg.PostgresConnStr == "" {
		log.Warn("POSTGRES_CONN_STR not set, moderation log disabled")
		return db, nil
	}

	postgresDB, err := initPostgres(cfg.PostgresConnStr)
	if err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := postgresDB.AutoMigrate(&models.ModerationLog{}); err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("failed to migrate moderation log: %w", err)
	}
	db.Postgres = postgresDB
	log.Info("connected to PostgreSQL")
	return db, nil
}

func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			db.log.Error("getting SQL DB from GORM", zap.Error(err))
		} else if err := sqlDB.Close(); err != nil {
			db.log.Error("closing PostgreSQL connection", zap.Error(err))
		} else {
			db.log.Info("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.log.Error("closing MongoDB connection", zap.Error(err))
		} else {
			db.log.Info("MongoDB connection closed")
		}
	}
}
