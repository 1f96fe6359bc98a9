package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// SQLConfig holds the connection parameters of the SQL backend.
type SQLConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the driver specific connection string.
func (c SQLConfig) DSN() (string, error) {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
			c.Host, c.User, c.Password, c.DBName, c.Port), nil
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.DBName), nil
	}
	return "", fmt.Errorf("unsupported sql driver %q", c.Driver)
}

// KeyValue is one slot of the key-value table.
type KeyValue struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (KeyValue) TableName() string {
	return "mannapay_kv"
}

// SQLStore is a key-value store backed by a single gorm table.
type SQLStore struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewSQLStore(cfg SQLConfig, logger *logger.Logger) (*SQLStore, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	var dialector gorm.Dialector
	if cfg.Driver == DriverMySQL {
		dialector = mysql.Open(dsn)
	} else {
		dialector = postgres.Open(dsn)
	}

	// Suppress "record not found" noise, Get maps it to ErrSnapshotNotFound.
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger, SkipDefaultTransaction: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(&KeyValue{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate key-value table: %w", err)
	}
	logger.Infow("connected to sql storage", "driver", cfg.Driver, "host", cfg.Host, "db", cfg.DBName)
	return &SQLStore{Conn: db, logger: logger}, nil
}

func (db *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var kv KeyValue
	if err := db.Conn.WithContext(ctx).Where(&KeyValue{Key: key}).First(&kv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return []byte(kv.Value), nil
}

func (db *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	kv := KeyValue{Key: key, Value: string(value)}
	err := db.Conn.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to put key %q: %w", key, err)
	}
	return nil
}

func (db *SQLStore) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}
