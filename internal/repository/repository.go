package repository

import (
	"fmt"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/logger"
)

const (
	DriverFile   = "file"
	DriverMemory = "memory"
)

// NewKeyValueStore opens the backend named by driver.
func NewKeyValueStore(driver, path string, sqlCfg SQLConfig, logger *logger.Logger) (models.KeyValueStore, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(path, logger)
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverPostgres, DriverMySQL:
		sqlCfg.Driver = driver
		return NewSQLStore(sqlCfg, logger)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", driver)
}
