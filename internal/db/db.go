package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stockbook/inventory-api/internal/config"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Open connects to the database described by conf. The driver is one of
// postgres, mysql, sqlite or sqlserver.
func Open(conf *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(conf)
	if err != nil {
		return nil, err
	}

	return open(dialector)
}

// OpenPostgresWithURL connects to Postgres with a connection URL such as the
// one given in DATABASE_URL.
func OpenPostgresWithURL(url string) (*gorm.DB, error) {
	return open(postgres.Open(url))
}

func Dialector(conf *config.DatabaseConfig) (gorm.Dialector, error) {
	switch conf.Driver {
	case "postgres", "":
		dsn := conf.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				conf.Host, conf.Port, conf.User, conf.Password, conf.Name, conf.SSLMode,
			)
		}
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := conf.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				conf.User, conf.Password, conf.Host, conf.Port, conf.Name,
			)
		}
		return mysql.Open(dsn), nil
	case "sqlite":
		dsn := conf.DSN
		if dsn == "" {
			dsn = "file:" + conf.Name + ".db?_foreign_keys=1"
		}
		return sqlite.Open(dsn), nil
	case "sqlserver":
		dsn := conf.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"sqlserver://%s:%s@%s:%s?database=%s",
				conf.User, conf.Password, conf.Host, conf.Port, conf.Name,
			)
		}
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, conf.Driver)
	}
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
