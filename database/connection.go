// database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/ahzs645/spartandb/config"
)

var (
	DB     *sql.DB
	driver string
)

// InitDB opens the store. The default is a SQLite file (pure-Go driver,
// foreign keys enforced); "mysql" points the same schema at a shared
// server.
func InitDB(cfg config.DatabaseConfig) error {
	var err error

	switch cfg.Driver {
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.Path)
		DB, err = sql.Open("sqlite", dsn)
		if err != nil {
			return fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// Single writer; one connection keeps the per-connection pragmas
		// and transaction scope simple.
		DB.SetMaxOpenConns(1)

	case "mysql":
		// DSN: username:password@protocol(address)/dbname
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
		)
		DB, err = sql.Open("mysql", dsn)
		if err != nil {
			return fmt.Errorf("failed to open mysql connection: %w", err)
		}
		DB.SetMaxOpenConns(25)
		DB.SetMaxIdleConns(25)
		DB.SetConnMaxLifetime(5 * time.Minute)

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	driver = cfg.Driver
	log.Infof("Connected to %s store", cfg.Driver)
	return nil
}

// CloseDB closes the connection pool; called on shutdown.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Debug("Database connection closed")
	}
}

// insertIgnore is the dialect's insert-or-ignore prefix. Dimension loads
// rely on it for their first-writer-wins semantics.
func insertIgnore() string {
	if driver == "mysql" {
		return "INSERT IGNORE"
	}
	return "INSERT OR IGNORE"
}
