package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// databaseDSN builds the MySQL DSN from settings.
//
// When DB_HOST is "/cloudsql/<CONNECTION_NAME>" (or any absolute socket path),
// connect through the Unix domain socket instead of TCP.
func databaseDSN(s Settings) string {
	cfg := mysqlDriver.NewConfig()
	cfg.User = s.DBUser
	cfg.Passwd = s.DBPassword
	cfg.DBName = s.DBName
	cfg.ParseTime = true
	cfg.Net = "tcp"
	cfg.Addr = s.DBHost + ":" + s.DBPort
	if strings.HasPrefix(s.DBHost, "/") {
		cfg.Net = "unix"
		cfg.Addr = s.DBHost
	}
	return cfg.FormatDSN()
}

// ConnectDatabaseWithRetry opens the MySQL connection used by the mysql store driver.
// It retries with capped exponential backoff until ctx is done.
func ConnectDatabaseWithRetry(ctx context.Context, s Settings) (*gorm.DB, error) {
	dsn := databaseDSN(s)

	var attempt int
	for {
		attempt++
		db, err := gorm.Open(mysql.Open(dsn), initConfig())
		if err == nil {
			if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
				sqlDB.SetMaxOpenConns(4)
				sqlDB.SetMaxIdleConns(2)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
			}
			if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
				log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
			}
			log.Printf("connected to database (attempt=%d)", attempt)
			return db, nil
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

func initLog() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
