package store

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/foodpos/config"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

const redisKeyPrefix = "foodpos:"

// Opened is a store plus whatever the chosen driver brought with it.
type Opened struct {
	Store *Store
	// Locker is set for the redis driver, so checkouts can be guarded across processes.
	Locker *redislock.Client
	Close  func()
}

// Open builds the store selected by STORE_DRIVER.
func Open(ctx context.Context, s config.Settings, logger *logrus.Logger) (Opened, error) {
	switch s.StoreDriver {
	case config.StoreDriverFile, "":
		fs, err := OpenFileStore(s.DataFile, logger)
		if err != nil {
			return Opened{}, err
		}
		logger.WithField("path", fs.Path()).Info("store: using file backend")
		return Opened{Store: New(fs, logger), Close: func() {}}, nil

	case config.StoreDriverRedis:
		rdb, locker, err := config.ConnectRedisWithRetry(ctx, s)
		if err != nil {
			return Opened{}, err
		}
		return Opened{
			Store:  New(NewRedisStore(rdb, redisKeyPrefix), logger),
			Locker: locker,
			Close:  func() { _ = rdb.Close() },
		}, nil

	case config.StoreDriverMySQL:
		db, err := config.ConnectDatabaseWithRetry(ctx, s)
		if err != nil {
			return Opened{}, err
		}
		gs, err := NewGormStore(ctx, db)
		if err != nil {
			return Opened{}, err
		}
		sqlDB, _ := db.DB()
		return Opened{
			Store: New(gs, logger),
			Close: func() {
				if sqlDB != nil {
					_ = sqlDB.Close()
				}
			},
		}, nil

	case config.StoreDriverMemory:
		logger.Warn("store: memory backend, nothing survives a restart")
		return Opened{Store: New(NewMemoryStore(), logger), Close: func() {}}, nil

	default:
		return Opened{}, fmt.Errorf("unknown STORE_DRIVER %q", s.StoreDriver)
	}
}
