package data

import (
	"context"
	"fmt"

	"github.com/bgpstack/roa-history/internal/conf"
	"github.com/bgpstack/roa-history/internal/pkg/database"
	"github.com/bgpstack/roa-history/internal/pkg/logger"
	roadata "github.com/bgpstack/roa-history/internal/roa/data"
	"github.com/redis/go-redis/v9"
)

// Data holds process-wide data resources, constructed once at startup and
// injected into the layers that need them.
type Data struct {
	DB          *database.DB
	RedisClient *redis.Client
	Logger      *logger.Logger
}

func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	d := &Data{Logger: log}

	// The database is only needed for the postgres store driver; the rpc
	// driver talks to a remote store over HTTP.
	if config.Store.Driver != "rpc" {
		db, err := database.New(&database.Config{
			Host:            config.Database.Host,
			Port:            config.Database.Port,
			User:            config.Database.User,
			Password:        config.Database.Password,
			DBName:          config.Database.DBName,
			SSLMode:         config.Database.SSLMode,
			MaxIdleConns:    config.Database.MaxIdleConns,
			MaxOpenConns:    config.Database.MaxOpenConns,
			ConnMaxLifetime: config.Database.ConnMaxLifetime,
			ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
			LogLevel:        config.Database.LogLevel,
			SlowThreshold:   config.Database.SlowThreshold,
			AutoMigrate:     config.Database.AutoMigrate,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init database: %w", err)
		}

		if err := db.AutoMigrate(&roadata.ROAHistoryPO{}, &roadata.DumpFilePO{}); err != nil {
			db.Close()
			return nil, nil, err
		}

		d.DB = db
	}

	if config.RateLimit.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", config.Redis.Host, config.Redis.Port),
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			if d.DB != nil {
				d.DB.Close()
			}
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		d.RedisClient = client
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if d.DB != nil {
			d.DB.Close()
		}
		if d.RedisClient != nil {
			d.RedisClient.Close()
		}
	}

	return d, cleanup, nil
}
