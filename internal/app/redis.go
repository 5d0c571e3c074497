package app

import (
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/locks"
	"tender-notifier/internal/redis"
)

func (app *App) initializeRedis() error {
	if app.Config.RedisAddress == "" {
		app.Logger.Info("Redis: Not configured (shared rate limit and cycle lock disabled)")
		return nil
	}

	redisClient, err := redis.NewClient(&redis.Config{
		Address:  app.Config.RedisAddress,
		Password: app.Config.RedisPassword,
		DB:       app.Config.RedisDBInt(),
		PoolSize: app.Config.RedisPoolSizeInt(),
	})
	if err != nil {
		return err
	}

	manager, err := locks.NewRedsyncManager(redisClient, 2*app.Config.Interval())
	if err != nil {
		redisClient.Close()
		return err
	}

	app.RedisClient = redisClient
	app.Locks = manager
	app.Logger.Info("Redis: Connected", logging.String("address", app.Config.RedisAddress))
	app.Logger.Info("Distributed Locks: Enabled")
	return nil
}
