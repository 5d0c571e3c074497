package app

import (
	"time"

	"tender-notifier/internal/common/cache"
	commonhttp "tender-notifier/internal/common/http"
	"tender-notifier/internal/tenderapi"
)

const keysCacheTTL = 5 * time.Minute

func (app *App) initializeAPI() error {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.TTL = keysCacheTTL
	if app.RedisClient != nil {
		cacheConfig.Type = cache.TypeRedis
		cacheConfig.RedisClient = app.RedisClient.Raw()
	}
	keyCache, err := cache.New(cacheConfig)
	if err != nil {
		return err
	}

	httpClient := commonhttp.NewHTTPClient(
		commonhttp.WithTimeout(app.Config.Timeout()),
		commonhttp.WithInsecureSkipVerify(app.Config.TenderAPIInsecure),
		commonhttp.WithMaxIdleConnsPerHost(app.Config.ExportWorkerCount()),
	)

	app.API = tenderapi.NewClient(
		commonhttp.NewJSONClient(httpClient, app.Config.TenderAPIURL, app.Config.TenderAPIToken),
		tenderapi.WithLimiter(app.initializeRateLimiter()),
		tenderapi.WithKeyCache(keyCache, keysCacheTTL),
	)
	return nil
}
