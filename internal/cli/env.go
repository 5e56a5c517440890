package cli

import (
	"time"

	"lms-client/internal/app"
	"lms-client/internal/config"
	"lms-client/internal/infra/memory"
	kvredis "lms-client/internal/infra/redis"
	"lms-client/internal/lmsapi"
	"lms-client/internal/session"
	"github.com/redis/go-redis/v9"
)

// env wires the client stack for one command invocation: API client, local
// store (Redis when configured, in-memory otherwise), session, and the
// aggregator with its caches.
type env struct {
	cfg     config.Config
	api     *lmsapi.Client
	kv      app.KeyValue
	session *session.Provider
	hints   *app.HintCache
	results *memory.ResultCache
	agg     *app.Aggregator
	browser *app.CourseBrowser

	redisClient *redis.Client
}

func newEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	base := apiBaseURL
	if base == "" {
		base = cfg.API.BaseURL
	}
	if base == "" {
		base = "http://localhost:5000"
	}
	api := lmsapi.New(base, config.TTLDuration(cfg.API.Timeout, 15*time.Second))

	e := &env{cfg: cfg, api: api}
	if cfg.Redis.Addr != "" {
		e.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		e.kv = kvredis.NewKVStore(e.redisClient, config.TTLDuration(cfg.Redis.TTL, 0))
	} else {
		// Without Redis the session and hints only live for this process.
		e.kv = memory.NewKVStore()
	}

	e.session = session.NewProvider(api, e.kv)
	e.hints = app.NewHintCache(e.kv)
	e.results = memory.NewResultCache(config.TTLDuration(cfg.Results.TTL, 10*time.Minute))
	e.agg = app.NewAggregator(api, e.hints, e.results)
	e.browser = app.NewCourseBrowser(api)
	return e, nil
}

func (e *env) Close() {
	if e.redisClient != nil {
		_ = e.redisClient.Close()
	}
}
