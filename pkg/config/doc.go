// Package config loads typed configuration structs from environment
// variables, with optional .env file support and per-type caching.
//
// Configuration structs declare their sources with `env` tags (parsed by
// caarlos0/env) and are loaded once per process:
//
//	type RedisConfig struct {
//		ConnURL   string        `env:"REDIS_URL,required"`
//		Retention time.Duration `env:"USAGE_RETENTION" envDefault:"720h"`
//	}
//
//	var cfg RedisConfig
//	config.MustLoad(&cfg)
//
// Load returns the cached value on repeat calls for the same struct type,
// so independent components can load shared configuration without
// coordinating.
package config
