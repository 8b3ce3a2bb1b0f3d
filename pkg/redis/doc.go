// Package redis provides Redis connection management with environment-driven
// configuration and bounded connection retries.
//
// The Redis-backed windowed usage store runs over a client this package
// produces:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	store := usage.NewRedisStore(client)
package redis
