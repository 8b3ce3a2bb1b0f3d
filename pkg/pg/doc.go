// Package pg provides PostgreSQL connection management built on pgxpool,
// with environment-driven configuration, bounded connection retries,
// goose-based schema migrations, and helpers for classifying common
// database errors.
//
// The package is the persistence backbone for the Postgres-backed usage
// and enforcement stores. It exposes a configured *pgxpool.Pool and keeps
// all pool tuning behind a single Config struct loaded from environment
// variables.
//
// # Connecting
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
// Connect retries transient failures up to cfg.RetryAttempts times with
// cfg.RetryInterval between attempts, so a database that is still starting
// up does not fail the process immediately.
//
// # Migrations
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		log.Fatal(err)
//	}
//
// Migrate applies the SQL files under cfg.MigrationsPath (the repository's
// migrations directory by default) using goose, recording applied versions
// in cfg.MigrationsTable.
//
// # Error classification
//
// IsNotFoundError, IsDuplicateKeyError, IsForeignKeyViolationError and
// IsTxClosedError translate driver-level errors into questions the calling
// code actually asks. Store implementations rely on IsDuplicateKeyError to
// detect unique-constraint races without string matching.
//
// # Health checks
//
//	check := pg.Healthcheck(pool)
//	if err := check(ctx); err != nil {
//		// database unreachable
//	}
package pg
