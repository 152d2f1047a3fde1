// cmd/tools/seed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"branded-email-workers/internal/common/config"
	"branded-email-workers/internal/common/database"
	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/store"
	"branded-email-workers/pkg/seed"
)

func main() {
	file := flag.String("file", "configs/seed/example.yaml", "Path to the seed bundle (.yaml, .yml or .json)")
	configPath := flag.String("config", "", "Path to a config file (defaults to configs/config.yaml lookup)")
	dryRun := flag.Bool("dry-run", false, "Validate the bundle without writing to the database")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout for migration and writes")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	bundle, err := seed.LoadFile(*file)
	if err != nil {
		zapLog.Fatal("failed to load bundle", zap.String("file", *file), zap.Error(err))
	}
	if err := bundle.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *dryRun {
		zapLog.Info("bundle is valid", zap.String("file", *file))
		return
	}

	var cfg *config.Config
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pg.Close()

	log := logger.NewZapAdapter(zapLog)

	// Saves invalidate cached records, so connect to the same redis the workers use.
	var redis *database.RedisClient
	if cfg.Database.Redis.Address != "" && cfg.Rendering.CacheTTL > 0 {
		redis, err = database.DialRedis(ctx, cfg.Database.Redis)
		if err != nil {
			zapLog.Warn("redis unavailable, cached records expire on their own", zap.Error(err))
		} else {
			defer redis.Close()
		}
	}

	cache := store.NewCache(redis, time.Duration(cfg.Rendering.CacheTTL)*time.Second, log)
	st := store.New(pg, cache, log)
	if err := st.Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	counts, err := seed.Apply(ctx, st, bundle)
	if err != nil {
		zapLog.Error("seed stopped", zap.Any("written", counts.Fields()), zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("seed applied", zap.String("file", *file), zap.Any("written", counts.Fields()))
}
