// @title         DevEcho API
// @version       0.1.0
// @description   Activity ingestion, sync triggers and report runs

package main

import (
	"context"

	_ "github.com/joho/godotenv/autoload"

	"devecho/internal/platform/config"
	"devecho/internal/platform/logger"
	phttp "devecho/internal/platform/net/http"
	"devecho/internal/platform/store"

	"devecho/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_SERVER_*)
	root := config.New()
	srvCfg := root.Prefix("CORE_SERVER_")

	pgCfg := root.Prefix("SERVICE_PGSQL_") // pgCfg lives under SERVICE_PGSQL_*

	// bring up logging early
	l := logger.Get()

	// open the platform store (postgres only)
	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_SERVER_PORT / CORE_SERVER_ADDR)
	srv := phttp.NewServer(srvCfg)

	// mount modules; the scheduler comes back for us to run.
	// modules read their own CORE_* keys, so they get the root config
	sched := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableProfiler: srvCfg.MayBool("PROFILER", false),
		},
	)

	// cadence loop runs beside the HTTP server for the process lifetime
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	// run
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
