package main

import (
	"context"
	"flag"
	"fmt"

	_ "github.com/joho/godotenv/autoload"

	"devecho/internal/modkit"
	"devecho/internal/modkit/module"
	"devecho/internal/platform/config"
	"devecho/internal/platform/logger"
	"devecho/internal/platform/store"

	eventsmod "devecho/internal/services/events/module"
	reportsmod "devecho/internal/services/reports/module"
	syncermod "devecho/internal/services/syncer/module"
)

func main() {
	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbCfg.MustString("DBURL"),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// Flags
	fMode := flag.String("mode", "daily", "report mode: sync | daily | weekly")
	flag.Parse()

	// Shared deps
	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	events := eventsmod.New(deps)
	evPorts := module.MustPortsOf[eventsmod.Ports](events)

	syncer := syncermod.New(deps, modkit.WithPorts(syncermod.Injected{
		Writer: evPorts.Writer,
	}))
	syncPorts := module.MustPortsOf[syncermod.Ports](syncer)

	reports := reportsmod.New(deps, modkit.WithPorts(reportsmod.Injected{
		Query: evPorts.Query,
		Sync:  syncPorts.Sync,
	}))

	module.Register(events.Name(), events.Ports())
	module.Register(syncer.Name(), syncer.Ports())
	module.Register(reports.Name(), reports.Ports())

	runner := module.MustPortsOf[reportsmod.Ports](reports).Runner

	ctx := context.Background()

	switch *fMode {
	case "sync":
		// Pull today's activity from every configured source, then exit
		sum := syncPorts.Sync.SyncToday(ctx)
		l.Info().
			Str("run_id", sum.RunID).
			Int("inserted", sum.GitHub.Inserted+sum.GitLab.Inserted).
			Int("failed", sum.GitHub.Failed+sum.GitLab.Failed).
			Msg("sync finished")

	case "daily":
		out, err := runner.RunDaily(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("daily report failed")
		}
		fmt.Printf("daily report %s: %s %s\n", out.DayKey, out.Status, out.File)

	case "weekly":
		out, err := runner.RunWeekly(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("weekly report failed")
		}
		fmt.Printf("weekly report %s: %s %s\n", out.DayKey, out.Status, out.File)

	default:
		l.Panic().Str("mode", *fMode).Msg("unknown -mode (expected: sync | daily | weekly)")
	}
}
