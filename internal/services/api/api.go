// Package api composes the devecho HTTP surface
package api

import (
	"devecho/internal/platform/config"
	"devecho/internal/platform/logger"
	phttp "devecho/internal/platform/net/http"
	"devecho/internal/platform/store"

	"devecho/internal/modkit"
	"devecho/internal/modkit/httpkit"
	"devecho/internal/modkit/module"

	metamod "devecho/internal/services/api/meta/module"
	eventsmod "devecho/internal/services/events/module"
	reportsmod "devecho/internal/services/reports/module"
	schedmod "devecho/internal/services/scheduler/module"
	syncermod "devecho/internal/services/syncer/module"
	webhooksmod "devecho/internal/services/webhooks/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableProfiler bool
}

// Mount wires every module onto the given router and returns the
// scheduler for the caller to run
func Mount(r phttp.Router, opt Options) *schedmod.Module {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// events first; everything else writes through it or reads from it
	events := eventsmod.New(deps)
	evPorts := module.MustPortsOf[eventsmod.Ports](events)

	webhooks := webhooksmod.New(deps, modkit.WithPorts(webhooksmod.Ports{
		Writer: evPorts.Writer,
	}))

	syncer := syncermod.New(deps, modkit.WithPorts(syncermod.Injected{
		Writer: evPorts.Writer,
	}))
	syncPorts := module.MustPortsOf[syncermod.Ports](syncer)

	reports := reportsmod.New(deps, modkit.WithPorts(reportsmod.Injected{
		Query: evPorts.Query,
		Sync:  syncPorts.Sync,
	}))
	repPorts := module.MustPortsOf[reportsmod.Ports](reports)

	sched := schedmod.New(deps, modkit.WithPorts(schedmod.Injected{
		Sync:    syncPorts.Sync,
		Reports: repPorts.Runner,
	}))

	module.Register(events.Name(), events.Ports())

	// webhook receivers verify signatures over the raw body and keep
	// provider facing URLs short, so they mount outside the versioned API
	webhooks.MountRoutes(r)

	mods := []module.Module{metamod.New(deps), syncer, reports}
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	return sched
}
