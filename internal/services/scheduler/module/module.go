// Package module wires the scheduler using modkit
package module

import (
	"context"

	modkit "devecho/internal/modkit"
	"devecho/internal/modkit/httpkit"
	repdomain "devecho/internal/services/reports/domain"
	"devecho/internal/services/scheduler/service"
	syncdomain "devecho/internal/services/syncer/domain"
)

// Injected declares the cross module ports this module requires
type Injected struct {
	Sync    syncdomain.SyncPort
	Reports repdomain.RunnerPort
}

// Module implements the scheduler module
type Module struct {
	deps modkit.Deps
	svc  *service.Service
}

// New constructs the scheduler module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("scheduler"),
	}, opts...)...)

	var injected Injected
	if p, ok := b.Ports.(Injected); ok {
		injected = p
	}
	if injected.Sync == nil || injected.Reports == nil {
		panic("scheduler module requires the syncer Sync and reports Runner ports")
	}

	cfg := FromConfig(deps.Cfg)
	svc := service.New(injected.Sync, injected.Reports, service.Config{
		Zone:      cfg.Zone,
		SyncAt:    cfg.SyncAt,
		DailyAt:   cfg.DailyAt,
		WeeklyAt:  cfg.WeeklyAt,
		WeeklyDay: cfg.WeeklyDay,
	})

	return &Module{deps: deps, svc: svc}
}

// Run starts the cadence loop; it blocks until ctx is done
func (m *Module) Run(ctx context.Context) error { return m.svc.Run(ctx) }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "scheduler" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return nil }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
