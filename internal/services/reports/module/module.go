// Package module wires the reports service using modkit
package module

import (
	"devecho/internal/adapters/summarize/ollama"
	modkit "devecho/internal/modkit"
	"devecho/internal/modkit/httpkit"
	"devecho/internal/modkit/repokit"
	evdomain "devecho/internal/services/events/domain"
	"devecho/internal/services/reports/domain"
	rhttp "devecho/internal/services/reports/http"
	"devecho/internal/services/reports/repo"
	"devecho/internal/services/reports/service"
	syncdomain "devecho/internal/services/syncer/domain"
)

// Ports declares what this module exposes
type Ports struct {
	Runner domain.RunnerPort
}

// Injected declares the cross module ports this module requires
type Injected struct {
	Query evdomain.QueryPort
	Sync  syncdomain.SyncPort
}

// Module implements the reports service module
type Module struct {
	deps   modkit.Deps
	prefix string
	ports  Ports
}

// New constructs the reports module. A missing summarizer URL panics at
// boot; a report run must never discover a misconfiguration at 18:00
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("reports"),
		modkit.WithPrefix("/reports"),
	}, opts...)...)

	var injected Injected
	if p, ok := b.Ports.(Injected); ok {
		injected = p
	}
	if injected.Query == nil || injected.Sync == nil {
		panic("reports module requires the events Query and syncer Sync ports")
	}

	cfg := FromConfig(deps.Cfg)

	sum, err := ollama.New(ollama.Options{
		BaseURL: cfg.SummaryURL,
		Model:   cfg.SummaryModel,
		Timeout: cfg.SummaryTimeout,
	})
	if err != nil {
		panic(err)
	}

	svc := service.New(
		repokit.TxRunner(deps.PG),
		repo.NewPG(),
		injected.Query,
		injected.Sync,
		sum,
		service.Config{
			Zone:   cfg.Zone,
			Author: cfg.Author,
			OutDir: cfg.OutDir,
		},
	)

	m := &Module{deps: deps, prefix: b.Prefix}
	m.ports = Ports{Runner: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "reports" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return m.prefix }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		rhttp.Register(rr, m.ports.Runner)
	})
}
