// Package module implements the events service module
package module

import (
	"devecho/internal/modkit"
	"devecho/internal/modkit/httpkit"
	"devecho/internal/modkit/repokit"
	"devecho/internal/services/events/domain"
	"devecho/internal/services/events/repo"
	"devecho/internal/services/events/service"
)

// Ports exposed by the events module
type Ports struct {
	Writer domain.WriterPort
	Query  domain.QueryPort
}

// Module implements the events service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new events module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	binder := repo.NewPG()
	svc := service.New(repokit.TxRunner(deps.PG), binder, service.Config{
		Zone: opts.Zone,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Writer: svc,
		Query:  svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "events" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
