// Package module wires the webhooks service using modkit
package module

import (
	"net/http"

	modkit "devecho/internal/modkit"
	"devecho/internal/modkit/httpkit"
	evdomain "devecho/internal/services/events/domain"
	whttp "devecho/internal/services/webhooks/http"
	wsvc "devecho/internal/services/webhooks/service"
)

// Ports declares the injected events writer this module requires
type Ports struct {
	Writer evdomain.WriterPort
}

// Module implements the webhooks service module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	register func(httpkit.Router)

	svc *wsvc.Service
}

// New constructs the webhooks module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("webhooks"),
		modkit.WithPrefix("/webhooks"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Writer == nil {
		panic("webhooks module requires the events Writer port")
	}

	cfg := FromConfig(deps.Cfg)
	svc := wsvc.New(injected.Writer, wsvc.Options{Secret: cfg.Secret})

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.register = func(r httpkit.Router) { whttp.Register(r, svc) }
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return nil }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return m.prefix }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		m.register(rr)
	})
}
