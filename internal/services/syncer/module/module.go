// Package module wires the syncer service using modkit
package module

import (
	gh "devecho/internal/adapters/ingest/github"
	gl "devecho/internal/adapters/ingest/gitlab"
	modkit "devecho/internal/modkit"
	"devecho/internal/modkit/httpkit"
	evdomain "devecho/internal/services/events/domain"
	"devecho/internal/services/syncer/domain"
	shttp "devecho/internal/services/syncer/http"
	"devecho/internal/services/syncer/service"
)

// Ports declares what this module exposes and requires
type Ports struct {
	Sync domain.SyncPort
}

// Injected declares the required events writer
type Injected struct {
	Writer evdomain.WriterPort
}

// Module implements the syncer service module
type Module struct {
	deps   modkit.Deps
	prefix string
	ports  Ports
}

// New constructs the syncer module. Sources without credentials are
// wired as nil clients and skipped at run time
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("syncer"),
		modkit.WithPrefix("/sync"),
	}, opts...)...)

	var injected Injected
	if p, ok := b.Ports.(Injected); ok {
		injected = p
	}
	if injected.Writer == nil {
		panic("syncer module requires the events Writer port")
	}

	cfg := FromConfig(deps.Cfg)

	var ghc *gh.Client
	if cfg.GitHubToken != "" {
		ghc = gh.NewClient(gh.Options{
			BaseURL:   cfg.GitHubBaseURL,
			TokensCSV: cfg.GitHubToken,
			Timeout:   cfg.HTTPTimeout,
		})
	}
	var glc *gl.Client
	if cfg.GitLabBaseURL != "" && cfg.GitLabToken != "" {
		glc = gl.NewClient(gl.Options{
			BaseURL: cfg.GitLabBaseURL,
			Token:   cfg.GitLabToken,
			Timeout: cfg.HTTPTimeout,
		})
	}

	svc := service.New(injected.Writer, service.Config{
		Zone:        cfg.Zone,
		PerPage:     cfg.PerPage,
		GitHub:      ghc,
		GitHubUser:  cfg.GitHubUser,
		GitLab:      glc,
		GitLabUser:  cfg.GitLabUser,
		GitLabEmail: cfg.GitLabEmail,
	})

	m := &Module{deps: deps, prefix: b.Prefix}
	m.ports = Ports{Sync: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "syncer" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return m.prefix }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		shttp.Register(rr, m.ports.Sync)
	})
}
