// Package http provides http transport for manual report runs
package http

import (
	stdhttp "net/http"

	"devecho/internal/modkit/httpkit"
	"devecho/internal/services/reports/domain"
)

// Register mounts report trigger endpoints on the given router
func Register(r httpkit.Router, runner domain.RunnerPort) {
	h := &handlers{runner: runner}
	httpkit.Post(r, "/daily", h.daily)
	httpkit.Post(r, "/weekly", h.weekly)
}

type handlers struct{ runner domain.RunnerPort }

func (h *handlers) daily(r *stdhttp.Request) (any, error) {
	return h.runner.RunDaily(r.Context())
}

func (h *handlers) weekly(r *stdhttp.Request) (any, error) {
	return h.runner.RunWeekly(r.Context())
}
