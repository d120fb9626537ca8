// Package http provides http transport for manual sync runs
package http

import (
	stdhttp "net/http"

	"devecho/internal/modkit/httpkit"
	"devecho/internal/services/syncer/domain"
)

// Register mounts the sync trigger endpoint on the given router
func Register(r httpkit.Router, sync domain.SyncPort) {
	h := &handlers{sync: sync}
	httpkit.Post(r, "/now", h.now)
}

type handlers struct{ sync domain.SyncPort }

func (h *handlers) now(r *stdhttp.Request) (any, error) {
	return h.sync.SyncToday(r.Context()), nil
}
