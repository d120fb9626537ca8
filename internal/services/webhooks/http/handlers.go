// Package http provides http transport for webhook deliveries
package http

import (
	"io"
	stdhttp "net/http"

	"devecho/internal/modkit/httpkit"
	perr "devecho/internal/platform/errors"
	svc "devecho/internal/services/webhooks/service"
)

// maxBody bounds a delivery payload; GitHub caps hook bodies at 25MB
// but our event payloads are far smaller
const maxBody = 5 << 20

// Register mounts webhook endpoints on the given router
func Register(r httpkit.Router, s *svc.Service) {
	h := &handlers{svc: s}
	httpkit.Post(r, "/github", h.github)
	httpkit.Post(r, "/gitlab", h.gitlab)
}

type handlers struct{ svc *svc.Service }

func (h *handlers) github(r *stdhttp.Request) (any, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}
	return h.svc.HandleGitHub(
		r.Context(),
		r.Header.Get("X-GitHub-Event"),
		r.Header.Get("X-Hub-Signature-256"),
		body,
	)
}

func (h *handlers) gitlab(r *stdhttp.Request) (any, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}
	return h.svc.HandleGitLab(
		r.Context(),
		r.Header.Get("X-Gitlab-Event"),
		r.Header.Get("X-Gitlab-Token"),
		body,
	)
}

func readBody(r *stdhttp.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read webhook body")
	}
	return b, nil
}
