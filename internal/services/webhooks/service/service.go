// Package service implements webhook verification and dispatch
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	gh "devecho/internal/adapters/ingest/github"
	gl "devecho/internal/adapters/ingest/gitlab"
	perr "devecho/internal/platform/errors"
	"devecho/internal/platform/logger"
	evdomain "devecho/internal/services/events/domain"
)

// Options configures webhook verification. An empty Secret disables
// verification entirely; that is logged once per delivery
type Options struct {
	Secret string
}

// Service verifies deliveries and feeds normalized events to the writer
type Service struct {
	writer evdomain.WriterPort
	secret string
	log    logger.Logger
}

// New constructs the webhook service
func New(writer evdomain.WriterPort, opts Options) *Service {
	if writer == nil {
		panic("webhooks.Service requires a non nil events writer")
	}
	return &Service{
		writer: writer,
		secret: opts.Secret,
		log:    *logger.Named("webhooks"),
	}
}

// HandleGitHub verifies the X-Hub-Signature-256 HMAC over the raw body
// and ingests the delivery. An invalid or missing signature is rejected
// with an unauthorized error; sibling records of a valid delivery are
// always all processed
func (s *Service) HandleGitHub(ctx context.Context, event, signature string, body []byte) (evdomain.BatchResult, error) {
	if err := s.verifyGitHub(signature, body); err != nil {
		return evdomain.BatchResult{}, err
	}
	ins, err := gh.NormalizeEvent(event, body)
	if err != nil {
		return evdomain.BatchResult{}, err
	}
	if len(ins) == 0 {
		s.log.Debug().Str("event", event).Msg("github delivery carried no events")
		return evdomain.BatchResult{}, nil
	}
	return s.writer.IngestBatch(ctx, ins), nil
}

// HandleGitLab checks the X-Gitlab-Token header against the configured
// secret and ingests the delivery
func (s *Service) HandleGitLab(ctx context.Context, event, token string, body []byte) (evdomain.BatchResult, error) {
	if err := s.verifyGitLab(token); err != nil {
		return evdomain.BatchResult{}, err
	}
	ins, err := gl.NormalizeHook(event, body)
	if err != nil {
		return evdomain.BatchResult{}, err
	}
	if len(ins) == 0 {
		s.log.Debug().Str("event", event).Msg("gitlab delivery carried no events")
		return evdomain.BatchResult{}, nil
	}
	return s.writer.IngestBatch(ctx, ins), nil
}

func (s *Service) verifyGitHub(signature string, body []byte) error {
	if s.secret == "" {
		s.log.Warn().Msg("webhook secret not configured, skipping signature verification")
		return nil
	}
	if signature == "" {
		return perr.Newf(perr.ErrorCodeUnauthorized, "missing webhook signature")
	}
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return perr.Newf(perr.ErrorCodeUnauthorized, "invalid webhook signature")
	}
	return nil
}

func (s *Service) verifyGitLab(token string) error {
	if s.secret == "" {
		s.log.Warn().Msg("webhook secret not configured, skipping token verification")
		return nil
	}
	if !hmac.Equal([]byte(token), []byte(s.secret)) {
		return perr.Newf(perr.ErrorCodeUnauthorized, "invalid webhook token")
	}
	return nil
}
