// Package drafting generates proposal body copy from a short brief via a
// generative-text provider. Provider failures never block the user flow:
// any error or unusable output is logged and replaced with a
// deterministic fallback body.
package drafting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Request carries the inputs for one draft.
type Request struct {
	Title      string
	ClientName string
	Brief      string
}

// Provider produces proposal copy from a brief.
type Provider interface {
	Draft(ctx context.Context, req Request) (string, error)
	Name() string
}

// Service wraps a provider with the fallback policy.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService creates a drafting service. Provider may be nil when no API
// key is configured; every draft then uses the fallback body.
func NewService(provider Provider, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// Draft returns proposal body copy for the request. The second return
// value reports whether the deterministic fallback was used.
func (s *Service) Draft(ctx context.Context, req Request) (string, bool) {
	if s.provider == nil {
		return FallbackBody(req), true
	}

	body, err := s.provider.Draft(ctx, req)
	if err != nil {
		s.logger.Warn("draft provider failed, using fallback",
			"provider", s.provider.Name(),
			"error", err,
		)
		return FallbackBody(req), true
	}

	body = strings.TrimSpace(body)
	if body == "" {
		s.logger.Warn("draft provider returned empty body, using fallback",
			"provider", s.provider.Name(),
		)
		return FallbackBody(req), true
	}

	return body, false
}

// FallbackBody is the deterministic body used when the provider is
// unavailable or returns unusable output.
func FallbackBody(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", req.Title)
	if req.ClientName != "" {
		fmt.Fprintf(&b, "Prepared for %s.\n\n", req.ClientName)
	}
	b.WriteString("## Overview\n\n")
	if req.Brief != "" {
		b.WriteString(req.Brief)
		b.WriteString("\n\n")
	}
	b.WriteString("## Scope of work\n\n")
	b.WriteString("To be detailed together with the client.\n\n")
	b.WriteString("## Investment\n\n")
	b.WriteString("A detailed quote follows once the scope is agreed.\n")

	return b.String()
}
