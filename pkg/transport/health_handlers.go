package transport

import (
	"context"

	"github.com/centerfuze/organization-service/pkg/observability"
)

// handleHealth answers organization.health with the dependency health
// report, mirroring the HTTP readiness endpoint for bus-only consumers.
func (s *Server) handleHealth(ctx context.Context, data []byte) ([]byte, bool) {
	status := s.health.Check(ctx)
	if status.Status == observability.StatusUnhealthy {
		return errorResponse("service unhealthy", "HEALTH_CHECK_ERROR", map[string]any{
			"dependencies": status.Dependencies,
		}), false
	}
	return successResponse("Service healthy", status), true
}
