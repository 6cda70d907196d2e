package transport

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/centerfuze/organization-service/pkg/modules"
	"github.com/centerfuze/organization-service/pkg/observability"
	"github.com/centerfuze/organization-service/pkg/orgs"
)

// ModuleSyncer handles inbound reconciliation events from the external
// module authority.
type ModuleSyncer interface {
	SyncToggle(ctx context.Context, orgID, moduleKey string, enabled bool) error
	SyncBulkUpdate(ctx context.Context, orgID string, enabled []string) error
	FullSync(ctx context.Context, orgID string) error
}

// Server subscribes the organization and module services to their NATS
// request subjects.
type Server struct {
	conn    *nats.Conn
	orgs    orgs.Service
	modules modules.Service
	syncer  ModuleSyncer
	health  *observability.HealthChecker
	logger  *observability.Logger
	metrics *observability.Metrics
	prefix  string
	queue   string

	subs []*nats.Subscription
}

// NewServer creates a new Server
func NewServer(conn *nats.Conn, orgService orgs.Service, moduleService modules.Service,
	syncer ModuleSyncer, health *observability.HealthChecker,
	logger *observability.Logger, metrics *observability.Metrics,
	prefix, queue string) *Server {
	return &Server{
		conn:    conn,
		orgs:    orgService,
		modules: moduleService,
		syncer:  syncer,
		health:  health,
		logger:  logger,
		metrics: metrics,
		prefix:  prefix,
		queue:   queue,
	}
}

// Start registers all subject subscriptions. Request subjects use a queue
// group so replicas share load; the reconciliation wildcard does too, so
// each inbound event is processed by exactly one replica.
func (s *Server) Start() error {
	handlers := map[string]handlerFunc{
		"organization.create":          s.handleCreateOrganization,
		"organization.get":             s.handleGetOrganization,
		"organization.update":          s.handleUpdateOrganization,
		"organization.delete":          s.handleDeleteOrganization,
		"organization.list":            s.handleListOrganizations,
		"organization.search":          s.handleSearchOrganizations,
		"organization.settings.get":    s.handleGetSettings,
		"organization.settings.update": s.handleUpdateSettings,
		"organization.limits.get":      s.handleGetLimits,
		"organization.limits.update":   s.handleUpdateLimits,
		"organization.health":          s.handleHealth,
		"module.get":                   s.handleGetModules,
		"module.toggle":                s.handleToggleModule,
		"module.bulk_update":           s.handleBulkUpdateModules,
		"module.status":                s.handleModuleStatus,
		"module.available":             s.handleAvailableModules,
		"module.usage.stats":           s.handleModuleUsage,
	}

	for subject, handler := range handlers {
		sub, err := s.conn.QueueSubscribe(subject, s.queue, s.wrap(subject, handler))
		if err != nil {
			return err
		}
		s.subs = append(s.subs, sub)
	}

	syncSubject := s.prefix + ".admin.module.>"
	sub, err := s.conn.QueueSubscribe(syncSubject, s.queue, s.handleModuleEvent)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)

	s.logger.WithField("subjects", len(s.subs)).Info("Transport server started")
	return nil
}

// Drain unsubscribes all subjects, letting in-flight handlers finish.
func (s *Server) Drain() error {
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			return err
		}
	}
	return nil
}

// handlerFunc processes one request payload and returns the serialized
// reply envelope plus whether handling succeeded.
type handlerFunc func(ctx context.Context, data []byte) ([]byte, bool)

// wrap adds panic recovery, reply delivery, and request metrics around a
// handler.
func (s *Server) wrap(subject string, handler handlerFunc) nats.MsgHandler {
	return func(msg *nats.Msg) {
		start := time.Now()
		status := "success"
		requestID := uuid.NewString()

		defer func() {
			if r := recover(); r != nil {
				status = "error"
				s.logger.WithFields(map[string]interface{}{
					"subject":    subject,
					"request_id": requestID,
					"panic":      r,
				}).Error("Panic in request handler")
				s.respond(msg, errorResponse("internal server error", "INTERNAL_ERROR", nil))
			}
			if s.metrics != nil {
				s.metrics.ObserveBusRequest(subject, status, time.Since(start))
			}
		}()

		ctx := observability.WithRequestID(context.Background(), requestID)
		reply, ok := handler(ctx, msg.Data)
		if !ok {
			status = "error"
		}
		s.respond(msg, reply)
	}
}

func (s *Server) respond(msg *nats.Msg, payload []byte) {
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(payload); err != nil {
		s.logger.WithError(err).WithField("subject", msg.Subject).Error("Failed to send reply")
	}
}
