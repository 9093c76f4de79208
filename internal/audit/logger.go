// Package audit records append-only security events (logins, device mismatches, revocations) for the
// external audit trail. Recording is best-effort: a failed write is logged and never fails the caller.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketplace-portal/backend/internal/audit/domain"
	auditrepo "marketplace-portal/backend/internal/audit/repository"
)

// Recorder accepts audit events.
type Recorder interface {
	Record(ctx context.Context, e domain.Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, domain.Event) {}

// Logger persists events through the audit repository.
type Logger struct {
	repo auditrepo.Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewLogger returns a Recorder that writes to repo.
func NewLogger(repo auditrepo.Repository, log zerolog.Logger) *Logger {
	return &Logger{
		repo: repo,
		log:  log.With().Str("component", "audit").Logger(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Record writes one audit event, filling ID and CreatedAt when unset.
func (l *Logger) Record(ctx context.Context, e domain.Event) {
	if l.repo == nil {
		return
	}
	stamp(&e, l.now)
	if err := l.repo.Create(ctx, &e); err != nil {
		l.log.Error().Err(err).Str("action", e.Action).Str("entity_id", e.EntityID).Msg("write audit event")
	}
}

func stamp(e *domain.Event, now func() time.Time) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	if e.IPAddress == "" {
		e.IPAddress = "unknown"
	}
}

// Multi fans each event out to every recorder in order.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, e domain.Event) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, e)
		}
	}
}
