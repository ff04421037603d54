package event

import (
	"context"
	"encoding/json"
	"time"

	"accounts-service/internal/model"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const queueSize = 256

// AuditWriter publishes events to the audit stream. *kafka.Writer satisfies
// it; tests use an in-memory recorder.
type AuditWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Dispatcher runs a single worker goroutine draining a buffered queue.
// It replaces reliance on the old runtime's implicit post-response
// continuation with an explicit task queue that survives until Close.
type Dispatcher struct {
	ch     chan Event
	done   chan struct{}
	store  ActivityStore
	mailer Mailer
	audit  AuditWriter
	log    *zap.Logger
}

// NewDispatcher starts the worker. audit may be nil when no stream is
// configured.
func NewDispatcher(store ActivityStore, mailer Mailer, audit AuditWriter, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		ch:     make(chan Event, queueSize),
		done:   make(chan struct{}),
		store:  store,
		mailer: mailer,
		audit:  audit,
		log:    log,
	}
	go d.run()
	return d
}

// Emit enqueues an event without blocking the request path. A full queue
// drops the event with a warning rather than stalling the caller.
func (d *Dispatcher) Emit(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case d.ch <- e:
	default:
		d.log.Warn("event queue full, dropping event",
			zap.String("kind", string(e.Kind)),
			zap.String("email", e.Email))
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	close(d.ch)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.ch {
		d.handle(e)
	}
}

func (d *Dispatcher) handle(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch e.Kind {
	case KindActivity:
		err := d.store.CreateActivityLog(ctx, &model.ActivityLog{
			UserID:    e.UserID,
			Email:     e.Email,
			Action:    e.Action,
			Detail:    e.Detail,
			CreatedAt: e.At,
		})
		if err != nil {
			d.log.Error("Failed to write activity log",
				zap.String("action", e.Action),
				zap.String("email", e.Email),
				zap.Error(err))
		}
	case KindVerificationEmail:
		if err := d.mailer.SendVerificationEmail(ctx, e.Email, e.Name, e.Token); err != nil {
			d.log.Error("Failed to send verification email",
				zap.String("email", e.Email),
				zap.Error(err))
		}
	case KindPasswordResetEmail:
		if err := d.mailer.SendPasswordResetEmail(ctx, e.Email, e.Name, e.Token); err != nil {
			d.log.Error("Failed to send password reset email",
				zap.String("email", e.Email),
				zap.Error(err))
		}
	default:
		d.log.Warn("Unknown event kind", zap.String("kind", string(e.Kind)))
		return
	}

	d.publish(ctx, e)
}

// publish mirrors every handled event onto the audit stream
func (d *Dispatcher) publish(ctx context.Context, e Event) {
	if d.audit == nil {
		return
	}

	payload, err := json.Marshal(e)
	if err != nil {
		d.log.Error("Failed to encode audit event", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(e.Email),
		Value: payload,
	}
	if err := d.audit.WriteMessages(ctx, msg); err != nil {
		d.log.Error("Failed to publish audit event",
			zap.String("kind", string(e.Kind)),
			zap.Error(err))
	}
}
