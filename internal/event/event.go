// Package event provides the background dispatcher for post-response side
// effects: activity logging, outbound email, and the optional audit stream.
// Callers emit and move on; failures are logged, never surfaced.
package event

import (
	"context"
	"time"

	"accounts-service/internal/model"
)

// Kind discriminates event payloads.
type Kind string

const (
	KindActivity           Kind = "activity"
	KindVerificationEmail  Kind = "verification_email"
	KindPasswordResetEmail Kind = "password_reset_email"
)

// Event is a unit of deferred work.
type Event struct {
	Kind   Kind      `json:"kind"`
	UserID uint      `json:"user_id,omitempty"`
	Email  string    `json:"email"`
	Name   string    `json:"name,omitempty"`
	Action string    `json:"action,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Token  string    `json:"-"`
	At     time.Time `json:"at"`
}

// ActivityStore is the subset of the store the dispatcher writes to.
type ActivityStore interface {
	CreateActivityLog(ctx context.Context, l *model.ActivityLog) error
}

// Mailer sends the transactional emails triggered by auth flows.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}
